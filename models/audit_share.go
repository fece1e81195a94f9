package models

import (
	"time"

	"github.com/google/uuid"
)

// SharePermission is the permission granted to an invitee
type SharePermission string

const (
	SharePermissionView SharePermission = "view"
	SharePermissionEdit SharePermission = "edit"
)

// Valid reports whether p is a known share permission
func (p SharePermission) Valid() bool {
	return p == SharePermissionView || p == SharePermissionEdit
}

// AuditShare represents an invitation to view or edit an audit
type AuditShare struct {
	ID               uuid.UUID       `json:"id"`
	AuditID          uuid.UUID       `json:"audit_id"`
	InvitedBy        uuid.UUID       `json:"invited_by"`
	SharedWithEmail  string          `json:"shared_with_email"`
	SharedWithUserID *uuid.UUID      `json:"shared_with_user_id,omitempty"`
	PermissionLevel  SharePermission `json:"permission_level"`
	ShareToken       *string         `json:"share_token,omitempty"`
	AcceptedAt       *time.Time      `json:"accepted_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// AccessLevel is the effective access a user has on an audit
type AccessLevel string

const (
	AccessNone  AccessLevel = ""
	AccessView  AccessLevel = "view"
	AccessEdit  AccessLevel = "edit"
	AccessOwner AccessLevel = "owner"
)

// CanView reports whether the level allows reading the audit
func (a AccessLevel) CanView() bool {
	return a == AccessView || a == AccessEdit || a == AccessOwner
}

// CanEdit reports whether the level allows changing gaps
func (a AccessLevel) CanEdit() bool {
	return a == AccessEdit || a == AccessOwner
}
