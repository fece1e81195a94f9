package handlers

import (
	"context"
	"io"

	"auditease-backend/models"
	"auditease-backend/service"

	"github.com/google/uuid"
)

// Audits is the audit workflow used by AuditHandler
type Audits interface {
	StartAudit(ctx context.Context, req service.StartAuditRequest) (*models.Audit, error)
	GetAudit(ctx context.Context, caller service.Caller, auditID uuid.UUID) (*models.AuditDetail, error)
	ListAudits(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Audit, error)
	MarkGapApplied(ctx context.Context, caller service.Caller, gapID uuid.UUID, applied bool) (*models.ComplianceGap, error)
	RewriteContract(ctx context.Context, caller service.Caller, auditID uuid.UUID) (string, error)
	CompareAudits(ctx context.Context, caller service.Caller, originalID, revisedID uuid.UUID) (*models.AuditComparison, error)
	Dashboard(ctx context.Context, userID uuid.UUID) (*models.DashboardStats, error)
}

// Documents manages uploaded documents
type Documents interface {
	Upload(ctx context.Context, req service.UploadRequest) (*models.Document, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.Document, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Document, error)
	Download(ctx context.Context, userID, id uuid.UUID) (*models.Document, io.ReadCloser, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Chats answers document and support questions
type Chats interface {
	AskDocument(ctx context.Context, req service.DocumentChatRequest) (*service.ChatAnswer, error)
	AskSupport(ctx context.Context, req service.SupportChatRequest) (*service.ChatAnswer, error)
}

// Shares manages audit invitations
type Shares interface {
	Invite(ctx context.Context, req service.InviteRequest) (*service.InviteResult, error)
	List(ctx context.Context, ownerID, auditID uuid.UUID) ([]*models.AuditShare, error)
	Remove(ctx context.Context, ownerID, shareID uuid.UUID) error
	ResolveToken(ctx context.Context, token string) (*service.SharedAudit, error)
}

// Subscriptions reads and changes the caller's plan
type Subscriptions interface {
	Get(ctx context.Context, userID uuid.UUID) (*service.SubscriptionView, error)
	Upgrade(ctx context.Context, req service.UpgradeRequest) (*service.SubscriptionView, error)
}

// Profiles reads and updates the caller's profile
type Profiles interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateOrganization(ctx context.Context, userID uuid.UUID, name string) (*models.Profile, error)
}

var (
	_ Audits        = (*service.AuditService)(nil)
	_ Documents     = (*service.DocumentService)(nil)
	_ Chats         = (*service.ChatService)(nil)
	_ Shares        = (*service.ShareService)(nil)
	_ Subscriptions = (*service.SubscriptionService)(nil)
	_ Profiles      = (*service.ProfileService)(nil)
)
