package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"auditease-backend/models"
	"auditease-backend/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const shareTokenBytes = 32

// ShareService manages invitations to view or edit an audit
type ShareService struct {
	audits AuditStore
	shares ShareStore
	logger *zap.Logger
}

// ShareServiceOption is a functional option for ShareService
type ShareServiceOption func(*ShareService)

// WithShareAuditStore sets the audit repository used for ownership checks
func WithShareAuditStore(repo AuditStore) ShareServiceOption {
	return func(s *ShareService) {
		s.audits = repo
	}
}

// WithShareStore sets the share repository
func WithShareStore(repo ShareStore) ShareServiceOption {
	return func(s *ShareService) {
		s.shares = repo
	}
}

// WithShareLogger sets the logger
func WithShareLogger(logger *zap.Logger) ShareServiceOption {
	return func(s *ShareService) {
		s.logger = logger
	}
}

// NewShareService creates a new share service
func NewShareService(opts ...ShareServiceOption) *ShareService {
	s := &ShareService{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ShareService) ready() error {
	if s.audits == nil {
		return errors.New("audit repository not set")
	}
	if s.shares == nil {
		return errors.New("share repository not set")
	}
	return nil
}

// InviteRequest represents an invitation from the audit owner
type InviteRequest struct {
	Owner      Caller
	AuditID    uuid.UUID
	Email      string
	Permission models.SharePermission
}

// InviteResult carries the created share and the link to send to the invitee
type InviteResult struct {
	Share *models.AuditShare `json:"share"`
	Link  string             `json:"link"`
}

// ShareLink is the application path that opens a shared audit
func ShareLink(auditID uuid.UUID, token string) string {
	return fmt.Sprintf("/audit/%s?token=%s", auditID, token)
}

// NormalizeEmail lower-cases and validates a bare email address
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func newShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// requireOwner loads the audit and checks that userID owns it
func (s *ShareService) requireOwner(ctx context.Context, userID, auditID uuid.UUID) error {
	audit, err := s.audits.GetByID(ctx, auditID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAuditNotFound
		}
		return fmt.Errorf("failed to load audit: %w", err)
	}
	if audit.UserID != userID {
		return ErrForbidden
	}
	return nil
}

// Invite shares an audit with an email address. Only the owner may invite,
// and each address can be invited once per audit.
func (s *ShareService) Invite(ctx context.Context, req InviteRequest) (*InviteResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if req.Permission == "" {
		req.Permission = models.SharePermissionView
	}
	if !req.Permission.Valid() {
		return nil, ErrInvalidPermission
	}
	if req.Owner.Email != "" && strings.EqualFold(strings.TrimSpace(req.Owner.Email), email) {
		return nil, ErrSelfShare
	}

	if err := s.requireOwner(ctx, req.Owner.UserID, req.AuditID); err != nil {
		return nil, err
	}

	exists, err := s.shares.ExistsForEmail(ctx, req.AuditID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing shares: %w", err)
	}
	if exists {
		return nil, ErrAlreadyShared
	}

	token, err := newShareToken()
	if err != nil {
		return nil, err
	}

	share := &models.AuditShare{
		AuditID:         req.AuditID,
		InvitedBy:       req.Owner.UserID,
		SharedWithEmail: email,
		PermissionLevel: req.Permission,
		ShareToken:      &token,
	}
	if err := s.shares.Create(ctx, share); err != nil {
		// a concurrent invite can still win the unique constraint
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyShared
		}
		return nil, fmt.Errorf("failed to create share: %w", err)
	}

	s.logger.Info("audit shared",
		zap.String("audit_id", req.AuditID.String()),
		zap.String("permission", string(req.Permission)),
	)
	return &InviteResult{Share: share, Link: ShareLink(req.AuditID, token)}, nil
}

// List returns the shares of an audit the caller owns
func (s *ShareService) List(ctx context.Context, ownerID, auditID uuid.UUID) ([]*models.AuditShare, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, ownerID, auditID); err != nil {
		return nil, err
	}

	shares, err := s.shares.ListByAuditID(ctx, auditID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	if shares == nil {
		shares = []*models.AuditShare{}
	}
	return shares, nil
}

// Remove revokes a share on an audit the caller owns
func (s *ShareService) Remove(ctx context.Context, ownerID, shareID uuid.UUID) error {
	if err := s.ready(); err != nil {
		return err
	}

	share, err := s.shares.GetByID(ctx, shareID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrShareNotFound
		}
		return fmt.Errorf("failed to load share: %w", err)
	}
	if err := s.requireOwner(ctx, ownerID, share.AuditID); err != nil {
		return err
	}

	if err := s.shares.Delete(ctx, shareID); err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}
	return nil
}

// SharedAudit is what a share link resolves to
type SharedAudit struct {
	AuditID    uuid.UUID              `json:"audit_id"`
	Email      string                 `json:"shared_with_email"`
	Permission models.SharePermission `json:"permission"`
}

// ResolveToken looks up the audit behind a share link
func (s *ShareService) ResolveToken(ctx context.Context, token string) (*SharedAudit, error) {
	if s.shares == nil {
		return nil, errors.New("share repository not set")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrShareNotFound
	}

	share, err := s.shares.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("failed to resolve share: %w", err)
	}
	return &SharedAudit{AuditID: share.AuditID, Email: share.SharedWithEmail, Permission: share.PermissionLevel}, nil
}
