package service

import (
	"context"
	"time"

	"auditease-backend/models"
	"auditease-backend/repository"

	"github.com/google/uuid"
)

// DocumentStore persists document rows
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuditStore persists audits and their completion
type AuditStore interface {
	Create(ctx context.Context, audit *models.Audit) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Audit, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Audit, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int, error)
	Complete(ctx context.Context, auditID uuid.UUID, healthScore int, totalLiability float64, gaps []*models.ComplianceGap) error
	Fail(ctx context.Context, auditID uuid.UUID, message string) error
	SetCompliantContract(ctx context.Context, auditID uuid.UUID, contract string) error
	AccessLevel(ctx context.Context, auditID, userID uuid.UUID, email string) (models.AccessLevel, error)
}

// GapStore persists compliance gaps
type GapStore interface {
	ListByAuditID(ctx context.Context, auditID uuid.UUID) ([]*models.ComplianceGap, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ComplianceGap, error)
	SetApplied(ctx context.Context, id uuid.UUID, applied bool) (*models.ComplianceGap, error)
	CategoryCounts(ctx context.Context, userID uuid.UUID) (map[string]int, error)
}

// ShareStore persists audit shares
type ShareStore interface {
	Create(ctx context.Context, share *models.AuditShare) error
	ExistsForEmail(ctx context.Context, auditID uuid.UUID, email string) (bool, error)
	ListByAuditID(ctx context.Context, auditID uuid.UUID) ([]*models.AuditShare, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.AuditShare, error)
	GetByToken(ctx context.Context, token string) (*models.AuditShare, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileStore persists profiles
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Upsert(ctx context.Context, userID uuid.UUID, organizationName *string) (*models.Profile, error)
}

// SubscriptionStore persists subscriptions and the audit counter
type SubscriptionStore interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID, freeLimit int) (*models.Subscription, error)
	ReserveAudit(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	ReleaseAudit(ctx context.Context, userID uuid.UUID) error
	Upgrade(ctx context.Context, userID uuid.UUID, tier models.PlanTier, period models.BillingPeriod, start, end time.Time) (*models.Subscription, error)
}

var (
	_ DocumentStore     = (*repository.DocumentRepository)(nil)
	_ AuditStore        = (*repository.AuditRepository)(nil)
	_ GapStore          = (*repository.GapRepository)(nil)
	_ ShareStore        = (*repository.ShareRepository)(nil)
	_ ProfileStore      = (*repository.ProfileRepository)(nil)
	_ SubscriptionStore = (*repository.SubscriptionRepository)(nil)
)
