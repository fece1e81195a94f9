package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auditease-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// SubscriptionService gates audit creation on the user's plan
type SubscriptionService struct {
	repo      SubscriptionStore
	freeLimit int
	now       func() time.Time
	logger    *zap.Logger
}

// SubscriptionServiceOption is a functional option for SubscriptionService
type SubscriptionServiceOption func(*SubscriptionService)

// WithSubscriptionStore sets the subscription repository
func WithSubscriptionStore(repo SubscriptionStore) SubscriptionServiceOption {
	return func(s *SubscriptionService) {
		s.repo = repo
	}
}

// WithFreeAuditLimit sets the limit given to newly created free rows
func WithFreeAuditLimit(limit int) SubscriptionServiceOption {
	return func(s *SubscriptionService) {
		if limit > 0 {
			s.freeLimit = limit
		}
	}
}

// WithSubscriptionClock overrides the time source used for billing periods
func WithSubscriptionClock(now func() time.Time) SubscriptionServiceOption {
	return func(s *SubscriptionService) {
		s.now = now
	}
}

// WithSubscriptionLogger sets the logger
func WithSubscriptionLogger(logger *zap.Logger) SubscriptionServiceOption {
	return func(s *SubscriptionService) {
		s.logger = logger
	}
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(opts ...SubscriptionServiceOption) *SubscriptionService {
	s := &SubscriptionService{
		freeLimit: models.DefaultFreeAuditLimit,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubscriptionView is a subscription plus its derived quota
type SubscriptionView struct {
	*models.Subscription
	CanCreateAudit  bool `json:"can_create_audit"`
	AuditsRemaining *int `json:"audits_remaining"`
}

func newSubscriptionView(sub *models.Subscription) *SubscriptionView {
	view := &SubscriptionView{Subscription: sub, CanCreateAudit: sub.CanCreateAudit()}
	if remaining, unlimited := sub.AuditsRemaining(); !unlimited {
		view.AuditsRemaining = &remaining
	}
	return view
}

// Get returns the user's subscription, creating a free one on first access
func (s *SubscriptionService) Get(ctx context.Context, userID uuid.UUID) (*SubscriptionView, error) {
	if s.repo == nil {
		return nil, errors.New("subscription repository not set")
	}

	sub, err := s.repo.GetOrCreate(ctx, userID, s.freeLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return newSubscriptionView(sub), nil
}

// Reserve counts one audit against the user's quota. The check and the
// increment happen in a single conditional update, so concurrent requests
// cannot both take the last free audit.
func (s *SubscriptionService) Reserve(ctx context.Context, userID uuid.UUID) error {
	if s.repo == nil {
		return errors.New("subscription repository not set")
	}

	sub, err := s.repo.GetOrCreate(ctx, userID, s.freeLimit)
	if err != nil {
		return fmt.Errorf("failed to load subscription: %w", err)
	}
	if !sub.CanCreateAudit() {
		return ErrQuotaExceeded
	}

	if _, err := s.repo.ReserveAudit(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrQuotaExceeded
		}
		return fmt.Errorf("failed to reserve audit: %w", err)
	}
	return nil
}

// Release gives back an audit reserved for an analysis that failed
func (s *SubscriptionService) Release(ctx context.Context, userID uuid.UUID) {
	if s.repo == nil {
		return
	}
	if err := s.repo.ReleaseAudit(ctx, userID); err != nil {
		s.logger.Error("failed to release reserved audit", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// UpgradeRequest represents a plan change
type UpgradeRequest struct {
	UserID        uuid.UUID
	PlanTier      models.PlanTier
	BillingPeriod models.BillingPeriod
}

// Upgrade moves the user to a paid plan starting now. Payment itself is
// handled elsewhere.
func (s *SubscriptionService) Upgrade(ctx context.Context, req UpgradeRequest) (*SubscriptionView, error) {
	if s.repo == nil {
		return nil, errors.New("subscription repository not set")
	}
	if !req.PlanTier.Paid() {
		return nil, ErrInvalidPlan
	}
	if req.BillingPeriod == "" {
		req.BillingPeriod = models.BillingMonthly
	}
	if !req.BillingPeriod.Valid() {
		return nil, ErrInvalidBillingPeriod
	}

	if _, err := s.repo.GetOrCreate(ctx, req.UserID, s.freeLimit); err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	start := s.now().UTC()
	end := start.AddDate(0, 0, req.BillingPeriod.Days())
	sub, err := s.repo.Upgrade(ctx, req.UserID, req.PlanTier, req.BillingPeriod, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade subscription: %w", err)
	}

	s.logger.Info("subscription upgraded",
		zap.String("user_id", req.UserID.String()),
		zap.String("plan_tier", string(req.PlanTier)),
		zap.String("billing_period", string(req.BillingPeriod)),
	)
	return newSubscriptionView(sub), nil
}
