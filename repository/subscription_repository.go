package repository

import (
	"context"
	"time"

	"auditease-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubscriptionRepository handles database operations for user subscriptions
type SubscriptionRepository struct {
	db *pgxpool.Pool
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, user_id, plan_tier, billing_period, free_audits_used, free_audits_limit,
	subscription_status, current_period_start, current_period_end, created_at, updated_at`

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	sub := &models.Subscription{}
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.PlanTier,
		&sub.BillingPeriod,
		&sub.FreeAuditsUsed,
		&sub.FreeAuditsLimit,
		&sub.Status,
		&sub.CurrentPeriodStart,
		&sub.CurrentPeriodEnd,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// GetByUserID retrieves the subscription of a user
func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM user_subscriptions WHERE user_id = $1`
	return scanSubscription(r.db.QueryRow(ctx, query, userID))
}

// GetOrCreate returns the user's subscription, inserting a free row with
// the given limit when none exists. Concurrent callers converge on one row.
func (r *SubscriptionRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, freeLimit int) (*models.Subscription, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_subscriptions (user_id, plan_tier, free_audits_used, free_audits_limit, subscription_status)
		VALUES ($1, 'free', 0, $2, 'active')
		ON CONFLICT (user_id) DO NOTHING`,
		userID, freeLimit,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, userID)
}

// ReserveAudit counts one audit against the user's quota in a single
// conditional update. Paid tiers always succeed. pgx.ErrNoRows means the
// free quota is exhausted or no row exists.
func (r *SubscriptionRepository) ReserveAudit(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	query := `
		UPDATE user_subscriptions SET
			free_audits_used = free_audits_used + 1,
			updated_at = NOW()
		WHERE user_id = $1
			AND (plan_tier <> 'free' OR free_audits_used < free_audits_limit)
		RETURNING ` + subscriptionColumns

	return scanSubscription(r.db.QueryRow(ctx, query, userID))
}

// ReleaseAudit returns a reserved audit to the quota, never going below zero
func (r *SubscriptionRepository) ReleaseAudit(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE user_subscriptions SET
			free_audits_used = GREATEST(free_audits_used - 1, 0),
			updated_at = NOW()
		WHERE user_id = $1`

	_, err := r.db.Exec(ctx, query, userID)
	return err
}

// Upgrade moves the user to a paid tier for one billing period
func (r *SubscriptionRepository) Upgrade(ctx context.Context, userID uuid.UUID, tier models.PlanTier, period models.BillingPeriod, start, end time.Time) (*models.Subscription, error) {
	query := `
		UPDATE user_subscriptions SET
			plan_tier = $2,
			billing_period = $3,
			subscription_status = 'active',
			current_period_start = $4,
			current_period_end = $5,
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + subscriptionColumns

	return scanSubscription(r.db.QueryRow(ctx, query, userID, tier, period, start, end))
}
