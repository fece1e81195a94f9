package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"auditease-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionGetCreatesFreeRow(t *testing.T) {
	svc := NewSubscriptionService(WithSubscriptionStore(newFakeSubscriptions()), WithFreeAuditLimit(3))

	view, err := svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, view.PlanTier)
	assert.True(t, view.CanCreateAudit)
	require.NotNil(t, view.AuditsRemaining)
	assert.Equal(t, 3, *view.AuditsRemaining)
}

func TestReserveStopsAtLimit(t *testing.T) {
	ctx := context.Background()
	subs := newFakeSubscriptions()
	svc := NewSubscriptionService(WithSubscriptionStore(subs), WithFreeAuditLimit(2))
	user := uuid.New()

	require.NoError(t, svc.Reserve(ctx, user))
	require.NoError(t, svc.Reserve(ctx, user))
	assert.ErrorIs(t, svc.Reserve(ctx, user), ErrQuotaExceeded)
	assert.Equal(t, 2, subs.used(user))

	view, err := svc.Get(ctx, user)
	require.NoError(t, err)
	assert.False(t, view.CanCreateAudit)
	assert.Zero(t, *view.AuditsRemaining)

	svc.Release(ctx, user)
	assert.Equal(t, 1, subs.used(user))
	assert.NoError(t, svc.Reserve(ctx, user))
}

func TestReleaseNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	subs := newFakeSubscriptions()
	svc := NewSubscriptionService(WithSubscriptionStore(subs))
	user := uuid.New()

	_, err := svc.Get(ctx, user)
	require.NoError(t, err)
	svc.Release(ctx, user)
	assert.Zero(t, subs.used(user))
}

func TestConcurrentReserveHonorsLimit(t *testing.T) {
	subs := newFakeSubscriptions()
	svc := NewSubscriptionService(WithSubscriptionStore(subs), WithFreeAuditLimit(5))
	user := uuid.New()

	var (
		wg      sync.WaitGroup
		granted atomic.Int32
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.Reserve(context.Background(), user); err == nil {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), granted.Load())
	assert.Equal(t, 5, subs.used(user))
}

func TestUpgrade(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, time.January, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     UpgradeRequest
		wantEnd time.Time
		wantErr error
	}{
		{
			name:    "monthly by default",
			req:     UpgradeRequest{PlanTier: models.PlanProfessional},
			wantEnd: start.AddDate(0, 0, 30),
		},
		{
			name:    "annual",
			req:     UpgradeRequest{PlanTier: models.PlanEnterprise, BillingPeriod: models.BillingAnnual},
			wantEnd: start.AddDate(0, 0, 365),
		},
		{
			name:    "free is not an upgrade",
			req:     UpgradeRequest{PlanTier: models.PlanFree},
			wantErr: ErrInvalidPlan,
		},
		{
			name:    "unknown plan",
			req:     UpgradeRequest{PlanTier: "platinum"},
			wantErr: ErrInvalidPlan,
		},
		{
			name:    "unknown period",
			req:     UpgradeRequest{PlanTier: models.PlanProfessional, BillingPeriod: "weekly"},
			wantErr: ErrInvalidBillingPeriod,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSubscriptionService(
				WithSubscriptionStore(newFakeSubscriptions()),
				WithSubscriptionClock(func() time.Time { return start }),
			)
			tt.req.UserID = uuid.New()

			view, err := svc.Upgrade(ctx, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.req.PlanTier, view.PlanTier)
			assert.True(t, view.CanCreateAudit)
			assert.Nil(t, view.AuditsRemaining)
			assert.Equal(t, start, *view.CurrentPeriodStart)
			assert.Equal(t, tt.wantEnd, *view.CurrentPeriodEnd)
		})
	}
}

func TestPaidPlanBypassesQuota(t *testing.T) {
	ctx := context.Background()
	subs := newFakeSubscriptions()
	svc := NewSubscriptionService(WithSubscriptionStore(subs), WithFreeAuditLimit(1))
	user := uuid.New()

	require.NoError(t, svc.Reserve(ctx, user))
	require.ErrorIs(t, svc.Reserve(ctx, user), ErrQuotaExceeded)

	_, err := svc.Upgrade(ctx, UpgradeRequest{UserID: user, PlanTier: models.PlanProfessional})
	require.NoError(t, err)
	assert.NoError(t, svc.Reserve(ctx, user))
	assert.NoError(t, svc.Reserve(ctx, user))
}
