package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"auditease-backend/models"
)

func TestSubscriptionQuotaGate(t *testing.T) {
	testCases := []struct {
		name          string
		subscription  *models.Subscription
		wantCreate    bool
		wantRemaining int
		wantUnlimited bool
	}{
		{
			name:          "free tier exhausted",
			subscription:  &models.Subscription{PlanTier: models.PlanFree, FreeAuditsLimit: 10, FreeAuditsUsed: 10},
			wantCreate:    false,
			wantRemaining: 0,
		},
		{
			name:          "free tier over limit clamps to zero",
			subscription:  &models.Subscription{PlanTier: models.PlanFree, FreeAuditsLimit: 10, FreeAuditsUsed: 14},
			wantCreate:    false,
			wantRemaining: 0,
		},
		{
			name:          "free tier with headroom",
			subscription:  &models.Subscription{PlanTier: models.PlanFree, FreeAuditsLimit: 10, FreeAuditsUsed: 3},
			wantCreate:    true,
			wantRemaining: 7,
		},
		{
			name:          "free tier missing limit uses default",
			subscription:  &models.Subscription{PlanTier: models.PlanFree, FreeAuditsUsed: 9},
			wantCreate:    true,
			wantRemaining: 1,
		},
		{
			name:          "professional ignores counters",
			subscription:  &models.Subscription{PlanTier: models.PlanProfessional, FreeAuditsLimit: 10, FreeAuditsUsed: 250},
			wantCreate:    true,
			wantUnlimited: true,
		},
		{
			name:          "enterprise ignores counters",
			subscription:  &models.Subscription{PlanTier: models.PlanEnterprise, FreeAuditsLimit: 0, FreeAuditsUsed: 0},
			wantCreate:    true,
			wantUnlimited: true,
		},
		{
			name:          "missing subscription behaves like new free row",
			subscription:  nil,
			wantCreate:    true,
			wantRemaining: models.DefaultFreeAuditLimit,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantCreate, tc.subscription.CanCreateAudit())

			remaining, unlimited := tc.subscription.AuditsRemaining()
			assert.Equal(t, tc.wantUnlimited, unlimited)
			if !tc.wantUnlimited {
				assert.Equal(t, tc.wantRemaining, remaining)
			}
		})
	}
}

func TestBillingPeriodDays(t *testing.T) {
	assert.Equal(t, 30, models.BillingMonthly.Days())
	assert.Equal(t, 365, models.BillingAnnual.Days())
}

func TestAccessLevel(t *testing.T) {
	assert.False(t, models.AccessNone.CanView())
	assert.True(t, models.AccessView.CanView())
	assert.False(t, models.AccessView.CanEdit())
	assert.True(t, models.AccessEdit.CanEdit())
	assert.True(t, models.AccessOwner.CanEdit())
}
