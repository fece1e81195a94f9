package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanTier is the billing plan of a user
type PlanTier string

const (
	PlanFree         PlanTier = "free"
	PlanProfessional PlanTier = "professional"
	PlanEnterprise   PlanTier = "enterprise"
)

// Paid reports whether the tier is a paid plan
func (p PlanTier) Paid() bool {
	return p == PlanProfessional || p == PlanEnterprise
}

// BillingPeriod is the renewal cadence of a paid plan
type BillingPeriod string

const (
	BillingMonthly BillingPeriod = "monthly"
	BillingAnnual  BillingPeriod = "annual"
)

// Valid reports whether b is a known billing period
func (b BillingPeriod) Valid() bool {
	return b == BillingMonthly || b == BillingAnnual
}

// Days returns the length of one billing period
func (b BillingPeriod) Days() int {
	if b == BillingAnnual {
		return 365
	}
	return 30
}

// SubscriptionStatus is the state of a subscription
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// DefaultFreeAuditLimit applies when a free row carries no usable limit
const DefaultFreeAuditLimit = 10

// Subscription tracks plan tier and audit usage for a user
type Subscription struct {
	ID                 uuid.UUID          `json:"id"`
	UserID             uuid.UUID          `json:"user_id"`
	PlanTier           PlanTier           `json:"plan_tier"`
	BillingPeriod      *BillingPeriod     `json:"billing_period,omitempty"`
	FreeAuditsUsed     int                `json:"free_audits_used"`
	FreeAuditsLimit    int                `json:"free_audits_limit"`
	Status             SubscriptionStatus `json:"subscription_status"`
	CurrentPeriodStart *time.Time         `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time         `json:"current_period_end,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func (s *Subscription) limit() int {
	if s.FreeAuditsLimit <= 0 {
		return DefaultFreeAuditLimit
	}
	return s.FreeAuditsLimit
}

// CanCreateAudit reports whether the plan allows starting another audit.
// A nil subscription is treated as a fresh free row.
func (s *Subscription) CanCreateAudit() bool {
	if s == nil {
		return true
	}
	if s.PlanTier.Paid() {
		return true
	}
	return s.FreeAuditsUsed < s.limit()
}

// AuditsRemaining returns the number of audits left on the free tier.
// unlimited is true for paid tiers, in which case remaining is meaningless.
func (s *Subscription) AuditsRemaining() (remaining int, unlimited bool) {
	if s == nil {
		return DefaultFreeAuditLimit, false
	}
	if s.PlanTier.Paid() {
		return 0, true
	}
	return max(0, s.limit()-s.FreeAuditsUsed), false
}
