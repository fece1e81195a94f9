package models

import (
	"time"

	"github.com/google/uuid"
)

// ComplianceGap is a persisted gap row belonging to an audit
type ComplianceGap struct {
	ID                  uuid.UUID  `json:"id"`
	AuditID             uuid.UUID  `json:"audit_id"`
	RiskLevel           string     `json:"risk_level"`
	Category            string     `json:"category"`
	OriginalClause      string     `json:"original_clause"`
	RegulationReference string     `json:"regulation_reference"`
	Explanation         string     `json:"explanation"`
	LiabilityUSD        float64    `json:"liability_usd"`
	CompliantRewrite    *string    `json:"compliant_rewrite,omitempty"`
	IsApplied           bool       `json:"is_applied"`
	AppliedAt           *time.Time `json:"applied_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}
