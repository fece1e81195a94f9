package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditStatus represents the lifecycle state of an audit
type AuditStatus string

const (
	AuditStatusAnalyzing AuditStatus = "analyzing"
	AuditStatusCompleted AuditStatus = "completed"
	AuditStatusFailed    AuditStatus = "failed"
)

// Audit represents one gap analysis of a subject document against a standard
type Audit struct {
	ID                 uuid.UUID   `json:"id"`
	UserID             uuid.UUID   `json:"user_id"`
	StandardDocumentID *uuid.UUID  `json:"standard_document_id,omitempty"`
	StandardPreset     *string     `json:"standard_preset,omitempty"`
	SubjectDocumentID  uuid.UUID   `json:"subject_document_id"`
	Status             AuditStatus `json:"status"`
	HealthScore        *int        `json:"health_score,omitempty"`
	TotalLiabilityUSD  *float64    `json:"total_liability_usd,omitempty"`
	CompliantContract  *string     `json:"compliant_contract,omitempty"`
	ErrorMessage       *string     `json:"error_message,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
}

// AuditDetail is an audit together with its gaps and the caller's access level
type AuditDetail struct {
	Audit      *Audit           `json:"audit"`
	Gaps       []*ComplianceGap `json:"gaps"`
	Permission AccessLevel      `json:"permission"`
}

// AuditSummary is the slim projection used for comparisons
type AuditSummary struct {
	AuditID           uuid.UUID      `json:"audit_id"`
	Status            AuditStatus    `json:"status"`
	HealthScore       int            `json:"health_score"`
	TotalLiabilityUSD float64        `json:"total_liability_usd"`
	GapsByRisk        map[string]int `json:"gaps_by_risk"`
}

// AuditComparison describes how a revised audit differs from the original
type AuditComparison struct {
	Original        AuditSummary `json:"original"`
	Revised         AuditSummary `json:"revised"`
	HealthDelta     int          `json:"health_delta"`
	LiabilityDelta  float64      `json:"liability_delta"`
	ResolvedGapDiff int          `json:"resolved_gap_diff"`
}

// DashboardStats summarizes a user's recent audits
type DashboardStats struct {
	RecentAudits       []*Audit       `json:"recent_audits"`
	AverageHealthScore int            `json:"average_health_score"`
	TotalLiabilityUSD  float64        `json:"total_liability_usd"`
	AuditCount         int            `json:"audit_count"`
	RiskByCategory     map[string]int `json:"risk_by_category"`
}
