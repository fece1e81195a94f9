package repository

import (
	"context"

	"auditease-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GapRepository handles database operations for compliance gaps
type GapRepository struct {
	db *pgxpool.Pool
}

// NewGapRepository creates a new gap repository
func NewGapRepository(db *pgxpool.Pool) *GapRepository {
	return &GapRepository{db: db}
}

const gapColumns = `id, audit_id, risk_level, category, original_clause, regulation_reference,
	explanation, liability_usd, compliant_rewrite, is_applied, applied_at, created_at`

func scanGap(row rowScanner) (*models.ComplianceGap, error) {
	gap := &models.ComplianceGap{}
	err := row.Scan(
		&gap.ID,
		&gap.AuditID,
		&gap.RiskLevel,
		&gap.Category,
		&gap.OriginalClause,
		&gap.RegulationReference,
		&gap.Explanation,
		&gap.LiabilityUSD,
		&gap.CompliantRewrite,
		&gap.IsApplied,
		&gap.AppliedAt,
		&gap.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return gap, nil
}

// ListByAuditID retrieves the gaps of an audit in the order the model reported them
func (r *GapRepository) ListByAuditID(ctx context.Context, auditID uuid.UUID) ([]*models.ComplianceGap, error) {
	query := `
		SELECT ` + gapColumns + `
		FROM compliance_gaps
		WHERE audit_id = $1
		ORDER BY position, created_at`

	rows, err := r.db.Query(ctx, query, auditID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gaps []*models.ComplianceGap
	for rows.Next() {
		gap, err := scanGap(rows)
		if err != nil {
			return nil, err
		}
		gaps = append(gaps, gap)
	}

	return gaps, rows.Err()
}

// GetByID retrieves a gap by ID
func (r *GapRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ComplianceGap, error) {
	query := `SELECT ` + gapColumns + ` FROM compliance_gaps WHERE id = $1`
	return scanGap(r.db.QueryRow(ctx, query, id))
}

// SetApplied toggles whether a suggested rewrite was applied
func (r *GapRepository) SetApplied(ctx context.Context, id uuid.UUID, applied bool) (*models.ComplianceGap, error) {
	query := `
		UPDATE compliance_gaps SET
			is_applied = $2,
			applied_at = CASE WHEN $2 THEN NOW() ELSE NULL END
		WHERE id = $1
		RETURNING ` + gapColumns

	return scanGap(r.db.QueryRow(ctx, query, id, applied))
}

// CategoryCounts counts gaps per category across all of a user's audits
func (r *GapRepository) CategoryCounts(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	query := `
		SELECT g.category, COUNT(*)
		FROM compliance_gaps g
		JOIN audits a ON a.id = g.audit_id
		WHERE a.user_id = $1
		GROUP BY g.category`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}

	return counts, rows.Err()
}
