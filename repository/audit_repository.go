package repository

import (
	"context"
	"fmt"

	"auditease-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository handles database operations for audits and their gaps
type AuditRepository struct {
	db *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

const auditColumns = `id, user_id, standard_document_id, standard_preset, subject_document_id, status,
	health_score, total_liability_usd, compliant_contract, error_message, created_at, completed_at`

func scanAudit(row rowScanner) (*models.Audit, error) {
	audit := &models.Audit{}
	err := row.Scan(
		&audit.ID,
		&audit.UserID,
		&audit.StandardDocumentID,
		&audit.StandardPreset,
		&audit.SubjectDocumentID,
		&audit.Status,
		&audit.HealthScore,
		&audit.TotalLiabilityUSD,
		&audit.CompliantContract,
		&audit.ErrorMessage,
		&audit.CreatedAt,
		&audit.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return audit, nil
}

// Create inserts a new audit
func (r *AuditRepository) Create(ctx context.Context, audit *models.Audit) error {
	query := `
		INSERT INTO audits (user_id, standard_document_id, standard_preset, subject_document_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		audit.UserID,
		audit.StandardDocumentID,
		audit.StandardPreset,
		audit.SubjectDocumentID,
		audit.Status,
	).Scan(&audit.ID, &audit.CreatedAt)
}

// GetByID retrieves an audit by ID
func (r *AuditRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Audit, error) {
	query := `SELECT ` + auditColumns + ` FROM audits WHERE id = $1`
	return scanAudit(r.db.QueryRow(ctx, query, id))
}

// ListByUserID retrieves a page of a user's audits, newest first
func (r *AuditRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Audit, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audits
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []*models.Audit
	for rows.Next() {
		audit, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		audits = append(audits, audit)
	}

	return audits, rows.Err()
}

// CountByUserID returns how many audits a user owns
func (r *AuditRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM audits WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// Complete stores the gaps and marks the audit completed in one transaction
func (r *AuditRepository) Complete(ctx context.Context, auditID uuid.UUID, healthScore int, totalLiability float64, gaps []*models.ComplianceGap) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i, gap := range gaps {
			batch.Queue(`
				INSERT INTO compliance_gaps (
					audit_id, position, risk_level, category, original_clause,
					regulation_reference, explanation, liability_usd, compliant_rewrite
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				auditID, i, gap.RiskLevel, gap.Category, gap.OriginalClause,
				gap.RegulationReference, gap.Explanation, gap.LiabilityUSD, gap.CompliantRewrite,
			)
		}
		if batch.Len() > 0 {
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return fmt.Errorf("insert gaps: %w", err)
			}
		}

		tag, err := tx.Exec(ctx, `
			UPDATE audits SET
				status = 'completed',
				health_score = $2,
				total_liability_usd = $3,
				error_message = NULL,
				completed_at = NOW()
			WHERE id = $1`,
			auditID, healthScore, totalLiability,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}

// Fail marks an audit failed with a message
func (r *AuditRepository) Fail(ctx context.Context, auditID uuid.UUID, message string) error {
	query := `
		UPDATE audits SET
			status = 'failed',
			error_message = $2,
			completed_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, auditID, message)
	return err
}

// SetCompliantContract stores the rewritten contract text
func (r *AuditRepository) SetCompliantContract(ctx context.Context, auditID uuid.UUID, contract string) error {
	tag, err := r.db.Exec(ctx, `UPDATE audits SET compliant_contract = $2 WHERE id = $1`, auditID, contract)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AccessLevel resolves the caller's access to an audit: owner, an accepted or
// pending share by user ID or email, or none. The best share wins.
// A missing audit returns pgx.ErrNoRows.
func (r *AuditRepository) AccessLevel(ctx context.Context, auditID, userID uuid.UUID, email string) (models.AccessLevel, error) {
	query := `
		SELECT CASE
			WHEN a.user_id = $2 THEN 'owner'
			ELSE COALESCE((
				SELECT s.permission_level
				FROM audit_shares s
				WHERE s.audit_id = a.id
					AND (s.shared_with_user_id = $2 OR s.shared_with_email = lower($3::text))
				ORDER BY CASE s.permission_level WHEN 'edit' THEN 0 ELSE 1 END
				LIMIT 1
			), '')
		END
		FROM audits a
		WHERE a.id = $1`

	var level string
	if err := r.db.QueryRow(ctx, query, auditID, userID, email).Scan(&level); err != nil {
		return models.AccessNone, err
	}
	return models.AccessLevel(level), nil
}
