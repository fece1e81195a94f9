package repository

import (
	"context"
	"errors"

	"auditease-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicate is returned when an insert violates a unique constraint
var ErrDuplicate = errors.New("duplicate record")

// ShareRepository handles database operations for audit shares
type ShareRepository struct {
	db *pgxpool.Pool
}

// NewShareRepository creates a new share repository
func NewShareRepository(db *pgxpool.Pool) *ShareRepository {
	return &ShareRepository{db: db}
}

const shareColumns = `id, audit_id, invited_by, shared_with_email, shared_with_user_id,
	permission_level, share_token, accepted_at, created_at`

func scanShare(row rowScanner) (*models.AuditShare, error) {
	share := &models.AuditShare{}
	err := row.Scan(
		&share.ID,
		&share.AuditID,
		&share.InvitedBy,
		&share.SharedWithEmail,
		&share.SharedWithUserID,
		&share.PermissionLevel,
		&share.ShareToken,
		&share.AcceptedAt,
		&share.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return share, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a share. A second share for the same audit and email
// returns ErrDuplicate.
func (r *ShareRepository) Create(ctx context.Context, share *models.AuditShare) error {
	query := `
		INSERT INTO audit_shares (audit_id, invited_by, shared_with_email, permission_level, share_token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		share.AuditID,
		share.InvitedBy,
		share.SharedWithEmail,
		share.PermissionLevel,
		share.ShareToken,
	).Scan(&share.ID, &share.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// ExistsForEmail reports whether the audit is already shared with email
func (r *ShareRepository) ExistsForEmail(ctx context.Context, auditID uuid.UUID, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM audit_shares WHERE audit_id = $1 AND shared_with_email = $2)`,
		auditID, email,
	).Scan(&exists)
	return exists, err
}

// ListByAuditID retrieves the shares of an audit
func (r *ShareRepository) ListByAuditID(ctx context.Context, auditID uuid.UUID) ([]*models.AuditShare, error) {
	query := `
		SELECT ` + shareColumns + `
		FROM audit_shares
		WHERE audit_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, auditID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []*models.AuditShare
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}

	return shares, rows.Err()
}

// GetByID retrieves a share by ID
func (r *ShareRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AuditShare, error) {
	query := `SELECT ` + shareColumns + ` FROM audit_shares WHERE id = $1`
	return scanShare(r.db.QueryRow(ctx, query, id))
}

// GetByToken retrieves a share by its link token
func (r *ShareRepository) GetByToken(ctx context.Context, token string) (*models.AuditShare, error) {
	query := `SELECT ` + shareColumns + ` FROM audit_shares WHERE share_token = $1`
	return scanShare(r.db.QueryRow(ctx, query, token))
}

// Delete removes a share
func (r *ShareRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM audit_shares WHERE id = $1`, id)
	return err
}
