package repository

import (
	"context"

	"auditease-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles database operations for user profiles
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUserID retrieves the profile of a user
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, user_id, organization_name, created_at, updated_at
		FROM profiles
		WHERE user_id = $1`

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.OrganizationName,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return profile, nil
}

// Upsert creates or updates the organization name on a user's profile
func (r *ProfileRepository) Upsert(ctx context.Context, userID uuid.UUID, organizationName *string) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		INSERT INTO profiles (user_id, organization_name)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			organization_name = EXCLUDED.organization_name,
			updated_at = NOW()
		RETURNING id, user_id, organization_name, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, userID, organizationName).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.OrganizationName,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return profile, nil
}
