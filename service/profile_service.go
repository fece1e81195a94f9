package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auditease-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// maxOrganizationNameRunes bounds the organization name
const maxOrganizationNameRunes = 200

// ErrOrganizationNameTooLong is returned for overly long organization names
var ErrOrganizationNameTooLong = errors.New("organization name is too long")

// ProfileService manages user profiles
type ProfileService struct {
	repo ProfileStore
}

// NewProfileService creates a new profile service
func NewProfileService(repo ProfileStore) *ProfileService {
	return &ProfileService{repo: repo}
}

// Get returns the user's profile. A user without a profile row gets an
// empty profile.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if s.repo == nil {
		return nil, errors.New("profile repository not set")
	}
	profile, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.Profile{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

// UpdateOrganization sets the organization name, creating the profile when
// missing. An empty name clears it.
func (s *ProfileService) UpdateOrganization(ctx context.Context, userID uuid.UUID, name string) (*models.Profile, error) {
	if s.repo == nil {
		return nil, errors.New("profile repository not set")
	}
	name = strings.TrimSpace(name)
	if len([]rune(name)) > maxOrganizationNameRunes {
		return nil, ErrOrganizationNameTooLong
	}

	var org *string
	if name != "" {
		org = &name
	}
	profile, err := s.repo.Upsert(ctx, userID, org)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}
