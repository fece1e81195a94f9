package service

import (
	"context"
	"strings"
	"testing"

	"auditease-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService(t *testing.T) {
	ctx := context.Background()
	svc := NewProfileService(&fakeProfiles{profiles: map[uuid.UUID]*models.Profile{}})
	user := uuid.New()

	profile, err := svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, user, profile.UserID)
	assert.Nil(t, profile.OrganizationName)

	profile, err = svc.UpdateOrganization(ctx, user, "  Acme Legal  ")
	require.NoError(t, err)
	require.NotNil(t, profile.OrganizationName)
	assert.Equal(t, "Acme Legal", *profile.OrganizationName)

	profile, err = svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "Acme Legal", *profile.OrganizationName)

	profile, err = svc.UpdateOrganization(ctx, user, "")
	require.NoError(t, err)
	assert.Nil(t, profile.OrganizationName)

	_, err = svc.UpdateOrganization(ctx, user, strings.Repeat("é", maxOrganizationNameRunes+1))
	assert.ErrorIs(t, err, ErrOrganizationNameTooLong)
	assert.True(t, IsValidation(err))
}
