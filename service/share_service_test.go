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

func newShareFixture(t *testing.T) (*ShareService, *fakeAudits, *fakeShares, Caller, *models.Audit) {
	t.Helper()
	shares := newFakeShares()
	gaps := newFakeGaps()
	audits := newFakeAudits(gaps, shares)
	gaps.audits = audits

	owner := Caller{UserID: uuid.New(), Email: "owner@example.com"}
	audit := &models.Audit{UserID: owner.UserID, SubjectDocumentID: uuid.New(), Status: models.AuditStatusCompleted}
	audits.put(audit)

	svc := NewShareService(WithShareAuditStore(audits), WithShareStore(shares))
	return svc, audits, shares, owner, audit
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "  Alice@Example.COM ", want: "alice@example.com"},
		{in: "bob+legal@example.co.uk", want: "bob+legal@example.co.uk"},
		{in: "not-an-email", wantErr: true},
		{in: "Alice <alice@example.com>", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeEmail(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEmail)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvite(t *testing.T) {
	ctx := context.Background()
	svc, audits, _, owner, audit := newShareFixture(t)

	result, err := svc.Invite(ctx, InviteRequest{Owner: owner, AuditID: audit.ID, Email: "Reviewer@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "reviewer@example.com", result.Share.SharedWithEmail)
	assert.Equal(t, models.SharePermissionView, result.Share.PermissionLevel)
	require.NotNil(t, result.Share.ShareToken)
	token := *result.Share.ShareToken
	assert.Len(t, token, 43)
	assert.Equal(t, "/audit/"+audit.ID.String()+"?token="+token, result.Link)

	level, err := audits.AccessLevel(ctx, audit.ID, uuid.New(), "reviewer@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.AccessView, level)

	_, err = svc.Invite(ctx, InviteRequest{Owner: owner, AuditID: audit.ID, Email: "reviewer@example.com", Permission: models.SharePermissionEdit})
	assert.ErrorIs(t, err, ErrAlreadyShared)
}

func TestInviteValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, shares, owner, audit := newShareFixture(t)
	stranger := Caller{UserID: uuid.New(), Email: "stranger@example.com"}

	tests := []struct {
		name string
		req  InviteRequest
		want error
	}{
		{"bad email", InviteRequest{Owner: owner, AuditID: audit.ID, Email: "nope"}, ErrInvalidEmail},
		{"bad permission", InviteRequest{Owner: owner, AuditID: audit.ID, Email: "a@example.com", Permission: "admin"}, ErrInvalidPermission},
		{"self share", InviteRequest{Owner: owner, AuditID: audit.ID, Email: "OWNER@example.com"}, ErrSelfShare},
		{"not the owner", InviteRequest{Owner: stranger, AuditID: audit.ID, Email: "a@example.com"}, ErrForbidden},
		{"missing audit", InviteRequest{Owner: owner, AuditID: uuid.New(), Email: "a@example.com"}, ErrAuditNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Invite(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	list, err := shares.ListByAuditID(ctx, audit.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListAndRemoveShares(t *testing.T) {
	ctx := context.Background()
	svc, _, _, owner, audit := newShareFixture(t)

	first, err := svc.Invite(ctx, InviteRequest{Owner: owner, AuditID: audit.ID, Email: "a@example.com"})
	require.NoError(t, err)
	_, err = svc.Invite(ctx, InviteRequest{Owner: owner, AuditID: audit.ID, Email: "b@example.com", Permission: models.SharePermissionEdit})
	require.NoError(t, err)

	list, err := svc.List(ctx, owner.UserID, audit.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.List(ctx, uuid.New(), audit.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, svc.Remove(ctx, uuid.New(), first.Share.ID), ErrForbidden)
	require.NoError(t, svc.Remove(ctx, owner.UserID, first.Share.ID))
	assert.ErrorIs(t, svc.Remove(ctx, owner.UserID, first.Share.ID), ErrShareNotFound)

	list, err = svc.List(ctx, owner.UserID, audit.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b@example.com", list[0].SharedWithEmail)
}

func TestResolveToken(t *testing.T) {
	ctx := context.Background()
	svc, _, _, owner, audit := newShareFixture(t)

	result, err := svc.Invite(ctx, InviteRequest{Owner: owner, AuditID: audit.ID, Email: "editor@example.com", Permission: models.SharePermissionEdit})
	require.NoError(t, err)

	shared, err := svc.ResolveToken(ctx, " "+*result.Share.ShareToken+" ")
	require.NoError(t, err)
	assert.Equal(t, &SharedAudit{AuditID: audit.ID, Email: "editor@example.com", Permission: models.SharePermissionEdit}, shared)

	_, err = svc.ResolveToken(ctx, "")
	assert.ErrorIs(t, err, ErrShareNotFound)
	_, err = svc.ResolveToken(ctx, strings.Repeat("x", 43))
	assert.ErrorIs(t, err, ErrShareNotFound)
}
