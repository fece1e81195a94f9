package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"auditease-backend/llm"
	"auditease-backend/models"
	"auditease-backend/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type fakeDocuments struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*models.Document
	err  error
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{docs: map[uuid.UUID]*models.Document{}}
}

func (f *fakeDocuments) add(userID uuid.UUID, docType models.DocumentType, name, text string) *models.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc := &models.Document{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         name,
		DocumentType: docType,
		FilePath:     userID.String() + "/" + name,
		CreatedAt:    time.Now(),
	}
	if text != "" {
		doc.ExtractedText = &text
	}
	f.docs[doc.ID] = doc
	return doc
}

func (f *fakeDocuments) Create(ctx context.Context, doc *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	doc.ID = uuid.New()
	doc.CreatedAt = time.Now()
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocuments) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return doc, nil
}

func (f *fakeDocuments) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Document
	for _, doc := range f.docs {
		if doc.UserID == userID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeDocuments) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

type fakeAudits struct {
	mu          sync.Mutex
	audits      map[uuid.UUID]*models.Audit
	gaps        *fakeGaps
	shares      *fakeShares
	completeErr error
	seq         int
}

func newFakeAudits(gaps *fakeGaps, shares *fakeShares) *fakeAudits {
	return &fakeAudits{audits: map[uuid.UUID]*models.Audit{}, gaps: gaps, shares: shares}
}

func (f *fakeAudits) Create(ctx context.Context, audit *models.Audit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	audit.ID = uuid.New()
	audit.CreatedAt = time.Unix(int64(f.seq), 0)
	stored := *audit
	f.audits[audit.ID] = &stored
	return nil
}

func (f *fakeAudits) put(audit *models.Audit) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	audit.CreatedAt = time.Unix(int64(f.seq), 0)
	f.audits[audit.ID] = audit
}

func (f *fakeAudits) GetByID(ctx context.Context, id uuid.UUID) (*models.Audit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	audit, ok := f.audits[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *audit
	return &copied, nil
}

func (f *fakeAudits) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Audit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Audit
	for _, audit := range f.audits {
		if audit.UserID == userID {
			copied := *audit
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAudits) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, audit := range f.audits {
		if audit.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeAudits) Complete(ctx context.Context, auditID uuid.UUID, healthScore int, totalLiability float64, gaps []*models.ComplianceGap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return f.completeErr
	}
	audit, ok := f.audits[auditID]
	if !ok {
		return pgx.ErrNoRows
	}
	for _, gap := range gaps {
		f.gaps.insert(gap)
	}
	now := time.Now()
	audit.Status = models.AuditStatusCompleted
	audit.HealthScore = &healthScore
	audit.TotalLiabilityUSD = &totalLiability
	audit.CompletedAt = &now
	return nil
}

func (f *fakeAudits) Fail(ctx context.Context, auditID uuid.UUID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	audit, ok := f.audits[auditID]
	if !ok {
		return pgx.ErrNoRows
	}
	audit.Status = models.AuditStatusFailed
	audit.ErrorMessage = &message
	return nil
}

func (f *fakeAudits) SetCompliantContract(ctx context.Context, auditID uuid.UUID, contract string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	audit, ok := f.audits[auditID]
	if !ok {
		return pgx.ErrNoRows
	}
	audit.CompliantContract = &contract
	return nil
}

func (f *fakeAudits) AccessLevel(ctx context.Context, auditID, userID uuid.UUID, email string) (models.AccessLevel, error) {
	f.mu.Lock()
	audit, ok := f.audits[auditID]
	f.mu.Unlock()
	if !ok {
		return models.AccessNone, pgx.ErrNoRows
	}
	if audit.UserID == userID {
		return models.AccessOwner, nil
	}
	if f.shares == nil {
		return models.AccessNone, nil
	}
	return f.shares.levelFor(auditID, userID, strings.ToLower(email)), nil
}

type fakeGaps struct {
	mu     sync.Mutex
	gaps   map[uuid.UUID]*models.ComplianceGap
	order  []uuid.UUID
	audits *fakeAudits
}

func newFakeGaps() *fakeGaps {
	return &fakeGaps{gaps: map[uuid.UUID]*models.ComplianceGap{}}
}

func (f *fakeGaps) insert(gap *models.ComplianceGap) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gap.ID = uuid.New()
	gap.CreatedAt = time.Now()
	f.gaps[gap.ID] = gap
	f.order = append(f.order, gap.ID)
}

func (f *fakeGaps) ListByAuditID(ctx context.Context, auditID uuid.UUID) ([]*models.ComplianceGap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ComplianceGap
	for _, id := range f.order {
		if gap := f.gaps[id]; gap.AuditID == auditID {
			copied := *gap
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeGaps) GetByID(ctx context.Context, id uuid.UUID) (*models.ComplianceGap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gap, ok := f.gaps[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *gap
	return &copied, nil
}

func (f *fakeGaps) SetApplied(ctx context.Context, id uuid.UUID, applied bool) (*models.ComplianceGap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gap, ok := f.gaps[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	gap.IsApplied = applied
	gap.AppliedAt = nil
	if applied {
		now := time.Now()
		gap.AppliedAt = &now
	}
	copied := *gap
	return &copied, nil
}

func (f *fakeGaps) CategoryCounts(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	f.mu.Lock()
	gaps := make([]*models.ComplianceGap, 0, len(f.gaps))
	for _, gap := range f.gaps {
		gaps = append(gaps, gap)
	}
	f.mu.Unlock()

	counts := map[string]int{}
	for _, gap := range gaps {
		audit, err := f.audits.GetByID(ctx, gap.AuditID)
		if err == nil && audit.UserID == userID {
			counts[gap.Category]++
		}
	}
	return counts, nil
}

type fakeShares struct {
	mu     sync.Mutex
	shares map[uuid.UUID]*models.AuditShare
}

func newFakeShares() *fakeShares {
	return &fakeShares{shares: map[uuid.UUID]*models.AuditShare{}}
}

func (f *fakeShares) levelFor(auditID, userID uuid.UUID, email string) models.AccessLevel {
	f.mu.Lock()
	defer f.mu.Unlock()
	level := models.AccessNone
	for _, share := range f.shares {
		if share.AuditID != auditID {
			continue
		}
		matches := share.SharedWithEmail == email || (share.SharedWithUserID != nil && *share.SharedWithUserID == userID)
		if !matches {
			continue
		}
		if share.PermissionLevel == models.SharePermissionEdit {
			return models.AccessEdit
		}
		level = models.AccessView
	}
	return level
}

func (f *fakeShares) Create(ctx context.Context, share *models.AuditShare) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.shares {
		if existing.AuditID == share.AuditID && existing.SharedWithEmail == share.SharedWithEmail {
			return repository.ErrDuplicate
		}
	}
	share.ID = uuid.New()
	share.CreatedAt = time.Now()
	f.shares[share.ID] = share
	return nil
}

func (f *fakeShares) ExistsForEmail(ctx context.Context, auditID uuid.UUID, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, share := range f.shares {
		if share.AuditID == auditID && share.SharedWithEmail == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeShares) ListByAuditID(ctx context.Context, auditID uuid.UUID) ([]*models.AuditShare, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AuditShare
	for _, share := range f.shares {
		if share.AuditID == auditID {
			out = append(out, share)
		}
	}
	return out, nil
}

func (f *fakeShares) GetByID(ctx context.Context, id uuid.UUID) (*models.AuditShare, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	share, ok := f.shares[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return share, nil
}

func (f *fakeShares) GetByToken(ctx context.Context, token string) (*models.AuditShare, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, share := range f.shares {
		if share.ShareToken != nil && *share.ShareToken == token {
			return share, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeShares) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.shares, id)
	return nil
}

// fakeSubscriptions mirrors the conditional update of the real repository
type fakeSubscriptions struct {
	mu   sync.Mutex
	subs map[uuid.UUID]*models.Subscription
}

func newFakeSubscriptions() *fakeSubscriptions {
	return &fakeSubscriptions{subs: map[uuid.UUID]*models.Subscription{}}
}

func (f *fakeSubscriptions) GetOrCreate(ctx context.Context, userID uuid.UUID, freeLimit int) (*models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[userID]
	if !ok {
		sub = &models.Subscription{
			ID:              uuid.New(),
			UserID:          userID,
			PlanTier:        models.PlanFree,
			FreeAuditsLimit: freeLimit,
			Status:          models.SubscriptionActive,
		}
		f.subs[userID] = sub
	}
	copied := *sub
	return &copied, nil
}

func (f *fakeSubscriptions) ReserveAudit(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[userID]
	if !ok || (sub.PlanTier == models.PlanFree && sub.FreeAuditsUsed >= sub.FreeAuditsLimit) {
		return nil, pgx.ErrNoRows
	}
	sub.FreeAuditsUsed++
	copied := *sub
	return &copied, nil
}

func (f *fakeSubscriptions) ReleaseAudit(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub, ok := f.subs[userID]; ok && sub.FreeAuditsUsed > 0 {
		sub.FreeAuditsUsed--
	}
	return nil
}

func (f *fakeSubscriptions) Upgrade(ctx context.Context, userID uuid.UUID, tier models.PlanTier, period models.BillingPeriod, start, end time.Time) (*models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	sub.PlanTier = tier
	sub.BillingPeriod = &period
	sub.Status = models.SubscriptionActive
	sub.CurrentPeriodStart = &start
	sub.CurrentPeriodEnd = &end
	copied := *sub
	return &copied, nil
}

func (f *fakeSubscriptions) used(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub, ok := f.subs[userID]; ok {
		return sub.FreeAuditsUsed
	}
	return 0
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.Profile
}

func (f *fakeProfiles) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return profile, nil
}

func (f *fakeProfiles) Upsert(ctx context.Context, userID uuid.UUID, organizationName *string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[userID]
	if !ok {
		profile = &models.Profile{ID: uuid.New(), UserID: userID, CreatedAt: time.Now()}
		f.profiles[userID] = profile
	}
	profile.OrganizationName = organizationName
	profile.UpdatedAt = time.Now()
	return profile, nil
}

// fakeLLM returns scripted completions and records prompts
type fakeLLM struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
	configs  []llm.GenerationConfig
	block    chan struct{}
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, gc llm.GenerationConfig) (string, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.configs = append(f.configs, gc)
	return f.response, f.err
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

var errBoom = errors.New("boom")
