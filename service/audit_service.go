package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"auditease-backend/analysis"
	"auditease-backend/llm"
	"auditease-backend/models"
	"auditease-backend/standards"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// MinSubjectRunes is the shortest subject text worth sending to the model
	MinSubjectRunes = 50
	// RecentAuditCount is the number of audits shown on the dashboard
	RecentAuditCount = 5

	defaultProcessTimeout  = 5 * time.Minute
	defaultPageSize        = 20
	maxPageSize            = 100
	rewriteMaxOutputTokens = 8192
)

// Caller identifies the user making a request
type Caller struct {
	UserID uuid.UUID
	Email  string
}

// QuotaGate reserves and releases audits against a user's plan
type QuotaGate interface {
	Reserve(ctx context.Context, userID uuid.UUID) error
	Release(ctx context.Context, userID uuid.UUID)
}

// AuditService runs compliance audits and serves their results
type AuditService struct {
	audits         AuditStore
	gaps           GapStore
	documents      DocumentStore
	quota          QuotaGate
	llmClient      llm.Client
	extractor      *analysis.Extractor
	logger         *zap.Logger
	processTimeout time.Duration
	wg             sync.WaitGroup
}

// AuditServiceOption is a functional option for AuditService
type AuditServiceOption func(*AuditService)

// WithAuditStore sets the audit repository
func WithAuditStore(repo AuditStore) AuditServiceOption {
	return func(s *AuditService) {
		s.audits = repo
	}
}

// WithGapStore sets the compliance gap repository
func WithGapStore(repo GapStore) AuditServiceOption {
	return func(s *AuditService) {
		s.gaps = repo
	}
}

// WithAuditDocumentStore sets the document repository used to load audit inputs
func WithAuditDocumentStore(repo DocumentStore) AuditServiceOption {
	return func(s *AuditService) {
		s.documents = repo
	}
}

// WithQuotaGate sets the quota gate
func WithQuotaGate(gate QuotaGate) AuditServiceOption {
	return func(s *AuditService) {
		s.quota = gate
	}
}

// WithLLMClient sets the model client
func WithLLMClient(client llm.Client) AuditServiceOption {
	return func(s *AuditService) {
		s.llmClient = client
	}
}

// WithAuditLogger sets the logger. The extractor logs through it too.
func WithAuditLogger(logger *zap.Logger) AuditServiceOption {
	return func(s *AuditService) {
		s.logger = logger
	}
}

// WithProcessTimeout bounds a single background analysis
func WithProcessTimeout(d time.Duration) AuditServiceOption {
	return func(s *AuditService) {
		if d > 0 {
			s.processTimeout = d
		}
	}
}

// NewAuditService creates a new audit service
func NewAuditService(opts ...AuditServiceOption) *AuditService {
	s := &AuditService{
		logger:         zap.NewNop(),
		processTimeout: defaultProcessTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.extractor = analysis.NewExtractor(s.logger)
	return s
}

func (s *AuditService) ready() error {
	switch {
	case s.audits == nil:
		return errors.New("audit repository not set")
	case s.gaps == nil:
		return errors.New("compliance gap repository not set")
	case s.documents == nil:
		return errors.New("document repository not set")
	case s.quota == nil:
		return errors.New("quota gate not set")
	case s.llmClient == nil:
		return errors.New("llm client not set")
	}
	return nil
}

// StartAuditRequest represents a request to audit a subject document against
// either an uploaded standard document or a preset standard
type StartAuditRequest struct {
	UserID             uuid.UUID
	StandardDocumentID *uuid.UUID
	StandardPreset     string
	SubjectDocumentID  uuid.UUID
}

// StartAudit validates the inputs, reserves quota, records the audit and
// schedules the analysis in the background. It returns before the model is
// called.
func (s *AuditService) StartAudit(ctx context.Context, req StartAuditRequest) (*models.Audit, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	audit := &models.Audit{
		UserID:             req.UserID,
		StandardDocumentID: req.StandardDocumentID,
		SubjectDocumentID:  req.SubjectDocumentID,
		Status:             models.AuditStatusAnalyzing,
	}
	if preset := strings.TrimSpace(req.StandardPreset); preset != "" && req.StandardDocumentID == nil {
		audit.StandardPreset = &preset
	}

	// 1. Load and validate inputs before spending quota or tokens
	if _, _, _, err := s.auditInputs(ctx, audit); err != nil {
		return nil, err
	}

	// 2. Reserve quota atomically
	if err := s.quota.Reserve(ctx, req.UserID); err != nil {
		return nil, err
	}

	// 3. Record the audit
	if err := s.audits.Create(ctx, audit); err != nil {
		s.quota.Release(context.WithoutCancel(ctx), req.UserID)
		return nil, fmt.Errorf("failed to create audit: %w", err)
	}

	s.logger.Info("audit started",
		zap.String("audit_id", audit.ID.String()),
		zap.String("user_id", req.UserID.String()),
	)

	s.dispatch(audit.ID)
	return audit, nil
}

// dispatch runs ProcessAudit detached from the request context
func (s *AuditService) dispatch(auditID uuid.UUID) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.processTimeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("audit processing panicked", zap.String("audit_id", auditID.String()), zap.Any("panic", r))
				s.failByID(ctx, auditID, fmt.Errorf("internal error: %v", r))
			}
		}()

		if err := s.ProcessAudit(ctx, auditID); err != nil {
			s.logger.Error("audit processing failed", zap.String("audit_id", auditID.String()), zap.Error(err))
		}
	}()
}

// Wait blocks until every scheduled analysis has finished
func (s *AuditService) Wait() {
	s.wg.Wait()
}

// auditInputs resolves the standard name and text and the subject text of an audit
func (s *AuditService) auditInputs(ctx context.Context, audit *models.Audit) (standardName, standardText, subjectText string, err error) {
	switch {
	case audit.StandardDocumentID != nil:
		doc, err := ownedDocument(ctx, s.documents, audit.UserID, *audit.StandardDocumentID)
		if err != nil {
			return "", "", "", err
		}
		standardName, standardText = doc.Name, strings.TrimSpace(doc.Text())
		if standardText == "" {
			return "", "", "", ErrStandardEmpty
		}
	case audit.StandardPreset != nil:
		preset, ok := standards.Lookup(*audit.StandardPreset)
		if !ok {
			return "", "", "", ErrUnknownStandard
		}
		standardName, standardText = preset.ShortName, preset.Text()
	default:
		return "", "", "", ErrMissingStandard
	}

	subject, err := ownedDocument(ctx, s.documents, audit.UserID, audit.SubjectDocumentID)
	if err != nil {
		return "", "", "", err
	}
	subjectText = strings.TrimSpace(subject.Text())
	if utf8.RuneCountInString(subjectText) < MinSubjectRunes {
		return "", "", "", ErrSubjectTooShort
	}

	return standardName, standardText, subjectText, nil
}

// ProcessAudit calls the model, extracts the analysis and stores the gaps.
// Failures are recorded on the audit and the reserved quota is released.
func (s *AuditService) ProcessAudit(ctx context.Context, auditID uuid.UUID) error {
	if err := s.ready(); err != nil {
		return err
	}

	// 1. Load audit and inputs
	audit, err := s.audits.GetByID(ctx, auditID)
	if err != nil {
		return fmt.Errorf("failed to load audit: %w", err)
	}

	_, standardText, subjectText, err := s.auditInputs(ctx, audit)
	if err != nil {
		s.fail(ctx, audit, err)
		return err
	}

	// 2. Call the model
	prompt := analysis.AuditPrompt(standardText, subjectText)
	raw, err := s.llmClient.Generate(ctx, prompt, llm.Settings(analysis.AuditTemperature, analysis.AuditMaxOutputTokens))
	switch {
	case errors.Is(err, llm.ErrAPIKeyMissing):
		s.logger.Warn("no LLM API key configured, using demo analysis", zap.String("audit_id", auditID.String()))
		raw = analysis.DemoResponse
	case err != nil:
		s.fail(ctx, audit, err)
		return fmt.Errorf("failed to generate analysis: %w", err)
	}

	// 3. Extract; this never fails
	result := s.extractor.Extract(raw)

	// 4. Store gaps and complete the audit
	gaps := make([]*models.ComplianceGap, 0, len(result.Gaps))
	for _, g := range result.Gaps {
		gap := &models.ComplianceGap{
			AuditID:             auditID,
			RiskLevel:           string(g.RiskLevel),
			Category:            g.Category,
			OriginalClause:      g.OriginalClause,
			RegulationReference: g.RegulationReference,
			Explanation:         g.Explanation,
			LiabilityUSD:        g.LiabilityUSD,
		}
		if g.CompliantRewrite != "" {
			rewrite := g.CompliantRewrite
			gap.CompliantRewrite = &rewrite
		}
		gaps = append(gaps, gap)
	}

	if err := s.audits.Complete(ctx, auditID, result.HealthScore, result.TotalLiabilityUSD, gaps); err != nil {
		s.fail(ctx, audit, err)
		return fmt.Errorf("failed to store analysis: %w", err)
	}

	s.logger.Info("audit completed",
		zap.String("audit_id", auditID.String()),
		zap.Int("health_score", result.HealthScore),
		zap.Float64("total_liability_usd", result.TotalLiabilityUSD),
		zap.Int("gaps", len(gaps)),
		zap.Bool("fallback", analysis.IsFallback(result)),
	)
	return nil
}

func (s *AuditService) failByID(ctx context.Context, auditID uuid.UUID, cause error) {
	audit, err := s.audits.GetByID(context.WithoutCancel(ctx), auditID)
	if err != nil {
		s.logger.Error("failed to load audit for failure", zap.String("audit_id", auditID.String()), zap.Error(err))
		return
	}
	s.fail(ctx, audit, cause)
}

// fail records the failure and returns the reserved audit to the quota. It
// runs on a context detached from cancellation so a timed-out analysis is
// still recorded.
func (s *AuditService) fail(ctx context.Context, audit *models.Audit, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.audits.Fail(ctx, audit.ID, failureMessage(cause)); err != nil {
		s.logger.Error("failed to mark audit failed", zap.String("audit_id", audit.ID.String()), zap.Error(err))
	}
	s.quota.Release(ctx, audit.UserID)
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, llm.ErrAPIKeyRestricted):
		return "The AI provider rejected the API key. It may be restricted or unavailable in this region."
	case errors.Is(err, context.DeadlineExceeded):
		return "The analysis timed out. Please retry."
	default:
		return err.Error()
	}
}

// access resolves the caller's access level, mapping a missing audit
func (s *AuditService) access(ctx context.Context, caller Caller, auditID uuid.UUID) (models.AccessLevel, error) {
	level, err := s.audits.AccessLevel(ctx, auditID, caller.UserID, caller.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.AccessNone, ErrAuditNotFound
		}
		return models.AccessNone, fmt.Errorf("failed to check access: %w", err)
	}
	return level, nil
}

// GetAudit returns an audit with its gaps. The caller must own the audit or
// have it shared with them.
func (s *AuditService) GetAudit(ctx context.Context, caller Caller, auditID uuid.UUID) (*models.AuditDetail, error) {
	if s.audits == nil || s.gaps == nil {
		return nil, errors.New("audit repository not set")
	}

	level, err := s.access(ctx, caller, auditID)
	if err != nil {
		return nil, err
	}
	if !level.CanView() {
		return nil, ErrForbidden
	}

	audit, err := s.audits.GetByID(ctx, auditID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAuditNotFound
		}
		return nil, fmt.Errorf("failed to load audit: %w", err)
	}

	gaps, err := s.gaps.ListByAuditID(ctx, auditID)
	if err != nil {
		return nil, fmt.Errorf("failed to load gaps: %w", err)
	}
	if gaps == nil {
		gaps = []*models.ComplianceGap{}
	}

	return &models.AuditDetail{Audit: audit, Gaps: gaps, Permission: level}, nil
}

// ListAudits returns a page of the user's own audits, newest first
func (s *AuditService) ListAudits(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Audit, error) {
	if s.audits == nil {
		return nil, errors.New("audit repository not set")
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	offset = max(offset, 0)

	audits, err := s.audits.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}
	if audits == nil {
		audits = []*models.Audit{}
	}
	return audits, nil
}

// MarkGapApplied records whether a suggested rewrite was applied. It needs
// owner or edit access.
func (s *AuditService) MarkGapApplied(ctx context.Context, caller Caller, gapID uuid.UUID, applied bool) (*models.ComplianceGap, error) {
	if s.audits == nil || s.gaps == nil {
		return nil, errors.New("audit repository not set")
	}

	gap, err := s.gaps.GetByID(ctx, gapID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGapNotFound
		}
		return nil, fmt.Errorf("failed to load gap: %w", err)
	}

	level, err := s.access(ctx, caller, gap.AuditID)
	if err != nil {
		return nil, err
	}
	if !level.CanEdit() {
		return nil, ErrForbidden
	}

	updated, err := s.gaps.SetApplied(ctx, gapID, applied)
	if err != nil {
		return nil, fmt.Errorf("failed to update gap: %w", err)
	}
	return updated, nil
}

// RewriteContract asks the model for a fully compliant version of the
// subject document and stores it on the audit
func (s *AuditService) RewriteContract(ctx context.Context, caller Caller, auditID uuid.UUID) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}

	level, err := s.access(ctx, caller, auditID)
	if err != nil {
		return "", err
	}
	if !level.CanEdit() {
		return "", ErrForbidden
	}

	audit, err := s.audits.GetByID(ctx, auditID)
	if err != nil {
		return "", fmt.Errorf("failed to load audit: %w", err)
	}
	if audit.Status != models.AuditStatusCompleted {
		return "", ErrAuditNotCompleted
	}

	standardName, standardText, subjectText, err := s.auditInputs(ctx, audit)
	if err != nil {
		return "", err
	}

	prompt := analysis.RewritePrompt(standardName, standardText, subjectText)
	contract, err := s.llmClient.Generate(ctx, prompt, llm.Settings(analysis.RewriteTemperature, rewriteMaxOutputTokens))
	if err != nil {
		return "", fmt.Errorf("failed to generate rewrite: %w", err)
	}
	contract = trimMarkdownFence(contract)

	if err := s.audits.SetCompliantContract(ctx, auditID, contract); err != nil {
		return "", fmt.Errorf("failed to store rewrite: %w", err)
	}
	return contract, nil
}

// trimMarkdownFence removes a single fence wrapping the whole response
func trimMarkdownFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return s
	}
	s = strings.TrimSuffix(strings.TrimRight(s, " \t\r\n"), "```")
	return strings.TrimSpace(s)
}

// CompareAudits summarizes two completed audits side by side, typically an
// original contract and its revision
func (s *AuditService) CompareAudits(ctx context.Context, caller Caller, originalID, revisedID uuid.UUID) (*models.AuditComparison, error) {
	if s.audits == nil || s.gaps == nil {
		return nil, errors.New("audit repository not set")
	}
	if originalID == revisedID {
		return nil, ErrSameAudit
	}

	var original, revised *models.AuditSummary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		original, err = s.summary(gctx, caller, originalID)
		return err
	})
	g.Go(func() error {
		var err error
		revised, err = s.summary(gctx, caller, revisedID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.AuditComparison{
		Original:        *original,
		Revised:         *revised,
		HealthDelta:     revised.HealthScore - original.HealthScore,
		LiabilityDelta:  revised.TotalLiabilityUSD - original.TotalLiabilityUSD,
		ResolvedGapDiff: totalGaps(original) - totalGaps(revised),
	}, nil
}

func (s *AuditService) summary(ctx context.Context, caller Caller, auditID uuid.UUID) (*models.AuditSummary, error) {
	detail, err := s.GetAudit(ctx, caller, auditID)
	if err != nil {
		return nil, err
	}
	if detail.Audit.Status != models.AuditStatusCompleted {
		return nil, ErrAuditNotCompleted
	}

	summary := &models.AuditSummary{
		AuditID:    auditID,
		Status:     detail.Audit.Status,
		GapsByRisk: map[string]int{},
	}
	if detail.Audit.HealthScore != nil {
		summary.HealthScore = *detail.Audit.HealthScore
	}
	if detail.Audit.TotalLiabilityUSD != nil {
		summary.TotalLiabilityUSD = *detail.Audit.TotalLiabilityUSD
	}
	for _, gap := range detail.Gaps {
		summary.GapsByRisk[gap.RiskLevel]++
	}
	return summary, nil
}

func totalGaps(summary *models.AuditSummary) int {
	total := 0
	for _, n := range summary.GapsByRisk {
		total += n
	}
	return total
}

// Dashboard aggregates the user's recent audits
func (s *AuditService) Dashboard(ctx context.Context, userID uuid.UUID) (*models.DashboardStats, error) {
	if s.audits == nil || s.gaps == nil {
		return nil, errors.New("audit repository not set")
	}

	var (
		recent     []*models.Audit
		count      int
		categories map[string]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recent, err = s.audits.ListByUserID(gctx, userID, RecentAuditCount, 0)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = s.audits.CountByUserID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.gaps.CategoryCounts(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	stats := &models.DashboardStats{
		RecentAudits:   recent,
		AuditCount:     count,
		RiskByCategory: categories,
	}
	if stats.RecentAudits == nil {
		stats.RecentAudits = []*models.Audit{}
	}
	if stats.RiskByCategory == nil {
		stats.RiskByCategory = map[string]int{}
	}

	healthSum, completed := 0, 0
	for _, audit := range recent {
		if audit.Status != models.AuditStatusCompleted {
			continue
		}
		if audit.HealthScore != nil {
			healthSum += *audit.HealthScore
			completed++
		}
		if audit.TotalLiabilityUSD != nil {
			stats.TotalLiabilityUSD += *audit.TotalLiabilityUSD
		}
	}
	if completed > 0 {
		stats.AverageHealthScore = int(math.Round(float64(healthSum) / float64(completed)))
	}

	return stats, nil
}
