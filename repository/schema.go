package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type schemaStep struct {
	name string
	sql  string
}

// schemaSteps are idempotent; running them against an existing database is a no-op
var schemaSteps = []schemaStep{
	{
		name: "pgcrypto extension",
		sql:  `CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	},
	{
		name: "users table",
		sql: `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{
		name: "profiles table",
		sql: `
CREATE TABLE IF NOT EXISTS profiles (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL UNIQUE,
    organization_name TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{
		name: "documents table",
		sql: `
CREATE TABLE IF NOT EXISTS documents (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL,
    name TEXT NOT NULL,
    document_type TEXT NOT NULL CHECK (document_type IN ('standard', 'subject')),
    file_path TEXT NOT NULL,
    file_size BIGINT,
    extracted_text TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{
		name: "audits table",
		sql: `
CREATE TABLE IF NOT EXISTS audits (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL,
    standard_document_id UUID REFERENCES documents(id) ON DELETE SET NULL,
    standard_preset TEXT,
    subject_document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    status TEXT NOT NULL DEFAULT 'analyzing' CHECK (status IN ('analyzing', 'completed', 'failed')),
    health_score INTEGER CHECK (health_score BETWEEN 0 AND 100),
    total_liability_usd DOUBLE PRECISION,
    compliant_contract TEXT,
    error_message TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    completed_at TIMESTAMPTZ
)`,
	},
	{
		name: "compliance_gaps table",
		sql: `
CREATE TABLE IF NOT EXISTS compliance_gaps (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    audit_id UUID NOT NULL REFERENCES audits(id) ON DELETE CASCADE,
    position INTEGER NOT NULL DEFAULT 0,
    risk_level TEXT NOT NULL,
    category TEXT NOT NULL,
    original_clause TEXT NOT NULL DEFAULT '',
    regulation_reference TEXT NOT NULL DEFAULT '',
    explanation TEXT NOT NULL DEFAULT '',
    liability_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
    compliant_rewrite TEXT,
    is_applied BOOLEAN NOT NULL DEFAULT false,
    applied_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{
		name: "audit_shares table",
		sql: `
CREATE TABLE IF NOT EXISTS audit_shares (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    audit_id UUID NOT NULL REFERENCES audits(id) ON DELETE CASCADE,
    invited_by UUID NOT NULL,
    shared_with_email TEXT NOT NULL,
    shared_with_user_id UUID,
    permission_level TEXT NOT NULL DEFAULT 'view' CHECK (permission_level IN ('view', 'edit')),
    share_token TEXT UNIQUE,
    accepted_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT audit_shares_audit_email_unique UNIQUE (audit_id, shared_with_email)
)`,
	},
	{
		name: "user_subscriptions table",
		sql: `
CREATE TABLE IF NOT EXISTS user_subscriptions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL UNIQUE,
    plan_tier TEXT NOT NULL DEFAULT 'free' CHECK (plan_tier IN ('free', 'professional', 'enterprise')),
    billing_period TEXT CHECK (billing_period IN ('monthly', 'annual')),
    free_audits_used INTEGER NOT NULL DEFAULT 0 CHECK (free_audits_used >= 0),
    free_audits_limit INTEGER NOT NULL DEFAULT 10,
    subscription_status TEXT NOT NULL DEFAULT 'active' CHECK (subscription_status IN ('active', 'cancelled', 'expired')),
    current_period_start TIMESTAMPTZ,
    current_period_end TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{
		name: "documents user index",
		sql:  `CREATE INDEX IF NOT EXISTS idx_documents_user ON documents(user_id, created_at DESC)`,
	},
	{
		name: "audits user index",
		sql:  `CREATE INDEX IF NOT EXISTS idx_audits_user ON audits(user_id, created_at DESC)`,
	},
	{
		name: "compliance_gaps audit index",
		sql:  `CREATE INDEX IF NOT EXISTS idx_compliance_gaps_audit ON compliance_gaps(audit_id, position)`,
	},
	{
		name: "is_audit_owner function",
		sql: `
CREATE OR REPLACE FUNCTION is_audit_owner(p_audit_id UUID, p_user_id UUID)
RETURNS BOOLEAN LANGUAGE sql STABLE AS $$
    SELECT EXISTS (SELECT 1 FROM audits WHERE id = p_audit_id AND user_id = p_user_id)
$$`,
	},
	{
		name: "is_audit_shared_with_user function",
		sql: `
CREATE OR REPLACE FUNCTION is_audit_shared_with_user(p_audit_id UUID, p_user_id UUID, p_email TEXT)
RETURNS BOOLEAN LANGUAGE sql STABLE AS $$
    SELECT EXISTS (
        SELECT 1 FROM audit_shares
        WHERE audit_id = p_audit_id
            AND (shared_with_user_id = p_user_id OR shared_with_email = lower(p_email))
    )
$$`,
	},
	{
		name: "user_has_audit_access function",
		sql: `
CREATE OR REPLACE FUNCTION user_has_audit_access(p_audit_id UUID, p_user_id UUID, p_email TEXT)
RETURNS BOOLEAN LANGUAGE sql STABLE AS $$
    SELECT is_audit_owner(p_audit_id, p_user_id)
        OR is_audit_shared_with_user(p_audit_id, p_user_id, p_email)
$$`,
	},
	{
		name: "increment_audits_used function",
		sql: `
CREATE OR REPLACE FUNCTION increment_audits_used(p_user_id UUID)
RETURNS BOOLEAN LANGUAGE sql AS $$
    WITH reserved AS (
        UPDATE user_subscriptions SET
            free_audits_used = free_audits_used + 1,
            updated_at = NOW()
        WHERE user_id = p_user_id
            AND (plan_tier <> 'free' OR free_audits_used < free_audits_limit)
        RETURNING 1
    )
    SELECT EXISTS (SELECT 1 FROM reserved)
$$`,
	},
}

// EnsureSchema creates the tables, indexes and access functions when missing
func EnsureSchema(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, step := range schemaSteps {
		if _, err := db.Exec(ctx, step.sql); err != nil {
			return fmt.Errorf("schema step %q: %w", step.name, err)
		}
		logger.Debug("schema step applied", zap.String("step", step.name))
	}
	logger.Info("database schema ready", zap.Int("steps", len(schemaSteps)))
	return nil
}
