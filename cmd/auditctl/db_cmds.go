package main

import (
	"errors"
	"fmt"

	"auditease-backend/models"
	"auditease-backend/repository"
	"auditease-backend/service"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// migrateCmd creates the schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Apply every schema step (tables, indexes and access functions).
Each step is idempotent, so migrate can run on every deploy.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pool, err := connect(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := repository.EnsureSchema(cmd.Context(), pool, logger); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
	return nil
}

var (
	seedEmail    string
	seedPassword string
)

// seedUserCmd creates a local user for development
var seedUserCmd = &cobra.Command{
	Use:   "seed-user",
	Short: "Create a local user with a free subscription",
	RunE:  runSeedUser,
}

func init() {
	seedUserCmd.Flags().StringVar(&seedEmail, "email", "test@example.com", "user email")
	seedUserCmd.Flags().StringVar(&seedPassword, "password", "", "user password (required)")
	_ = seedUserCmd.MarkFlagRequired("password")
}

func runSeedUser(cmd *cobra.Command, _ []string) error {
	email, err := service.NormalizeEmail(seedEmail)
	if err != nil {
		return err
	}
	if len(seedPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := repository.NewUserRepository(pool)
	if existing, err := users.GetByEmail(ctx, email); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "User %s already exists (ID: %s)\n", existing.Email, existing.ID)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: string(hash)}
	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	sub, err := repository.NewSubscriptionRepository(pool).GetOrCreate(ctx, user.ID, cfg.FreeAuditLimit)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "User created")
	fmt.Fprintf(out, "   ID: %s\n", user.ID)
	fmt.Fprintf(out, "   Email: %s\n", user.Email)
	fmt.Fprintf(out, "   Plan: %s (%d free audits)\n", sub.PlanTier, sub.FreeAuditsLimit)
	return nil
}
