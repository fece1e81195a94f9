// Command auditctl is the operator CLI for the AuditEase backend
package main

import (
	"context"
	"fmt"
	"os"

	"auditease-backend/config"
	"auditease-backend/logging"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "auditctl",
	Short: "Operate the AuditEase backend",
	Long: `auditctl manages the AuditEase database and inspects model output.

Available subcommands:
  migrate   - Create or update the database schema
  seed-user - Create a local user with a free subscription
  extract   - Run the resilient extractor on a raw model response
  standards - List the built-in compliance standards`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults to $"+config.ConfigPathEnv+")")
	rootCmd.AddCommand(migrateCmd, seedUserCmd, extractCmd, standardsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadRuntime resolves configuration and builds the logger for a command
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.NewLogger(cfg.LogLevel, "console")
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return pool, nil
}
