package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/org-admin/internal/config"
	"github.com/spec-kit/org-admin/internal/observability"
	"github.com/spec-kit/org-admin/internal/persistence"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "org-admin",
		Short:         "Department and employee administration",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newServeCmd(), newMigrateCmd(), newCreateUserCmd())
	return cmd
}

// runtime holds what every command needs after config is loaded.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &runtime{cfg: cfg, logger: logger}, nil
}

func (r *runtime) postgres(ctx context.Context) (*persistence.Postgres, error) {
	pg, err := persistence.NewPostgres(ctx, r.cfg.Postgres, r.logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pg, nil
}

func (r *runtime) close() {
	_ = r.logger.Sync()
}
