package main

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/org-admin/internal/persistence"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			pg, err := rt.postgres(cmd.Context())
			if err != nil {
				return err
			}
			defer pg.Close()
			return persistence.RunMigrations(cmd.Context(), pg.PoolHandle(), rt.logger)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			pg, err := rt.postgres(cmd.Context())
			if err != nil {
				return err
			}
			defer pg.Close()
			return persistence.MigrationStatus(cmd.Context(), pg.PoolHandle(), rt.logger)
		},
	})
	return cmd
}
