package main

import (
	"github.com/spf13/cobra"

	"task-tracker-backend/internal/logger"
)

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, _, dbx, err := open(ctx, flags)
			if err != nil {
				return err
			}
			defer dbx.Close()

			logger.Info(ctx, "migrations applied", "driver", cfg.DBDriver)
			return nil
		},
	}
}
