package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"task-tracker-backend/internal/config"
	"task-tracker-backend/internal/db"
	"task-tracker-backend/internal/logger"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "task-tracker",
		Short: "Personal task tracker API",
		Long: `Task tracker backend: accounts, per-user tasks with keyword categories,
avatar uploads and LLM-assisted task drafts.

Running without a subcommand starts the HTTP server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var lvl logger.Level
			if err := lvl.UnmarshalText([]byte(flags.logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level %q", flags.logLevel)
			}
			logger.SetLevel(lvl)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", os.Getenv("CONFIG_FILE"), "path to YAML config file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "debug, info, warn or error")

	root.AddCommand(newServeCmd(flags), newMigrateCmd(flags))
	return root
}

// open loads config, connects and applies migrations.
func open(ctx context.Context, flags *globalFlags) (*config.Config, db.Dialect, *sqlx.DB, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, "", nil, err
	}
	d, err := db.ParseDialect(cfg.DBDriver)
	if err != nil {
		return nil, "", nil, err
	}

	dbx, err := db.Connect(ctx, d, cfg.ConnString())
	if err != nil {
		return nil, "", nil, err
	}
	if err := db.MigrateUp(ctx, dbx, d); err != nil {
		_ = dbx.Close()
		return nil, "", nil, err
	}
	return cfg, d, dbx, nil
}
