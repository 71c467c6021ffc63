package main

import (
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger, sync, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer sync()

		ctx := cmd.Context()
		db, err := database.Connect(ctx, cfg.Postgres(), logger)
		if err != nil {
			return err
		}
		defer db.Close()

		return database.NewMigrationService(logger, cfg.Migrations()).Migrate(db.DB.DB)
	},
}
