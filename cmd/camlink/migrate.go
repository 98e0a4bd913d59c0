package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/borncrazy123/CamLink/internal/infrastructure/database"
	"github.com/borncrazy123/CamLink/internal/infrastructure/logging"
	"github.com/borncrazy123/CamLink/migrations"
)

func newMigrateCmd() *cobra.Command {
	var flagDown, flagStatus bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or list schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			log := logging.New(cfg.Logging, version)

			db, err := database.Open(ctx, database.Config{
				Path:        cfg.Database.Path,
				WALMode:     cfg.Database.WALMode,
				BusyTimeout: cfg.Database.BusyTimeout,
			})
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close() //nolint:errcheck // CLI exit

			switch {
			case flagStatus:
				applied, pending, err := db.MigrationStatus(ctx, migrations.Source())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, m := range applied {
					fmt.Fprintf(out, "applied  %s  %s\n", m.Version, m.AppliedAt.Format("2006-01-02 15:04:05"))
				}
				for _, m := range pending {
					fmt.Fprintf(out, "pending  %s  %s\n", m.Version, m.Name)
				}
				return nil
			case flagDown:
				if err := db.MigrateDown(ctx, migrations.Source()); err != nil {
					return err
				}
				log.Info("rolled back latest migration", "path", cfg.Database.Path)
				return nil
			default:
				if err := db.Migrate(ctx, migrations.Source()); err != nil {
					return err
				}
				log.Info("database migrations complete", "path", cfg.Database.Path)
				return nil
			}
		},
	}
	cmd.Flags().BoolVar(&flagDown, "down", false, "roll back the most recent migration")
	cmd.Flags().BoolVar(&flagStatus, "status", false, "list applied and pending migrations")
	cmd.MarkFlagsMutuallyExclusive("down", "status")
	return cmd
}
