package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"studiofinder_backend/database"
	"studiofinder_backend/internal/app"
	"studiofinder_backend/internal/services"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(ctx.cfg)
		},
	}
}

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var sqlMigrations bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.cfg
			if cmd.Flags().Changed("sql") {
				cfg.Database.SQLMigrations = sqlMigrations
			}
			db, sqlDB, err := app.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			if err := database.Migrate(db, cfg.Database); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&sqlMigrations, "sql", false, "Use embedded SQL migrations instead of AutoMigrate (postgres only)")
	return cmd
}

func newSeedAdminCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the first admin from FIRST_ADMIN_EMAIL / FIRST_ADMIN_PASSWORD",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.cfg
			if cfg.FirstAdminEmail == "" || cfg.FirstAdminPassword == "" {
				return fmt.Errorf("first_admin_email and first_admin_password must be set")
			}
			db, sqlDB, err := app.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			created, err := database.SeedFirstAdmin(db, cfg.FirstAdminEmail, cfg.FirstAdminPassword)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Admin %s created\n", cfg.FirstAdminEmail)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Admin %s already exists\n", cfg.FirstAdminEmail)
			}
			return nil
		},
	}
}

func newEnforceCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "enforce",
		Short: "Run one subscription enforcement pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.cfg
			db, sqlDB, err := app.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			deps, err := app.BuildDependencies(cfg)
			if err != nil {
				return err
			}
			container := services.NewServiceContainer(deps)

			report, err := container.EnforcementService.EnforceSubscriptions(cmd.Context(), db, time.Now(), dryRun)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderEnforcementReport(report))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the studios that would change without touching them")
	return cmd
}
