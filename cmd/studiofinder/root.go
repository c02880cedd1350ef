package main

import (
	"github.com/spf13/cobra"

	"studiofinder_backend/internal/app"
	"studiofinder_backend/internal/config"
)

type commandContext struct {
	configPath string
	cfg        *config.Config
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	app.InitLogging(cfg)
	c.cfg = cfg
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "studiofinder",
		Short:         "Voiceover studio directory API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		// serve по умолчанию
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(ctx.cfg)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path (default config/config.yaml or $CONFIG_PATH)")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newSeedAdminCommand(ctx))
	rootCmd.AddCommand(newEnforceCommand(ctx))

	return rootCmd
}
