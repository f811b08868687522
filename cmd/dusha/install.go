package main

import (
	"github.com/joho/godotenv"
	"github.com/sandevgo/dusha/internal/config"
	"github.com/sandevgo/dusha/internal/service/installer"
	"github.com/sandevgo/dusha/pkg/log"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:           "install",
	Short:         "Create the runtime directory and its .env interactively",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Setup logger
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting installation process")

		// run wizard (includes save step)
		if _, err := installer.RunWizard(); err != nil {
			return err
		}

		envPath := config.GetEnvPath()
		if err := godotenv.Load(envPath); err != nil {
			logger.Warn().Err(err).Str("path", envPath).Msg("failed to load .env file")
		}

		logger.Info().Msgf("initialized runtime directory at: %s", config.GetRuntimePath())
		logger.Info().Msg("Installation complete! You can now run 'dusha start'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
