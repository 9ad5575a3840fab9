package main

import (
	"github.com/blockitin/blockitin-ai/internal/config"
	"github.com/blockitin/blockitin-ai/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "blockitin",
		Short:         "Blockitin AI dashboard, search and chatbot API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

// bootstrap loads config and builds the root logger shared by every command.
func bootstrap() (*config.Config, *logger.LoggerService, zerolog.Logger) {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLogger(cfg.Observability, loggerService)

	return cfg, loggerService, log
}
