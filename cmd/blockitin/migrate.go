package main

import (
	"context"
	"time"

	"github.com/blockitin/blockitin-ai/internal/database"
	"github.com/spf13/cobra"
)

const migrateTimeout = time.Minute

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, loggerService, log := bootstrap()
			defer loggerService.Shutdown()

			ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
			defer cancel()

			if err := database.Migrate(ctx, &log, cfg); err != nil {
				log.Error().Err(err).Msg("migration failed")
				return err
			}
			return nil
		},
	}
}
