package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/api"
	"github.com/jonesrussell/veracity/internal/bootstrap"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger, err := bootstrap.CreateLogger(cfg)
			if err != nil {
				return err
			}
			defer syncLogger(logger)

			comps, err := bootstrap.NewComponents(cfg, logger)
			if err != nil {
				return fmt.Errorf("initialize components: %w", err)
			}
			defer comps.Close()

			handler := api.NewHandler(comps.Service, comps.Stats, comps.Fetcher, cfg, comps.TextMethod, logger)
			server := api.NewServer(handler, cfg, comps.Telemetry, comps.Checks, logger)

			logger.Info("Veracity API starting",
				infralogger.Int("port", cfg.Service.Port),
				infralogger.String("version", cfg.Service.Version),
			)
			if err = server.RunWithGracefulShutdown(cmd.Context()); err != nil {
				return fmt.Errorf("run server: %w", err)
			}
			return nil
		},
	}
}
