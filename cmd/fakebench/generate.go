package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fakebench/internal/gannotation"
	"fakebench/internal/landmarks"
	"fakebench/internal/logging"
	"fakebench/internal/pipeline"
	"fakebench/internal/preflight"
	"fakebench/internal/services"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <data-dir>",
		Short: "Compute landmark encodings and reenactment videos for a dataset tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()

			dataDir := strings.TrimSpace(args[0])
			if !isDirectory(dataDir) {
				return services.NewExitError(2, fmt.Errorf("%q is not a directory", dataDir))
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}

			results := preflight.RunGenerate(cfg, dataDir)
			for _, warning := range preflight.Warnings(results) {
				logger.Warn("preflight warning",
					logging.String("check", warning.Name),
					logging.String("detail", warning.Detail))
			}
			if failure, ok := preflight.FirstFailure(results); ok {
				return services.NewExitError(2, fmt.Errorf("%s: %s", failure.Name, failure.Detail))
			}

			detector, err := landmarks.NewDetector(cfg.Landmarks.ModelsDir)
			if err != nil {
				return services.NewExitError(2, err)
			}
			defer detector.Close()

			reenactor, err := gannotation.New(cfg.GANnotation.Command, cfg.GANnotation.Weights)
			if err != nil {
				return services.NewExitError(2, err)
			}

			store := openRunLedger(cfg, logger)
			if store != nil {
				defer store.Close()
			}

			generator := pipeline.NewGenerator(cfg, detector, reenactor, store, logger, pipeline.IO{
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			})
			_, err = generator.Run(cmd.Context(), dataDir)
			return err
		},
	}
}
