package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fakebench/internal/classifier"
	"fakebench/internal/logging"
	"fakebench/internal/pipeline"
	"fakebench/internal/services"
)

func newEvaluateCommand(ctx *commandContext) *cobra.Command {
	var dataDir string
	var modelsDir string
	var mtype string
	var output string
	var batchSize int
	var gpuFraction float64

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score transferred classifiers against every manipulation class",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()

			if !cmd.Flags().Changed("batch-size") {
				batchSize = cfg.Classifier.BatchSize
			}
			if !cmd.Flags().Changed("gpu-fraction") {
				gpuFraction = cfg.Classifier.GPUFraction
			}

			dataDir = strings.TrimSpace(dataDir)
			modelsDir = strings.TrimSpace(modelsDir)
			for _, required := range []struct{ name, value string }{
				{"data-dir", dataDir},
				{"models_dir", modelsDir},
				{"mtype", strings.TrimSpace(mtype)},
				{"output", strings.TrimSpace(output)},
			} {
				if required.value == "" {
					return services.NewExitError(2, fmt.Errorf("required flag --%s not set", required.name))
				}
			}
			if !isDirectory(dataDir) {
				return services.NewExitError(2, fmt.Errorf("%q is not a directory", dataDir))
			}
			if !isDirectory(modelsDir) {
				return services.NewExitError(2, fmt.Errorf("%q is not a directory", modelsDir))
			}
			if gpuFraction < 0 || gpuFraction > 1 {
				return services.NewExitError(2, errors.New("gpu-fraction must be between 0.0 and 1.0"))
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}

			store := openRunLedger(cfg, logger)
			if store != nil {
				defer store.Close()
			}

			registry := classifier.NewScorerRegistry(cfg.Classifier.ScorerCommand, gpuFraction)
			evaluator := pipeline.NewEvaluator(registry, store, logger, pipeline.IO{
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			})
			_, err = evaluator.Run(cmd.Context(), pipeline.EvaluateRequest{
				DataDir:    dataDir,
				ModelsDir:  modelsDir,
				MType:      mtype,
				OutputFile: output,
				BatchSize:  batchSize,
			})
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&dataDir, "data-dir", "d", "", "Directory containing one test subdirectory per class")
	flags.StringVar(&modelsDir, "models_dir", "", "Directory containing transferred model weights grouped by type")
	flags.StringVarP(&mtype, "mtype", "m", "", "Model architecture to evaluate")
	flags.StringVarP(&output, "output", "o", "", "CSV file to write or append recall rows to")
	flags.IntVarP(&batchSize, "batch-size", "b", 16, "Number of images scored per batch")
	flags.Float64VarP(&gpuFraction, "gpu-fraction", "g", 1.0, "Fraction of GPU memory the scorer may use, between 0.0 and 1.0")

	return cmd
}
