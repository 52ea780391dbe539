package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDataset()
	c.normalizeMedia()
	if err := c.normalizeLandmarks(); err != nil {
		return err
	}
	if err := c.normalizeGANnotation(); err != nil {
		return err
	}
	c.normalizeClassifier()
	c.normalizePreflight()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDataset() {
	c.Dataset.Compression = strings.ToLower(strings.TrimSpace(c.Dataset.Compression))
	if c.Dataset.Compression == "" {
		c.Dataset.Compression = defaultCompression
	}
}

func (c *Config) normalizeMedia() {
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = defaultFFmpegBinary
	}
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
	if c.Media.FFprobeBinary == "" {
		c.Media.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Media.FPS <= 0 {
		c.Media.FPS = defaultFPS
	}
	if c.Media.FrameSize <= 0 {
		c.Media.FrameSize = defaultFrameSize
	}
}

func (c *Config) normalizeLandmarks() error {
	var err error
	if strings.TrimSpace(c.Landmarks.ModelsDir) == "" {
		c.Landmarks.ModelsDir = defaultModelsDir
	}
	if c.Landmarks.ModelsDir, err = expandPath(c.Landmarks.ModelsDir); err != nil {
		return fmt.Errorf("landmarks.models_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGANnotation() error {
	c.GANnotation.Command = strings.TrimSpace(c.GANnotation.Command)
	if c.GANnotation.Command == "" {
		c.GANnotation.Command = defaultGANnotationCommand
	}
	c.GANnotation.Weights = strings.TrimSpace(c.GANnotation.Weights)
	if c.GANnotation.Weights != "" {
		var err error
		if c.GANnotation.Weights, err = expandPath(c.GANnotation.Weights); err != nil {
			return fmt.Errorf("gannotation.weights: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeClassifier() {
	c.Classifier.ScorerCommand = strings.TrimSpace(c.Classifier.ScorerCommand)
	if c.Classifier.ScorerCommand == "" {
		c.Classifier.ScorerCommand = defaultScorerCommand
	}
	if c.Classifier.BatchSize <= 0 {
		c.Classifier.BatchSize = defaultBatchSize
	}
}

func (c *Config) normalizePreflight() {
	if c.Preflight.MinFreeGiB < 0 {
		c.Preflight.MinFreeGiB = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
