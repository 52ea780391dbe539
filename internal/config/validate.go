package config

import (
	"errors"
	"fmt"
)

var knownCompressions = map[string]struct{}{
	"c0":  {},
	"c23": {},
	"c40": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validatePreflight(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDataset() error {
	if _, ok := knownCompressions[c.Dataset.Compression]; !ok {
		return fmt.Errorf("dataset.compression must be one of c0, c23, c40; got %q", c.Dataset.Compression)
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.FPS <= 0 {
		return errors.New("media.fps must be positive")
	}
	if c.Media.FrameSize <= 0 {
		return errors.New("media.frame_size must be positive")
	}
	return nil
}

func (c *Config) validateClassifier() error {
	if c.Classifier.BatchSize <= 0 {
		return errors.New("classifier.batch_size must be positive")
	}
	if c.Classifier.GPUFraction < 0 || c.Classifier.GPUFraction > 1 {
		return errors.New("classifier.gpu_fraction must be between 0 and 1")
	}
	return nil
}

func (c *Config) validatePreflight() error {
	if c.Preflight.MinFreeGiB < 0 {
		return errors.New("preflight.min_free_gib must be >= 0")
	}
	return nil
}
