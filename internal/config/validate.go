package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateOMDb(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/reelmatch/config.toml"
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'reelmatch config init')", defaultPath)
	}
	if c.TMDB.MaxRetries < 1 {
		return errors.New("tmdb.max_retries must be at least 1")
	}
	if c.TMDB.InitialBackoffSeconds < 0 {
		return errors.New("tmdb.initial_backoff_seconds must not be negative")
	}
	if c.TMDB.BackoffMultiplier < 1 {
		return errors.New("tmdb.backoff_multiplier must be at least 1")
	}
	if c.TMDB.MinRequestIntervalMS < 0 {
		return errors.New("tmdb.min_request_interval_ms must not be negative")
	}
	return nil
}

// OMDb keys are optional; ratings enrichment is skipped when the pool is empty.
func (c *Config) validateOMDb() error {
	if c.OMDb.MaxRetries < 1 {
		return errors.New("omdb.max_retries must be at least 1")
	}
	if c.OMDb.InitialBackoffSeconds < 0 {
		return errors.New("omdb.initial_backoff_seconds must not be negative")
	}
	if c.OMDb.BackoffMultiplier < 1 {
		return errors.New("omdb.backoff_multiplier must be at least 1")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Workers > 64 {
		return fmt.Errorf("batch.workers must be at most 64 (got %d)", c.Batch.Workers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
