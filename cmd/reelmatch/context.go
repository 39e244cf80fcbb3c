package main

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reelmatch/internal/config"
	"reelmatch/internal/logging"
	"reelmatch/internal/matching"
	"reelmatch/internal/omdb"
	"reelmatch/internal/retry"
	"reelmatch/internal/tmdb"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// loggerValue falls back to a stderr console logger when the configured
// sinks cannot be opened.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			logger, _ = logging.New(logging.Options{Level: "info", Format: "console"})
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) tmdbClient() (*tmdb.Client, error) {
	cfg := c.configValue()
	if cfg == nil {
		return nil, errors.New("configuration unavailable")
	}
	return tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		tmdb.WithIncludeAdult(cfg.TMDB.IncludeAdult),
		tmdb.WithTimeout(cfg.TMDBTimeout()),
		tmdb.WithMinInterval(cfg.TMDBMinInterval()),
	)
}

func (c *commandContext) engine() (*matching.Engine, error) {
	client, err := c.tmdbClient()
	if err != nil {
		return nil, err
	}
	cfg := c.configValue()
	logger := c.loggerValue()
	strategy := retry.New(
		cfg.TMDB.MaxRetries,
		seconds(cfg.TMDB.InitialBackoffSeconds),
		cfg.TMDB.BackoffMultiplier,
		logging.NewComponentLogger(logger, "tmdb"),
	)
	return matching.NewEngine(client,
		matching.WithRetry(strategy),
		matching.WithLogger(logger),
	)
}

// omdbClient returns nil without error when no ratings keys are configured.
func (c *commandContext) omdbClient() (*omdb.Client, error) {
	cfg := c.configValue()
	if cfg == nil {
		return nil, errors.New("configuration unavailable")
	}
	if len(cfg.OMDb.APIKeys) == 0 {
		return nil, nil
	}
	logger := logging.NewComponentLogger(c.loggerValue(), "omdb")
	strategy := retry.New(
		cfg.OMDb.MaxRetries,
		seconds(cfg.OMDb.InitialBackoffSeconds),
		cfg.OMDb.BackoffMultiplier,
		logger,
	)
	return omdb.New(cfg.OMDb.APIKeys, cfg.OMDb.BaseURL,
		omdb.WithRetry(strategy),
		omdb.WithLogger(logger),
		omdb.WithTimeout(cfg.OMDbTimeout()),
	)
}

func newRunID() string {
	return uuid.NewString()
}

func seconds(value float64) time.Duration {
	return time.Duration(value * float64(time.Second))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
