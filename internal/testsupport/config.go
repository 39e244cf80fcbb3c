package testsupport

import (
	"path/filepath"
	"testing"

	"reelmatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Retries never sleep long: backoff starts at one millisecond.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StorePath = filepath.Join(base, "data", "matches.db")
	cfgVal.TMDB.APIKey = "test"
	cfgVal.TMDB.MinRequestIntervalMS = 0
	cfgVal.TMDB.InitialBackoffSeconds = 0.001
	cfgVal.OMDb.APIKeys = []string{"omdb-test"}
	cfgVal.OMDb.InitialBackoffSeconds = 0.001
	cfgVal.Batch.Workers = 2
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
	}
}

// WithTMDBServer points the matching provider at a fake server.
func WithTMDBServer(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = baseURL
	}
}

// WithOMDbServer points the ratings provider at a fake server and sets its keys.
func WithOMDbServer(baseURL string, keys ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OMDb.BaseURL = baseURL
		if len(keys) > 0 {
			b.cfg.OMDb.APIKeys = keys
		}
	}
}

// WithoutRatings disables ratings enrichment for batch runs.
func WithoutRatings() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Batch.FetchRatings = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
