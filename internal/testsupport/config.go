package testsupport

import (
	"path/filepath"
	"testing"

	"reelsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Export.Path = filepath.Join(base, "export", "ratings.csv")
	cfgVal.OMDb.APIKey = "test"
	cfgVal.Reviews.RequestDelay = 0
	cfgVal.OMDb.RequestDelay = 0

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

// WithBatchSize overrides the store write batch size on the test config.
func WithBatchSize(size int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.BatchSize = size
	}
}

// WithOMDbKey sets the OMDb API key on the test config.
func WithOMDbKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OMDb.APIKey = key
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
