package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"reelsync/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Store.BatchSize != 1000 {
		t.Fatalf("default batch size = %d, want 1000", cfg.Store.BatchSize)
	}
	if cfg.Catalog.VoteIncreaseThreshold != 1.05 {
		t.Fatalf("default vote threshold = %v, want 1.05", cfg.Catalog.VoteIncreaseThreshold)
	}
	if !cfg.Reviews.RequireFirstWorld {
		t.Fatal("expected require_first_world to default to true")
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	path := writeConfig(t, `
[reviews]
request_delay = 1.5
min_review_words = 50

[store]
batch_size = 250
`)
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected resolved path %q, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.Reviews.RequestDelay != 1.5 {
		t.Fatalf("request_delay = %v, want 1.5", cfg.Reviews.RequestDelay)
	}
	if cfg.Reviews.MinReviewWords != 50 {
		t.Fatalf("min_review_words = %d, want 50", cfg.Reviews.MinReviewWords)
	}
	if cfg.Store.BatchSize != 250 {
		t.Fatalf("batch_size = %d, want 250", cfg.Store.BatchSize)
	}
	// Untouched sections keep defaults.
	if cfg.Reviews.RateLimitBaseWait != 60 {
		t.Fatalf("rate_limit_base_wait = %d, want 60", cfg.Reviews.RateLimitBaseWait)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"zero batch", "[store]\nbatch_size = 0\n"},
		{"bad log format", "[logging]\nformat = \"xml\"\n"},
		{"threshold below one", "[catalog]\nvote_increase_threshold = 0.9\n"},
		{"max wait below base", "[reviews]\nrate_limit_base_wait = 120\nrate_limit_max_wait = 60\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.contents)
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}

func TestDelayDurationAccessors(t *testing.T) {
	cfg := config.Default()

	if got := cfg.Reviews.RequestDelayDuration(); got != 300*time.Millisecond {
		t.Fatalf("review request delay = %v, want 300ms", got)
	}
	if got := cfg.Reviews.RateLimitBaseWaitDuration(); got != 60*time.Second {
		t.Fatalf("rate limit base wait = %v, want 60s", got)
	}
	if got := cfg.Reviews.RateLimitMaxWaitDuration(); got != 300*time.Second {
		t.Fatalf("rate limit max wait = %v, want 300s", got)
	}
	if got := cfg.OMDb.RequestDelayDuration(); got != 100*time.Millisecond {
		t.Fatalf("omdb request delay = %v, want 100ms", got)
	}
}
