package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Catalog contains configuration for the bulk dataset download.
type Catalog struct {
	BasicsURL  string   `toml:"basics_url"`
	RatingsURL string   `toml:"ratings_url"`
	MinVotes   int64    `toml:"min_votes"`
	TitleTypes []string `toml:"title_types"`
	// VoteIncreaseThreshold is the relative vote growth that flags an
	// already-stored title for review re-ingestion (1.05 = 5% more votes).
	VoteIncreaseThreshold float64 `toml:"vote_increase_threshold"`
}

// Reviews contains configuration for the review scraping pipeline.
type Reviews struct {
	GraphQLURL     string `toml:"graphql_url"`
	UserAgent      string `toml:"user_agent"`
	RequestTimeout int    `toml:"request_timeout"`

	// RequestDelay is the courtesy pause in seconds between successful
	// page fetches; it is pacing, not backoff.
	RequestDelay float64 `toml:"request_delay"`

	RateLimitBaseWait   int `toml:"rate_limit_base_wait"`
	RateLimitMaxWait    int `toml:"rate_limit_max_wait"`
	MaxRateLimitRetries int `toml:"max_rate_limit_retries"`

	MaxConsecutiveFailures int `toml:"max_consecutive_failures"`

	MinHelpfulVotes int `toml:"min_helpful_votes"`
	MinReviewWords  int `toml:"min_review_words"`

	// KeepPartialOnError persists reviews accumulated before a fatal
	// mid-fetch error instead of discarding them with the title.
	KeepPartialOnError bool `toml:"keep_partial_on_error"`

	// RequireFirstWorld gates review scraping on a positive first-world
	// classification in addition to the needs-update flag.
	RequireFirstWorld bool `toml:"require_first_world"`
}

// OMDb contains configuration for the OMDb enrichment API.
type OMDb struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	RequestTimeout int     `toml:"request_timeout"`
	RequestDelay   float64 `toml:"request_delay"`
}

// Store contains configuration for the persisted title/review store.
type Store struct {
	BatchSize int `toml:"batch_size"`
}

// Export contains configuration for the spreadsheet export step.
type Export struct {
	Path string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reelsync.
//
// Sections by subsystem:
//   - Paths: data and log directories
//   - Catalog: bulk dataset URLs and ingestion thresholds
//   - Reviews: scraper pacing, backoff budgets, and filter thresholds
//   - OMDb: first-world enrichment API
//   - Store: batch sizing for persisted writes
//   - Export: spreadsheet output location
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Catalog Catalog `toml:"catalog"`
	Reviews Reviews `toml:"reviews"`
	OMDb    OMDb    `toml:"omdb"`
	Store   Store   `toml:"store"`
	Export  Export  `toml:"export"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelsync/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelsync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories required for a run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RequestDelayDuration returns the review courtesy delay as a duration.
func (r Reviews) RequestDelayDuration() time.Duration {
	return time.Duration(r.RequestDelay * float64(time.Second))
}

// RateLimitBaseWaitDuration returns the first rate-limit backoff step.
func (r Reviews) RateLimitBaseWaitDuration() time.Duration {
	return time.Duration(r.RateLimitBaseWait) * time.Second
}

// RateLimitMaxWaitDuration returns the rate-limit backoff ceiling.
func (r Reviews) RateLimitMaxWaitDuration() time.Duration {
	return time.Duration(r.RateLimitMaxWait) * time.Second
}

// RequestDelayDuration returns the OMDb pacing delay as a duration.
func (o OMDb) RequestDelayDuration() time.Duration {
	return time.Duration(o.RequestDelay * float64(time.Second))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
