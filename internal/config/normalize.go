package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeReviews()
	c.normalizeOMDb()
	c.normalizeExport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	c.Catalog.BasicsURL = strings.TrimSpace(c.Catalog.BasicsURL)
	c.Catalog.RatingsURL = strings.TrimSpace(c.Catalog.RatingsURL)
	if len(c.Catalog.TitleTypes) == 0 {
		c.Catalog.TitleTypes = Default().Catalog.TitleTypes
	}
	if c.Catalog.VoteIncreaseThreshold == 0 {
		c.Catalog.VoteIncreaseThreshold = defaultVoteIncreaseThreshold
	}
}

func (c *Config) normalizeReviews() {
	c.Reviews.GraphQLURL = strings.TrimSpace(c.Reviews.GraphQLURL)
	c.Reviews.UserAgent = strings.TrimSpace(c.Reviews.UserAgent)
	if c.Reviews.RequestTimeout <= 0 {
		c.Reviews.RequestTimeout = defaultRequestTimeout
	}
	if c.Reviews.MaxRateLimitRetries <= 0 {
		c.Reviews.MaxRateLimitRetries = defaultMaxRateLimitRetries
	}
	if c.Reviews.MaxConsecutiveFailures <= 0 {
		c.Reviews.MaxConsecutiveFailures = defaultMaxConsecutiveFailures
	}
}

func (c *Config) normalizeOMDb() {
	c.OMDb.BaseURL = strings.TrimSpace(c.OMDb.BaseURL)
	if c.OMDb.APIKey == "" {
		if key, ok := os.LookupEnv("OMDB_API_KEY"); ok {
			c.OMDb.APIKey = strings.TrimSpace(key)
		}
	}
	if c.OMDb.RequestTimeout <= 0 {
		c.OMDb.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeExport() {
	if strings.TrimSpace(c.Export.Path) == "" {
		c.Export.Path = defaultExportPath
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
