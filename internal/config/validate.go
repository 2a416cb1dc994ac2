package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateReviews(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.BasicsURL == "" {
		return errors.New("catalog.basics_url must be set")
	}
	if c.Catalog.RatingsURL == "" {
		return errors.New("catalog.ratings_url must be set")
	}
	if c.Catalog.MinVotes < 0 {
		return errors.New("catalog.min_votes must not be negative")
	}
	if c.Catalog.VoteIncreaseThreshold < 1 {
		return errors.New("catalog.vote_increase_threshold must be at least 1")
	}
	return nil
}

func (c *Config) validateReviews() error {
	if c.Reviews.GraphQLURL == "" {
		return errors.New("reviews.graphql_url must be set")
	}
	if c.Reviews.RequestDelay < 0 {
		return errors.New("reviews.request_delay must not be negative")
	}
	if c.Reviews.RateLimitBaseWait <= 0 {
		return errors.New("reviews.rate_limit_base_wait must be positive")
	}
	if c.Reviews.RateLimitMaxWait < c.Reviews.RateLimitBaseWait {
		return errors.New("reviews.rate_limit_max_wait must be at least reviews.rate_limit_base_wait")
	}
	if c.Reviews.MinHelpfulVotes < 0 {
		return errors.New("reviews.min_helpful_votes must not be negative")
	}
	if c.Reviews.MinReviewWords < 0 {
		return errors.New("reviews.min_review_words must not be negative")
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.BatchSize < 1 {
		return errors.New("store.batch_size must be at least 1")
	}
	if c.Store.BatchSize > 10000 {
		return errors.New("store.batch_size must not exceed 10000")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
