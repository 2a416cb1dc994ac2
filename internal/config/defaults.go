package config

const (
	defaultDataDir = "~/.local/share/reelsync"
	defaultLogDir  = "~/.local/share/reelsync/logs"

	defaultBasicsURL             = "https://datasets.imdbws.com/title.basics.tsv.gz"
	defaultRatingsURL            = "https://datasets.imdbws.com/title.ratings.tsv.gz"
	defaultMinVotes              = 15000
	defaultVoteIncreaseThreshold = 1.05

	defaultGraphQLURL     = "https://caching.graphql.imdb.com/"
	defaultUserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	defaultRequestTimeout = 10
	defaultRequestDelay   = 0.3

	defaultRateLimitBaseWait   = 60
	defaultRateLimitMaxWait    = 300
	defaultMaxRateLimitRetries = 3

	defaultMaxConsecutiveFailures = 3

	defaultMinHelpfulVotes = 1
	defaultMinReviewWords  = 100

	defaultOMDbBaseURL      = "https://www.omdbapi.com/"
	defaultOMDbRequestDelay = 0.1

	defaultBatchSize = 1000

	defaultExportPath = "titles.csv"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Catalog: Catalog{
			BasicsURL:             defaultBasicsURL,
			RatingsURL:            defaultRatingsURL,
			MinVotes:              defaultMinVotes,
			TitleTypes:            []string{"movie", "tvSeries", "tvMiniSeries"},
			VoteIncreaseThreshold: defaultVoteIncreaseThreshold,
		},
		Reviews: Reviews{
			GraphQLURL:             defaultGraphQLURL,
			UserAgent:              defaultUserAgent,
			RequestTimeout:         defaultRequestTimeout,
			RequestDelay:           defaultRequestDelay,
			RateLimitBaseWait:      defaultRateLimitBaseWait,
			RateLimitMaxWait:       defaultRateLimitMaxWait,
			MaxRateLimitRetries:    defaultMaxRateLimitRetries,
			MaxConsecutiveFailures: defaultMaxConsecutiveFailures,
			MinHelpfulVotes:        defaultMinHelpfulVotes,
			MinReviewWords:         defaultMinReviewWords,
			RequireFirstWorld:      true,
		},
		OMDb: OMDb{
			BaseURL:        defaultOMDbBaseURL,
			RequestTimeout: defaultRequestTimeout,
			RequestDelay:   defaultOMDbRequestDelay,
		},
		Store: Store{
			BatchSize: defaultBatchSize,
		},
		Export: Export{
			Path: defaultExportPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
