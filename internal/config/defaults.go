package config

const (
	defaultLogDir                = "~/.local/share/reelmatch/logs"
	defaultStorePath             = "~/.local/share/reelmatch/matches.db"
	defaultTMDBLanguage          = "en-US"
	defaultTMDBBaseURL           = "https://api.themoviedb.org/3"
	defaultTMDBTimeoutSeconds    = 10
	defaultTMDBMaxRetries        = 3
	defaultTMDBMinIntervalMS     = 250
	defaultOMDbBaseURL           = "https://www.omdbapi.com/"
	defaultOMDbTimeoutSeconds    = 10
	defaultOMDbMaxRetries        = 3
	defaultInitialBackoffSeconds = 1.0
	defaultBackoffMultiplier     = 1.5
	defaultBatchWorkers          = 10
	defaultBatchProgressEvery    = 10
	defaultGlobalMean            = 6.9
	defaultNotifyTimeoutSeconds  = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			StorePath: defaultStorePath,
		},
		TMDB: TMDB{
			BaseURL:               defaultTMDBBaseURL,
			Language:              defaultTMDBLanguage,
			IncludeAdult:          true,
			RequestTimeoutSeconds: defaultTMDBTimeoutSeconds,
			MaxRetries:            defaultTMDBMaxRetries,
			InitialBackoffSeconds: defaultInitialBackoffSeconds,
			BackoffMultiplier:     defaultBackoffMultiplier,
			MinRequestIntervalMS:  defaultTMDBMinIntervalMS,
		},
		OMDb: OMDb{
			BaseURL:               defaultOMDbBaseURL,
			RequestTimeoutSeconds: defaultOMDbTimeoutSeconds,
			MaxRetries:            defaultOMDbMaxRetries,
			InitialBackoffSeconds: defaultInitialBackoffSeconds,
			BackoffMultiplier:     defaultBackoffMultiplier,
		},
		Batch: Batch{
			Workers:       defaultBatchWorkers,
			ProgressEvery: defaultBatchProgressEvery,
			FetchRatings:  true,
		},
		Ratings: Ratings{
			DefaultGlobalMean: defaultGlobalMean,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotifyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
