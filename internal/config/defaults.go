package config

const (
	defaultDataDir             = "~/.local/share/cadence"
	defaultLogDir              = "~/.local/share/cadence/logs"
	defaultLogRetentionDays    = 60
	defaultAPIBind             = "127.0.0.1:7519"
	defaultPlatformBaseURL     = "http://127.0.0.1:8080/api/v1"
	defaultPlatformTimeout     = 30
	defaultPollIntervalSeconds = 5
	defaultPollMaxAttempts     = 60
	defaultPollMaxConcurrent   = 8
	defaultPassingThreshold    = 70
	defaultConfidenceThreshold = 0.8
	defaultWeightTolerance     = 0.5
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Platform: Platform{
			BaseURL:        defaultPlatformBaseURL,
			TimeoutSeconds: defaultPlatformTimeout,
		},
		Poller: Poller{
			IntervalSeconds:    defaultPollIntervalSeconds,
			MaxAttempts:        defaultPollMaxAttempts,
			MaxConcurrent:      defaultPollMaxConcurrent,
			IncludeExplanation: false,
			FetchTranscript:    true,
			FetchMedia:         true,
		},
		Scoring: Scoring{
			PassingThreshold:    defaultPassingThreshold,
			ConfidenceThreshold: defaultConfidenceThreshold,
			WeightTolerance:     defaultWeightTolerance,
		},
		Notifications: Notifications{
			RequestTimeout:  defaultNotifyTimeout,
			Completed:       true,
			Failed:          true,
			TimedOut:        true,
			ReviewRequired:  true,
			ReviewSubmitted: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
