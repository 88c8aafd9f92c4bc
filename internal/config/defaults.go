package config

const (
	defaultBaseURL             = "http://127.0.0.1:8000"
	defaultTimeoutSeconds      = 15
	defaultStateDir            = "~/.local/share/curator"
	defaultPollIntervalSeconds = 4
	defaultLogLevel            = "info"
	defaultLogFormat           = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Remote: Remote{
			BaseURL:        defaultBaseURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Sync: Sync{
			PollIntervalSeconds: defaultPollIntervalSeconds,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
