package config

const (
	defaultDataDir               = "~/.local/share/nudge"
	defaultLogDir                = "~/.local/share/nudge/logs"
	defaultMenuRefreshInterval   = 60
	defaultCheckInterval         = 60
	defaultUpcomingWindowMinutes = 60
	defaultMenuLimit             = 5
	defaultMenuLabelWidth        = 30
	defaultDialogTimeout         = 30
	defaultPostponeMinutes       = 30
	defaultHighMaxCount          = 5
	defaultHighIntervalMinutes   = 15
	defaultMediumMaxCount        = 3
	defaultMediumIntervalMinutes = 30
	defaultNtfyRequestTimeout    = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Daemon: Daemon{
			MenuRefreshInterval:   defaultMenuRefreshInterval,
			CheckInterval:         defaultCheckInterval,
			UpcomingWindowMinutes: defaultUpcomingWindowMinutes,
			MenuLimit:             defaultMenuLimit,
			MenuLabelWidth:        defaultMenuLabelWidth,
		},
		Dialog: Dialog{
			Timeout:         defaultDialogTimeout,
			PostponeMinutes: defaultPostponeMinutes,
		},
		Throttle: Throttle{
			HighMaxCount:          defaultHighMaxCount,
			HighIntervalMinutes:   defaultHighIntervalMinutes,
			MediumMaxCount:        defaultMediumMaxCount,
			MediumIntervalMinutes: defaultMediumIntervalMinutes,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
