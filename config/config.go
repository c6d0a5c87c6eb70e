// Package config loads actiond configuration with Viper.
//
// Configuration is read from actiond.toml (working directory or
// ~/.config/actiond/), overridable via ACTIOND_* environment variables.
package config

// Config represents the actiond daemon configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`

	// Actions maps action types to shell commands. Each entry is registered
	// as a command handler at startup, e.g.
	//
	//   [actions]
	//   backup = "/usr/local/bin/backup.sh"
	Actions map[string]string `mapstructure:"actions"`
}

// DatabaseConfig configures the SQLite database backing the document store
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig configures the HTTP API server
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SchedulerConfig holds the initial scheduler settings.
// These seed SchedulerSettings at first startup; once persisted, the stored
// settings win and further changes go through the settings API.
type SchedulerConfig struct {
	MaxConcurrentJobs    int  `mapstructure:"max_concurrent_jobs"`
	RetryFailedJobs      bool `mapstructure:"retry_failed_jobs"`
	MaxRetries           int  `mapstructure:"max_retries"`
	RetryDelayMinutes    int  `mapstructure:"retry_delay_minutes"`
	CleanupCompletedJobs bool `mapstructure:"cleanup_completed_jobs"`
	CleanupAfterDays     int  `mapstructure:"cleanup_after_days"`
	NotifyOnSuccess      bool `mapstructure:"notify_on_success"`
	NotifyOnFailure      bool `mapstructure:"notify_on_failure"`

	// SweepIntervalSeconds controls how often the scheduler scans for due
	// jobs whose timers were lost (default: 60)
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds"`

	// CleanupIntervalSeconds controls the automatic cleanup cadence
	// (default: 3600)
	CleanupIntervalSeconds int `mapstructure:"cleanup_interval_seconds"`
}

// DefaultServerPort is used when no port is configured
const DefaultServerPort = 8460
