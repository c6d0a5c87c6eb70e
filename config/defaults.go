package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "actiond.db")

	// Server defaults
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Scheduler defaults (mirror the stock scheduler settings)
	v.SetDefault("scheduler.max_concurrent_jobs", 5)
	v.SetDefault("scheduler.retry_failed_jobs", true)
	v.SetDefault("scheduler.max_retries", 3)
	v.SetDefault("scheduler.retry_delay_minutes", 5)
	v.SetDefault("scheduler.cleanup_completed_jobs", true)
	v.SetDefault("scheduler.cleanup_after_days", 30)
	v.SetDefault("scheduler.notify_on_success", true)
	v.SetDefault("scheduler.notify_on_failure", true)
	v.SetDefault("scheduler.sweep_interval_seconds", 60)
	v.SetDefault("scheduler.cleanup_interval_seconds", 3600)
}
