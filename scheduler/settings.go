package scheduler

import "github.com/loopwork/actiond/config"

// Settings is the process-wide scheduler configuration. Initialized with
// defaults (or from config) at startup, persisted, mutable via
// UpdateSettings, and read by every execution decision.
type Settings struct {
	MaxConcurrentJobs    int  `json:"max_concurrent_jobs"`
	RetryFailedJobs      bool `json:"retry_failed_jobs"`
	MaxRetries           int  `json:"max_retries"`
	RetryDelayMinutes    int  `json:"retry_delay_minutes"`
	CleanupCompletedJobs bool `json:"cleanup_completed_jobs"`
	CleanupAfterDays     int  `json:"cleanup_after_days"`
	NotifyOnSuccess      bool `json:"notify_on_success"`
	NotifyOnFailure      bool `json:"notify_on_failure"`
}

// DefaultSettings returns the stock scheduler settings
func DefaultSettings() Settings {
	return Settings{
		MaxConcurrentJobs:    5,
		RetryFailedJobs:      true,
		MaxRetries:           3,
		RetryDelayMinutes:    5,
		CleanupCompletedJobs: true,
		CleanupAfterDays:     30,
		NotifyOnSuccess:      true,
		NotifyOnFailure:      true,
	}
}

// SettingsFromConfig seeds scheduler settings from the daemon configuration
func SettingsFromConfig(cfg config.SchedulerConfig) Settings {
	return Settings{
		MaxConcurrentJobs:    cfg.MaxConcurrentJobs,
		RetryFailedJobs:      cfg.RetryFailedJobs,
		MaxRetries:           cfg.MaxRetries,
		RetryDelayMinutes:    cfg.RetryDelayMinutes,
		CleanupCompletedJobs: cfg.CleanupCompletedJobs,
		CleanupAfterDays:     cfg.CleanupAfterDays,
		NotifyOnSuccess:      cfg.NotifyOnSuccess,
		NotifyOnFailure:      cfg.NotifyOnFailure,
	}
}

// SettingsPatch is a partial settings update; nil fields are left unchanged
type SettingsPatch struct {
	MaxConcurrentJobs    *int  `json:"max_concurrent_jobs,omitempty"`
	RetryFailedJobs      *bool `json:"retry_failed_jobs,omitempty"`
	MaxRetries           *int  `json:"max_retries,omitempty"`
	RetryDelayMinutes    *int  `json:"retry_delay_minutes,omitempty"`
	CleanupCompletedJobs *bool `json:"cleanup_completed_jobs,omitempty"`
	CleanupAfterDays     *int  `json:"cleanup_after_days,omitempty"`
	NotifyOnSuccess      *bool `json:"notify_on_success,omitempty"`
	NotifyOnFailure      *bool `json:"notify_on_failure,omitempty"`
}

// Apply returns a copy of s with the patch's non-nil fields applied
func (s Settings) Apply(p SettingsPatch) Settings {
	if p.MaxConcurrentJobs != nil {
		s.MaxConcurrentJobs = *p.MaxConcurrentJobs
	}
	if p.RetryFailedJobs != nil {
		s.RetryFailedJobs = *p.RetryFailedJobs
	}
	if p.MaxRetries != nil {
		s.MaxRetries = *p.MaxRetries
	}
	if p.RetryDelayMinutes != nil {
		s.RetryDelayMinutes = *p.RetryDelayMinutes
	}
	if p.CleanupCompletedJobs != nil {
		s.CleanupCompletedJobs = *p.CleanupCompletedJobs
	}
	if p.CleanupAfterDays != nil {
		s.CleanupAfterDays = *p.CleanupAfterDays
	}
	if p.NotifyOnSuccess != nil {
		s.NotifyOnSuccess = *p.NotifyOnSuccess
	}
	if p.NotifyOnFailure != nil {
		s.NotifyOnFailure = *p.NotifyOnFailure
	}
	return s
}
