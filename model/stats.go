package model

import "time"

// SecurityStats is the security dashboard summary for the current user.
type SecurityStats struct {
	SessionStats struct {
		Active          int        `json:"active"`
		LastActivity    time.Time  `json:"last_activity"`
		OldestCreatedAt *time.Time `json:"oldest_created_at,omitempty"`
	} `json:"session_stats"`
	TwoFactorStats struct {
		Enabled              bool       `json:"enabled"`
		EnabledAt            *time.Time `json:"enabled_at,omitempty"`
		BackupCodesRemaining int        `json:"backup_codes_remaining"`
	} `json:"two_factor_stats"`
	SystemStats struct {
		CPUUsagePercent float64 `json:"cpu_usage_percent"`
		MemoryUsageMB   float64 `json:"memory_usage_mb"`
		UptimeSeconds   float64 `json:"uptime_seconds"`
	} `json:"system_stats"`
}
