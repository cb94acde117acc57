package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Audit
		AuditCleanup
		Global
		Tasks
	}

	HTTP struct {
		Port int32
		Host string

		// Rate limiting applied per client IP across the API.
		RateLimitPerSecond float64
		RateLimitBurst     int
	}
	Database struct {
		Path string
	}
	Audit struct {
		RetentionDays int // Days to keep audit entries (default: 30)
	}
	AuditCleanup struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("rate_limit_per_second", 25.0)
	v.SetDefault("rate_limit_burst", 50)
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_enabled", true)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *") // Daily at 03:00

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port:               v.GetInt32("PORT"),
			Host:               v.GetString("HOST"),
			RateLimitPerSecond: v.GetFloat64("RATE_LIMIT_PER_SECOND"),
			RateLimitBurst:     v.GetInt("RATE_LIMIT_BURST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		AuditCleanup: AuditCleanup{
			Enabled:  v.GetBool("AUDIT_CLEANUP_ENABLED"),
			Schedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
	}
}
