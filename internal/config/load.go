package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key read from the environment.
const EnvPrefix = "TASKER"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so every key
	// without a default has to be bound explicitly.
	for _, key := range []string{
		"database.url",
		"auth.jwt_secret",
		"mail.smtp_host",
		"mail.smtp_username",
		"mail.smtp_password",
		"mail.from_email",
		"mail.fallback_recipient",
		"broker.url",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.request_timeout_seconds", 30)
	v.SetDefault("server.seed_demo_data", false)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.query_timeout_sec", 5)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("notification.scan_interval_minutes", 60)
	v.SetDefault("notification.cleanup_interval_minutes", 24*60)
	v.SetDefault("notification.retention_hours", 7*24)
	v.SetDefault("notification.approaching_window_hours", 24)
	v.SetDefault("notification.scan_batch_size", 1000)
	v.SetDefault("notification.scan_timeout_seconds", 60)
	v.SetDefault("notification.renotify_every_scan", false)
	v.SetDefault("notification.dispatch_workers", 2)
	v.SetDefault("notification.dispatch_queue_size", 256)
	v.SetDefault("notification.dispatch_timeout_seconds", 10)

	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.from_email", "noreply@taskmanager.com")
	v.SetDefault("mail.from_name", "Task Manager")

	v.SetDefault("broker.exchange", "")
	v.SetDefault("broker.queue", "task_notifications")
}
