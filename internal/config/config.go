package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"       validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database"     validate:"required"`
	Auth         AuthConfig         `mapstructure:"auth"         validate:"required"`
	Notification NotificationConfig `mapstructure:"notification" validate:"required"`
	Mail         MailConfig         `mapstructure:"mail"`
	Broker       BrokerConfig       `mapstructure:"broker"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// RequestTimeoutSeconds bounds every HTTP request handled by the router.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"gte=1"`
	// SeedDemoData creates the demo and admin accounts on startup when they are missing.
	SeedDemoData bool `mapstructure:"seed_demo_data"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the task and user store backend.
	// "memory" is intended for local development and tests only.
	Driver          string `mapstructure:"driver"             validate:"required,oneof=postgres memory"`
	URL             string `mapstructure:"url"                validate:"required_if=Driver postgres"`
	MaxConns        int32  `mapstructure:"max_conns"          validate:"gte=1"`
	MinConns        int32  `mapstructure:"min_conns"          validate:"gte=0"`
	QueryTimeoutSec int    `mapstructure:"query_timeout_sec"  validate:"gte=1"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
}

// NotificationConfig controls the deadline scheduler and the in-memory notification log.
type NotificationConfig struct {
	ScanIntervalMinutes    int  `mapstructure:"scan_interval_minutes"    validate:"gt=0"`
	CleanupIntervalMinutes int  `mapstructure:"cleanup_interval_minutes" validate:"gt=0"`
	RetentionHours         int  `mapstructure:"retention_hours"          validate:"gt=0"`
	ApproachingWindowHours int  `mapstructure:"approaching_window_hours" validate:"gt=0"`
	ScanBatchSize          int  `mapstructure:"scan_batch_size"          validate:"gt=0"`
	ScanTimeoutSeconds     int  `mapstructure:"scan_timeout_seconds"     validate:"gt=0"`
	RenotifyEveryScan      bool `mapstructure:"renotify_every_scan"`
	DispatchWorkers        int  `mapstructure:"dispatch_workers"         validate:"gt=0"`
	DispatchQueueSize      int  `mapstructure:"dispatch_queue_size"      validate:"gt=0"`
	DispatchTimeoutSeconds int  `mapstructure:"dispatch_timeout_seconds" validate:"gt=0"`
}

// MailConfig holds SMTP settings. Mail delivery is disabled when SMTPHost is empty;
// notifications are then only logged.
type MailConfig struct {
	SMTPHost          string `mapstructure:"smtp_host"`
	SMTPPort          int    `mapstructure:"smtp_port"          validate:"omitempty,gt=0,lt=65536"`
	SMTPUsername      string `mapstructure:"smtp_username"`
	SMTPPassword      string `mapstructure:"smtp_password"`
	FromEmail         string `mapstructure:"from_email"         validate:"omitempty,email"`
	FromName          string `mapstructure:"from_name"`
	FallbackRecipient string `mapstructure:"fallback_recipient" validate:"omitempty,email"`
}

// BrokerConfig enables publishing notifications to RabbitMQ. Empty URL disables it.
type BrokerConfig struct {
	URL      string `mapstructure:"url"      validate:"omitempty,url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"    validate:"required_with=URL"`
}
