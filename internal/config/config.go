package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig selects the SQL driver and connection settings. Driver "pgx"
// expects a PostgreSQL URL; driver "sqlite" expects a file path or
// "file:" DSN.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"         validate:"required,oneof=pgx sqlite"`
	URL          string `mapstructure:"url"            validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains the settings for user bearer tokens.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// JobsConfig holds the operator credential for job endpoints. Either a
// plaintext token or a bcrypt hash of it may be configured; with neither set
// the job endpoints report that they are not configured.
type JobsConfig struct {
	RunnerToken     string `mapstructure:"runner_token"`
	RunnerTokenHash string `mapstructure:"runner_token_hash"`
}

// SchedulerConfig tunes the due notification scheduler and the in-process
// job runner that can trigger it.
type SchedulerConfig struct {
	DueSoonWindowHours int `mapstructure:"due_soon_window_hours" validate:"gt=0"`
	// IntervalMinutes schedules the scan in-process; 0 leaves triggering to
	// the job endpoint or CLI.
	IntervalMinutes int `mapstructure:"interval_minutes" validate:"gte=0"`
	WorkerCount     int `mapstructure:"worker_count"     validate:"gt=0"`
	QueueSize       int `mapstructure:"queue_size"       validate:"gt=0"`
}
