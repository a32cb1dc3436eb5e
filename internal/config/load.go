package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every configuration environment variable.
const EnvPrefix = "TASKFLOW"

// Load configuration from environment variables and an optional config.yaml
// in the working directory. Environment variables take precedence over values
// from config files.
func Load() (*Config, error) {
	return LoadFrom(viper.New(), "")
}

// LoadFrom loads configuration through v, which the caller may have bound to
// command-line flags. When configPath is empty, config.yaml is looked up in
// the working directory and its absence is not an error.
func LoadFrom(v *viper.Viper, configPath string) (*Config, error) {
	setDefaults(v)

	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only covers keys viper already knows about; bind the rest.
	for _, key := range []string{
		"database.url",
		"database.driver",
		"auth.jwt_secret",
		"jobs.runner_token",
		"jobs.runner_token_hash",
		"server.port",
		"server.log_level",
	} {
		envVar := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.driver", "pgx")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("scheduler.due_soon_window_hours", 24)
	v.SetDefault("scheduler.interval_minutes", 0)
	v.SetDefault("scheduler.worker_count", 1)
	v.SetDefault("scheduler.queue_size", 16)
}
