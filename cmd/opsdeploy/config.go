package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all tool configuration.
type Config struct {
	AWS    AWSConfig    `mapstructure:"aws"`
	App    AppConfig    `mapstructure:"app"`
	Layers LayersConfig `mapstructure:"layers"`
	Deploy DeployConfig `mapstructure:"deploy"`
	SSH    SSHConfig    `mapstructure:"ssh"`
	Log    LogConfig    `mapstructure:"log"`
}

// AWSConfig holds the OpsWorks credentials and region.
type AWSConfig struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
}

// AppConfig holds application naming defaults.
type AppConfig struct {
	// BaseName is the default application name used when --app is not given.
	BaseName string `mapstructure:"base_name"`
}

// LayersConfig holds the default layer role selection.
type LayersConfig struct {
	// AppRoles is the default list of layer short role names that deploys
	// and recipe runs target.
	AppRoles []string `mapstructure:"app_roles"`
}

// DeployConfig holds completion-wait tuning.
type DeployConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// SSHConfig holds the optional ssh invocation segments.
type SSHConfig struct {
	KeyPath string `mapstructure:"key_path"`
	User    string `mapstructure:"user"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("aws.access_key_id", "")
	v.SetDefault("aws.secret_access_key", "")
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("app.base_name", "")
	v.SetDefault("layers.app_roles", []string{"app"})
	v.SetDefault("deploy.poll_interval", "10s")
	v.SetDefault("deploy.timeout", "900s")
	v.SetDefault("ssh.key_path", "")
	v.SetDefault("ssh.user", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if the file exists and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("OPSDEPLOY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format. Logs go
// to stderr; stdout is reserved for command output.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
