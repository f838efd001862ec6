package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	envPrefix        = "NOTES"
	defaultConfigDir = ".noteminder"
	devJWTSecret     = "dev-secret-change-me"
)

// Config holds all application configuration.
type Config struct {
	Env      string
	Dir      string // directory holding the database, session token and config.yaml
	Database DatabaseConfig
	GRPC     GRPCConfig
	Auth     AuthConfig
	Reminder ReminderConfig
	Metrics  MetricsConfig
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string // SQLite database file path
}

// GRPCConfig contains settings of the presentation API.
type GRPCConfig struct {
	Address string // loopback listen address; empty disables the API
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret     string        // session token signing secret
	TokenTTL      time.Duration // lifetime of a session token
	TokenPath     string        // where the CLI keeps the current session token
	AdminUsername string        // first-run admin account
	AdminPassword string
}

// ReminderConfig contains reminder scheduler settings.
type ReminderConfig struct {
	Interval      time.Duration // pause between scans
	NotifyTimeout time.Duration // bound on a single desktop notification
	Desktop       bool          // false logs reminders instead of raising OS notifications
}

// MetricsConfig contains the prometheus endpoint settings.
type MetricsConfig struct {
	Address string // empty disables /metrics
}

// Load loads configuration from environment variables (NOTES_*), an optional
// .env file and an optional config.yaml in the config directory.
// A signing secret is required.
func Load() (*Config, error) {
	cfg, err := load(defaultDir())
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("%s_JWT_SECRET environment variable is not set; required for production", envPrefix)
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but falls back to a development signing secret.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	cfg, err := load(defaultDir())
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

// LoadFile loads configuration with path as the config file instead of
// <dir>/config.yaml. Missing secrets fall back like LoadWithDefaults.
func LoadFile(path string) (*Config, error) {
	cfg, err := loadWith(defaultDir(), path)
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, defaultConfigDir)
}

func load(dir string) (*Config, error) {
	return loadWith(dir, "")
}

func loadWith(dir, file string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("env", EnvLocal)
	v.SetDefault("config_dir", dir)
	dir = v.GetString("config_dir")

	v.SetDefault("db_path", filepath.Join(dir, "notes.db"))
	v.SetDefault("token_path", filepath.Join(dir, "session"))
	v.SetDefault("grpc_address", "127.0.0.1:50551")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", 24*time.Hour)
	v.SetDefault("admin_username", "admin")
	v.SetDefault("admin_password", "admin")
	v.SetDefault("reminder_interval", 60*time.Second)
	v.SetDefault("notify_timeout", 10*time.Second)
	v.SetDefault("desktop_notifications", true)
	v.SetDefault("metrics_address", "")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Env: v.GetString("env"),
		Dir: dir,
		Database: DatabaseConfig{
			Path: v.GetString("db_path"),
		},
		GRPC: GRPCConfig{
			Address: v.GetString("grpc_address"),
		},
		Auth: AuthConfig{
			JWTSecret:     v.GetString("jwt_secret"),
			TokenTTL:      v.GetDuration("token_ttl"),
			TokenPath:     v.GetString("token_path"),
			AdminUsername: v.GetString("admin_username"),
			AdminPassword: v.GetString("admin_password"),
		},
		Reminder: ReminderConfig{
			Interval:      v.GetDuration("reminder_interval"),
			NotifyTimeout: v.GetDuration("notify_timeout"),
			Desktop:       v.GetBool("desktop_notifications"),
		},
		Metrics: MetricsConfig{
			Address: v.GetString("metrics_address"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	if c.Database.Path == "" {
		return errors.New("db_path must not be empty")
	}
	if c.Reminder.Interval <= 0 {
		return fmt.Errorf("reminder_interval must be positive, got %s", c.Reminder.Interval)
	}
	if c.Reminder.NotifyTimeout <= 0 {
		return fmt.Errorf("notify_timeout must be positive, got %s", c.Reminder.NotifyTimeout)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}

// EnsureDir creates the config directory with user-only permissions.
func (c *Config) EnsureDir() error {
	if c.Dir == "" {
		return nil
	}
	return os.MkdirAll(c.Dir, 0o700)
}

// IsProd reports whether the process runs in production mode.
func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, DB: %s, gRPC: %s, Reminder: every %s, Metrics: %q, Auth: *** (masked) ***}",
		c.Env, c.Database.Path, c.GRPC.Address, c.Reminder.Interval, c.Metrics.Address)
}
