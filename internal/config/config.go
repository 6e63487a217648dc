// Package config loads application settings from .env files, the environment
// and an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nnimab/Smart-vocabulary-book/internal/database"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Reminder ReminderConfig `mapstructure:"reminder"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
	DataDir string `mapstructure:"data_dir"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelegramConfig holds the bot token; an empty token disables the bot.
type TelegramConfig struct {
	Token string `mapstructure:"token"`
	Debug bool   `mapstructure:"debug"`
}

// ReminderConfig holds the window in which reminders may be sent.
type ReminderConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	StartHour int  `mapstructure:"start_hour"`
	EndHour   int  `mapstructure:"end_hour"`
}

// Addr returns the listen address of the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DB converts the settings into a database.Config.
func (c DatabaseConfig) DB() database.Config {
	return database.Config{Driver: c.Driver, DSN: c.DSN, DataDir: c.DataDir}
}

// Load reads configuration. Values in a .env file are exported to the
// environment first; environment variables override the optional config file.
// Nested keys map to variables by upper-casing and replacing '.' with '_'
// (database.driver -> DATABASE_DRIVER).
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges that viper cannot express.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == database.DriverPostgres && c.Database.DSN == "" {
		return errors.New("database.dsn is required for postgres")
	}
	for _, h := range []int{c.Reminder.StartHour, c.Reminder.EndHour} {
		if h < 0 || h > 23 {
			return fmt.Errorf("reminder hours must be between 0 and 23, got %d", h)
		}
	}
	if c.Reminder.StartHour > c.Reminder.EndHour {
		return fmt.Errorf("reminder start hour %d is after end hour %d", c.Reminder.StartHour, c.Reminder.EndHour)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)

	v.SetDefault("database.driver", database.DriverSQLite)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.data_dir", "data")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.debug", false)

	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.start_hour", 8)
	v.SetDefault("reminder.end_hour", 22)
}
