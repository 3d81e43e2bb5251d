// Package config loads server configuration from defaults, an optional
// config file, a .env file and WORKDAY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Attendance AttendanceConfig `mapstructure:"attendance"`
	Roster     RosterConfig     `mapstructure:"roster"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig enables the optional score cache tier.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig holds the single reference zone every day boundary is computed in.
type EngineConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// Location loads the configured zone.
func (c EngineConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

type AttendanceConfig struct {
	// OfficeIPWhitelist restricts check-ins to these addresses; empty allows all.
	OfficeIPWhitelist []string `mapstructure:"office_ip_whitelist"`
}

// RosterConfig points at an optional birthday spreadsheet and lists any
// people kept inline in the config file.
type RosterConfig struct {
	Path   string         `mapstructure:"path"`
	Sheet  string         `mapstructure:"sheet"`
	People []PersonConfig `mapstructure:"people"`
}

type PersonConfig struct {
	Name        string `mapstructure:"name"`
	DateOfBirth string `mapstructure:"date_of_birth"`
}

type SchedulerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// Load reads configuration. Precedence: env > config file > .env > defaults.
// path may be empty, in which case config.yaml is looked up in ./config and ".".
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("db.path", "./data/workday.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "0s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("engine.timezone", "UTC")

	v.SetDefault("attendance.office_ip_whitelist", []string{})

	v.SetDefault("roster.path", "")
	v.SetDefault("roster.sheet", "")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", "1h")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("WORKDAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// A comma-separated env var arrives as one element.
	cfg.Attendance.OfficeIPWhitelist = splitList(cfg.Attendance.OfficeIPWhitelist)
	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("config: db.path must not be empty")
	}
	if _, err := c.Engine.Location(); err != nil {
		return fmt.Errorf("config: engine.timezone %q: %w", c.Engine.Timezone, err)
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return fmt.Errorf("config: scheduler.interval must be positive")
	}
	return nil
}

func splitList(in []string) []string {
	out := []string{}
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
