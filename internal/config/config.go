package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// HTTPConfig holds listener settings.
type HTTPConfig struct {
	Port string `yaml:"port" env:"PARKHUB_HTTP_PORT"`
}

// DatabaseConfig holds Postgres settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"PARKHUB_POSTGRES_DSN"`
}

// RedisConfig holds the optional active-session cache settings. An empty
// addr disables the cache entirely.
type RedisConfig struct {
	Addr                    string `yaml:"addr" env:"PARKHUB_REDIS_ADDR"`
	Password                string `yaml:"password" env:"PARKHUB_REDIS_PASSWORD"`
	ActiveSessionTTLMinutes int    `yaml:"active_session_ttl_minutes" env:"PARKHUB_ACTIVE_SESSION_TTL_MINUTES"`
}

// QRConfig holds QR artifact output settings.
type QRConfig struct {
	Dir       string `yaml:"dir" env:"PARKHUB_QR_DIR"`
	URLPrefix string `yaml:"url_prefix" env:"PARKHUB_QR_URL_PREFIX"`
}

// Config defines parkhub service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	QR       QRConfig       `yaml:"qr"`
}

// Load configuration from file/env.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP: HTTPConfig{Port: "8080"},
		Redis: RedisConfig{
			ActiveSessionTTLMinutes: 24 * 60,
		},
		QR: QRConfig{
			Dir:       "static/qrs",
			URLPrefix: "/static/qrs",
		},
	}

	if err := loadInto(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// ActiveSessionTTL converts the configured minutes into a duration.
func (c *Config) ActiveSessionTTL() time.Duration {
	minutes := c.Redis.ActiveSessionTTLMinutes
	if minutes <= 0 {
		minutes = 24 * 60
	}
	return time.Duration(minutes) * time.Minute
}
