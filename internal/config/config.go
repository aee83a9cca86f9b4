package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultTokenTTLSeconds = 3600

// Config holds the application's configuration.
type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		// The signing secret only ever comes from the JWT_SECRET
		// environment variable, never from the config file.
		JWTSecret       string `yaml:"-"`
		TokenTTLSeconds int64  `yaml:"token_ttl_seconds"`
	} `yaml:"auth"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// LoadConfig reads configuration from the specified YAML file and applies
// environment overrides. The process must not start without a signing
// secret, so an empty JWT_SECRET is an error.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = ":" + port
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	config.Auth.JWTSecret = os.Getenv("JWT_SECRET")

	if config.Server.Port == "" {
		config.Server.Port = ":3001"
	}
	if config.Auth.TokenTTLSeconds <= 0 {
		config.Auth.TokenTTLSeconds = defaultTokenTTLSeconds
	}
	if config.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	return config, nil
}

// TokenTTL returns the session token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLSeconds) * time.Second
}

// IsProduction reports whether the service runs in production mode. Cookie
// Secure attributes depend on it.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
