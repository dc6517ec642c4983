package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DefaultServerPort = 5000
	DefaultLogLevel   = "info"
)

// Config holds the resolved runtime configuration.
type Config struct {
	MongoURI        string
	MongoDB         string
	ServerPort      int
	StripeSecretKey string
	AppEnv          string
	LogLevel        string
}

// Load resolves configuration from environment variables.
// MONGO_URI, MONGO_DB and STRIPE_SECRET_KEY are required; the rest default.
func Load() (*Config, error) {
	cfg := &Config{
		MongoURI:        strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDB:         strings.TrimSpace(os.Getenv("MONGO_DB")),
		StripeSecretKey: strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),
		AppEnv:          strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV"))),
		LogLevel:        strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		ServerPort:      DefaultServerPort,
	}

	var missing []string
	if cfg.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if cfg.MongoDB == "" {
		missing = append(missing, "MONGO_DB")
	}
	if cfg.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variable(s): %s", strings.Join(missing, ", "))
	}

	if cfg.AppEnv == "" {
		cfg.AppEnv = EnvProduction
	}
	if cfg.AppEnv != EnvDevelopment && cfg.AppEnv != EnvProduction {
		return nil, fmt.Errorf("invalid APP_ENV %q: must be %q or %q", cfg.AppEnv, EnvDevelopment, EnvProduction)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if portRaw := strings.TrimSpace(os.Getenv("SERVER_PORT")); portRaw != "" {
		port, err := strconv.Atoi(portRaw)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("invalid SERVER_PORT %q", portRaw)
		}
		cfg.ServerPort = port
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}
