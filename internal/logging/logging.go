// Package logging configures the structured logger for the service.
package logging

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"tajapart/internal/config"
)

const serviceName = "tajapart-api"

// Setup builds the base logger entry: JSON output in production, plain text
// in development, with the service name attached to every entry.
func Setup(cfg *config.Config) (*logrus.Entry, error) {
	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	logger := logrus.New()
	logger.SetLevel(level)

	if cfg.IsDevelopment() {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	}

	return logger.WithFields(logrus.Fields{
		"service": serviceName,
		"env":     cfg.AppEnv,
	}), nil
}
