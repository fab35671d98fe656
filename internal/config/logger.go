package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the application logger. Production uses zap's production preset,
// anything else the development preset; Level and Format override either.
func NewLogger(server ServerConfig, logging LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if server.Environment == "production" {
		zc = zap.NewProductionConfig()
	}

	if logging.Level != "" {
		level, err := zapcore.ParseLevel(logging.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", logging.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	switch logging.Format {
	case "":
	case "json", "console":
		zc.Encoding = logging.Format
	default:
		return nil, fmt.Errorf("invalid log format %q: must be json or console", logging.Format)
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
