package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		logging   LoggingConfig
		wantErr   bool
		wantLevel zapcore.Level
	}{
		{"development defaults to debug", "development", LoggingConfig{}, false, zapcore.DebugLevel},
		{"production defaults to info", "production", LoggingConfig{}, false, zapcore.InfoLevel},
		{"explicit level wins", "production", LoggingConfig{Level: "warn", Format: "console"}, false, zapcore.WarnLevel},
		{"bad level", "development", LoggingConfig{Level: "loud"}, true, 0},
		{"bad format", "development", LoggingConfig{Format: "xml"}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(ServerConfig{Environment: tt.env}, tt.logging)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}
