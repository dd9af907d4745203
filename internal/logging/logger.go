// Package logging provides the shared zap logger.
//
// Logging is silent unless a level is configured, so library consumers and
// CLI output stay clean by default.
package logging

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar controls logging verbosity. When unset or empty, logging
// is silent. Valid values: "debug", "info", "warn", "error".
const LogLevelEnvVar = "CHLORINATOR_LOG_LEVEL"

// Initialize creates the global logger at the given level. An empty level
// falls back to the LogLevelEnvVar environment variable; if that is unset
// too, a no-op logger is installed.
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// GetLogger returns the global logger, installing a no-op logger if
// Initialize was never called.
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) { GetLogger().Debug(msg, fields...) }

// Info logs an info message.
func Info(msg string, fields ...zap.Field) { GetLogger().Info(msg, fields...) }

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) { GetLogger().Warn(msg, fields...) }

// Error logs an error message.
func Error(msg string, fields ...zap.Field) { GetLogger().Error(msg, fields...) }

// Hex renders payload bytes for protocol debugging fields.
func Hex(key string, data []byte) zap.Field {
	return zap.String(key, hex.EncodeToString(data))
}
