package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger   *zap.Logger
	loggerMu sync.RWMutex
)

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "COCORO_LOG_LEVEL"

// Initialize creates a new logger with the specified level.
// If level is empty, it checks COCORO_LOG_LEVEL.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		SetLogger(zap.NewNop())
		return nil
	}

	zapLevel, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		// Explicitly set but unrecognised: fall back to info
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

	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	built, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	SetLogger(built)
	return nil
}

// InitializeFromEnv initializes the logger from COCORO_LOG_LEVEL
func InitializeFromEnv() error {
	return Initialize("")
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()

	if l == nil {
		return zap.NewNop()
	}
	return l
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogRequest logs an outgoing API request
func LogRequest(method, path, requestID string) {
	Debug("API request",
		zap.String("method", method),
		zap.String("path", redactQuery(path)),
		zap.String("request_id", requestID),
	)
}

// LogResponse logs an API response
func LogResponse(method, path string, statusCode int, duration time.Duration, requestID string) {
	Debug("API response",
		zap.String("method", method),
		zap.String("path", redactQuery(path)),
		zap.Int("status_code", statusCode),
		zap.Duration("duration", duration),
		zap.String("request_id", requestID),
	)
}

// LogQueuedUpdate logs a property update entering a device's pending map
func LogQueuedUpdate(deviceID int64, statusCode string, kind string, value string) {
	Debug("Queued property update",
		zap.Int64("device_id", deviceID),
		zap.String("status_code", statusCode),
		zap.String("value_type", kind),
		zap.String("value", value),
	)
}

// LogSubmission logs a control submission
func LogSubmission(deviceID int64, count int, requestID string) {
	Info("Submitting property updates",
		zap.Int64("device_id", deviceID),
		zap.Int("count", count),
		zap.String("request_id", requestID),
	)
}

// LogRawCode logs a binary property code split into bytes
func LogRawCode(label string, code string) {
	Debug(label,
		zap.Int("length", len(code)/2),
		zap.String("bytes", spacedHex(code)),
	)
}

// redactQuery hides the appSecret query parameter
func redactQuery(path string) string {
	const key = "appSecret="
	i := strings.Index(path, key)
	if i < 0 {
		return path
	}
	end := strings.IndexByte(path[i:], '&')
	if end < 0 {
		return path[:i+len(key)] + "REDACTED"
	}
	return path[:i+len(key)] + "REDACTED" + path[i+end:]
}

func spacedHex(code string) string {
	if len(code) > 512 {
		code = code[:512]
	}
	var b strings.Builder
	for i := 0; i+1 < len(code); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(code[i : i+2])
	}
	return b.String()
}

// Sync flushes any buffered log entries
func Sync() {
	_ = GetLogger().Sync()
}
