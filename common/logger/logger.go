package logger

import (
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/auditry/auditry-go/common/env"
)

const (
	StringJSONEncoderName = "string_json"
	MessageKey            = "message"
)

// Logger is a thin wrapper around zap.Logger so the rest of the codebase
// does not depend on zap types directly.
type Logger struct {
	*zap.Logger
}

func NewLogger(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{z}
}

// With returns a child logger with the given fields appended.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{l.Logger.With(fields...)}
}

// Named returns a named child logger.
func (l *Logger) Named(name string) *Logger {
	return &Logger{l.Logger.Named(name)}
}

// WithOptions clones the logger with the given zap options applied.
func (l *Logger) WithOptions(opts ...zap.Option) *Logger {
	return &Logger{l.Logger.WithOptions(opts...)}
}

// Printf-style helpers. These also satisfy resty's Logger interface so the
// wrapper can be handed to http clients directly.

func (l *Logger) Debugf(format string, v ...any) {
	l.Logger.Sugar().Debugf(format, v...)
}

func (l *Logger) Infof(format string, v ...any) {
	l.Logger.Sugar().Infof(format, v...)
}

func (l *Logger) Warnf(format string, v ...any) {
	l.Logger.Sugar().Warnf(format, v...)
}

func (l *Logger) Errorf(format string, v ...any) {
	l.Logger.Sugar().Errorf(format, v...)
}

var (
	instanceMu sync.RWMutex
	instance   *Logger
)

// Instance returns the process-wide logger, falling back to a no-op logger
// if none has been installed yet.
func Instance() *Logger {
	instanceMu.RLock()
	defer instanceMu.RUnlock()
	if instance != nil {
		return instance
	}
	return NewLogger(zap.NewNop())
}

// ReplaceInstance installs the process-wide logger returned by Instance.
func ReplaceInstance(l *Logger) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instance = l
}

type stringJSONEncoder struct {
	zapcore.Encoder
}

func newStringJSONEncoder(cfg zapcore.EncoderConfig) *stringJSONEncoder {
	return &stringJSONEncoder{zapcore.NewJSONEncoder(cfg)}
}

// NewStringJSONEncoder returns an encoder that encodes the JSON log dict as a string
// so the log processing pipeline can correctly process logs with nested JSON.
func NewStringJSONEncoder(cfg zapcore.EncoderConfig) (zapcore.Encoder, error) {
	return newStringJSONEncoder(cfg), nil
}

var registerEncoderOnce sync.Once

// InitLogger initializes and returns a configured logger with environment-specific settings.
func InitLogger(zapOpts ...zap.Option) (*Logger, error) {
	var (
		config  zap.Config
		options []zap.Option
	)

	// Retrieve current environment
	currentEnv := os.Getenv(env.ApplicationEnvKey)
	if err := env.IsEnvironmentValid(currentEnv); err != nil {
		return nil, errors.Wrap(err, "invalid environment")
	}

	// Register custom JSON encoder
	var registerErr error
	registerEncoderOnce.Do(func() {
		registerErr = zap.RegisterEncoder(StringJSONEncoderName, NewStringJSONEncoder)
	})
	if registerErr != nil {
		return nil, errors.Wrap(registerErr, "failed to register string JSON encoder")
	}

	// Define a consistent encoder configuration. The timestamp, level and
	// message keys match the log record contract consumed downstream.
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "timestamp",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		FunctionKey:   zapcore.OmitKey, // Hide function name for brevity
		MessageKey:    MessageKey,
		StacktraceKey: "stacktrace",
		EncodeTime:    zapcore.ISO8601TimeEncoder,  // Use human-readable timestamp format
		EncodeLevel:   zapcore.CapitalLevelEncoder, // INFO, WARN, ERROR, etc.
		EncodeCaller:  zapcore.ShortCallerEncoder,  // Short file path
	}

	// Configure logging based on the environment
	switch currentEnv {
	case string(env.EnvironmentLocal):
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.MessageKey = MessageKey
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		options = append(options, zap.AddStacktrace(zap.ErrorLevel))

	case string(env.EnvironmentLocalDocker), string(env.EnvironmentDevelopment), string(env.EnvironmentStaging):
		// Development/Staging: JSON logs for log aggregator ingestion
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig = encoderConfig
		config.Encoding = StringJSONEncoderName
		options = append(options, zap.AddStacktrace(zap.ErrorLevel))

	case string(env.EnvironmentProduction):
		// Production: JSON logs with structured metadata
		config = zap.NewProductionConfig()
		config.EncoderConfig = encoderConfig
		config.Encoding = StringJSONEncoderName
		config.Level.SetLevel(zap.InfoLevel)
		options = append(options, zap.AddStacktrace(zap.ErrorLevel))
	}

	// Apply additional logging options if provided
	if len(zapOpts) > 0 {
		options = append(options, zapOpts...)
	}

	// Build the logger
	z, err := config.Build(options...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}

	return NewLogger(z), nil
}
