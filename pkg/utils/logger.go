package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Named log outputs; anything else is a file path
const (
	OutputStdout  = "stdout"
	OutputStderr  = "stderr"
	OutputDiscard = "discard"
)

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string // debug, info, warn, error
	OutputPath string // stdout, stderr, discard, or file path
	Format     string // json or console
	Component  string // added to every entry when set, e.g. "server" or "cli"
}

// NewLogger creates the structured logger shared by the server and the CLI.
// An unknown level falls back to info.
func NewLogger(cfg LoggerConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	sink, err := openSink(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open log output %q: %w", cfg.OutputPath, err)
	}

	logger := zap.New(
		zapcore.NewCore(newEncoder(cfg.Format), sink, level),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if cfg.Component != "" {
		logger = logger.With(zap.String("component", cfg.Component))
	}
	return logger, nil
}

// newEncoder returns a JSON encoder for "json" and a colored console encoder otherwise
func newEncoder(format string) zapcore.Encoder {
	if format == "json" {
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "timestamp"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(ec)
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

// openSink resolves a named output or appends to a log file, creating its directory
func openSink(output string) (zapcore.WriteSyncer, error) {
	switch output {
	case "", OutputStdout:
		return zapcore.Lock(os.Stdout), nil
	case OutputStderr:
		return zapcore.Lock(os.Stderr), nil
	case OutputDiscard:
		return zapcore.AddSync(io.Discard), nil
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(file), nil
}
