// Package log builds the zap logger shared by the storefront commands.
package log

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

// DefaultLevel keeps a command's terminal output free of routine records.
const DefaultLevel = zapcore.WarnLevel

// New returns a logger writing console records to stderr and, when cfg.File
// is set, JSON records to a rotated log file.
func New(cfg types.LogConfig) *zap.Logger {
	var rotation io.Writer
	if cfg.File != "" {
		rotation = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB, // megabytes
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays, // days
			Compress:   cfg.Compress,
		}
	}
	return newZap(os.Stderr, rotation, ParseLevel(cfg.Level))
}

// ParseLevel maps a level name to a zap level. Unknown names give DefaultLevel.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return DefaultLevel
	}
}

func newZap(console io.Writer, rotation io.Writer, level zapcore.Level) *zap.Logger {
	encodeConfig := zap.NewProductionEncoderConfig()
	encodeConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encodeConfig), zapcore.AddSync(console), level),
	}
	if rotation != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encodeConfig), zapcore.AddSync(rotation), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}
