package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how much the logger writes.
type Options struct {
	Dir     string // directory for pira.log; empty disables the file sink
	Level   string // debug, info, warn, error
	Console bool   // also write human-readable lines to stderr
}

// NewLogger builds a JSON logger writing to a rotating file, optionally
// teed to the console.
func NewLogger(opts Options) (*zap.Logger, error) {
	level := ParseLevel(opts.Level)
	var cores []zapcore.Core

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, err
		}
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, "pira.log"),
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		})
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, level))
	}

	if opts.Console {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}
