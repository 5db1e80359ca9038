// Package logger builds the zap logger used across the service and the
// gin and gorm adapters that feed it.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// New creates a zap logger writing to stdout.
func New(cfg Config) (*zap.Logger, error) {
	return newWithSink(cfg, zapcore.Lock(os.Stdout))
}

func newWithSink(cfg Config, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoder, err := newEncoder(cfg.Format)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder, sink, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func parseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	if strings.EqualFold(level, "warning") {
		return zapcore.WarnLevel, nil
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("logger: invalid level %q", level)
	}
	return lvl, nil
}

func newEncoder(format string) (zapcore.Encoder, error) {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	switch strings.ToLower(format) {
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encCfg), nil
	case "json":
		return zapcore.NewJSONEncoder(encCfg), nil
	default:
		return nil, fmt.Errorf("logger: invalid format %q", format)
	}
}
