package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string
	// File, when set, receives every entry as well. It is opened in append
	// mode and its directory is created if needed.
	File string
	// Dedupe drops entries whose level and message were already written.
	Dedupe bool
}

// New builds the process logger. The returned close function syncs and
// closes the log file.
func New(opt Options) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if opt.Level != "" {
		if err := level.Set(opt.Level); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", opt.Level, err)
		}
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	closeFile := func() {}
	if opt.File != "" {
		if dir := filepath.Dir(opt.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(opt.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(FileEncoderConfig()), zapcore.AddSync(f), level))
		closeFile = func() { _ = f.Close() }
	}

	core := zapcore.NewTee(cores...)
	if opt.Dedupe {
		core = NewDedupeCore(core)
	}

	l := zap.New(core, zap.AddCaller())
	return l, func() {
		_ = l.Sync()
		closeFile()
	}, nil
}

// FileEncoderConfig writes "timestamp [LEVEL] - file:line: message".
func FileEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		TimeKey:          "ts",
		NameKey:          "logger",
		CallerKey:        "caller",
		ConsoleSeparator: " ",
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + l.CapitalString() + "]")
		},
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeName:     zapcore.FullNameEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller: func(c zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("- " + c.TrimmedPath() + ":")
		},
	}
}
