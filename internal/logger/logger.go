// Package logger holds the process-wide zap logger: colored console lines on
// stderr and, optionally, JSON lines in a lumberjack-rotated file.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Faultbox/town-links/internal/config"
)

// Log is the root logger. It is nil until one of the Init functions ran.
var Log *zap.Logger

// Sugar is Log in printf style.
var Sugar *zap.SugaredLogger

// FileConfig describes the rotated log file. An empty Path disables it.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig rotates path at 50 MB, keeping three compressed
// backups for a week.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Setup initializes logging from the logging section of the config. Zero
// rotation limits keep the defaults.
func Setup(cfg config.LoggingConfig, console bool) error {
	var file FileConfig
	if cfg.LogFile != "" {
		file = DefaultFileConfig(cfg.LogFile)
		if cfg.MaxSizeMB > 0 {
			file.MaxSizeMB = cfg.MaxSizeMB
		}
		if cfg.MaxBackups > 0 {
			file.MaxBackups = cfg.MaxBackups
		}
		if cfg.MaxAgeDays > 0 {
			file.MaxAgeDays = cfg.MaxAgeDays
		}
	}
	return InitWithFileConfig(cfg.Level, file, console)
}

// Init logs at level to the console and, if logFile is set, to a rotated
// file with default limits.
func Init(level string, logFile string) error {
	var file FileConfig
	if logFile != "" {
		file = DefaultFileConfig(logFile)
	}
	return InitWithFileConfig(level, file, true)
}

// InitWithFileConfig replaces the root logger. With console false and no
// file path every entry is discarded.
func InitWithFileConfig(level string, file FileConfig, console bool) error {
	lvl := parseLevel(level)

	var cores []zapcore.Core
	if console {
		cores = append(cores, consoleCore(lvl))
	}
	if file.Path != "" {
		core, err := fileCore(file, lvl)
		if err != nil {
			return err
		}
		cores = append(cores, core)
	}

	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	Sugar = Log.Sugar()
	return nil
}

func consoleCore(lvl zapcore.Level) zapcore.Core {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		CallerKey:        "caller",
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeName:       zapcore.FullNameEncoder,
		EncodeLevel:      zapcore.CapitalColorLevelEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	})
	return zapcore.NewCore(enc, zapcore.Lock(os.Stderr), lvl)
}

// fileCore creates the log directory and a JSON core writing through
// lumberjack.
func fileCore(file FileConfig, lvl zapcore.Level) (zapcore.Core, error) {
	if err := os.MkdirAll(filepath.Dir(file.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	w := &lumberjack.Logger{
		Filename:   file.Path,
		MaxSize:    file.MaxSizeMB,
		MaxBackups: file.MaxBackups,
		MaxAge:     file.MaxAgeDays,
		Compress:   file.Compress,
		LocalTime:  true,
	}

	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		CallerKey:      "caller",
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	return zapcore.NewCore(enc, zapcore.AddSync(w), lvl), nil
}

// parseLevel accepts zap level names in any case; anything else is info.
func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Named returns the logger of one engine component, or a no-op logger
// before initialization so packages work in tests without setup.
func Named(name string) *zap.Logger {
	if Log == nil {
		return zap.NewNop().Named(name)
	}
	return Log.Named(name)
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

func root() *zap.Logger {
	if Log == nil {
		return zap.NewNop()
	}
	// Skip this package's wrapper in the caller field.
	return Log.WithOptions(zap.AddCallerSkip(1))
}

func Debug(msg string, fields ...zap.Field) { root().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { root().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { root().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { root().Error(msg, fields...) }

// Fatal logs and exits the process.
func Fatal(msg string, fields ...zap.Field) { root().Fatal(msg, fields...) }
