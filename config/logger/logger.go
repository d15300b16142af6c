// Package logger builds the zap logger shared by every simulator binary.
package logger

import (
	"log"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	config "github.com/CasperJasper/OS-Scheduling-Simulator/config/utils"
)

// atomicLevel is the live level of the low priority core
var atomicLevel = zap.NewAtomicLevel()

// Build sets up the base logger: warnings and below go to stdout, errors to stderr.
// The level follows logger.level in the watched config file.
func Build(cfg *config.Logger) *zap.Logger {
	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		log.Fatalf("Couldn't parse initial log level at logger build: %v", err)
	}
	atomicLevel.SetLevel(lvl)

	logger := zap.New(newCore(cfg), options(cfg)...)
	zap.ReplaceGlobals(logger)

	viper.OnConfigChange(func(in fsnotify.Event) {
		if in.Has(fsnotify.Write) {
			SetLevel(viper.GetString("logger.level"))
		}
	})
	viper.WatchConfig()
	return logger
}

func newCore(cfg *config.Logger) zapcore.Core {
	encoder := zapcore.NewJSONEncoder(cfg.EncoderConfig)
	if cfg.Encoding == "console" {
		encoder = zapcore.NewConsoleEncoder(cfg.EncoderConfig)
	}

	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})
	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return atomicLevel.Enabled(lvl) && lvl < zapcore.ErrorLevel
	})

	return zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), lowPriority),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), highPriority),
	)
}

func options(cfg *config.Logger) []zap.Option {
	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}
	if !cfg.DisableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	return opts
}

// SetLevel changes logger level dynamically
func SetLevel(level string) {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		zap.L().Error("Couldn't parse level", zap.Error(err))
		return
	}
	zap.L().Info("Atomic level updated", zap.String("value", level))
	atomicLevel.SetLevel(l)
}
