// Package logging builds the zap loggers used by the sieve.
//
// Production mode writes JSON, development mode writes colored console
// lines. Both go to stderr, stdout carries the primes. Pipeline workers log
// at debug level, so the default info level keeps a run quiet.
package logging

import (
	"fmt"

	"github.com/ib-77/psieve/pkg/sieve/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger for cfg. An empty level means info.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("logging: level %q: %w", cfg.Level, err)
		}
	}

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Development,
		Encoding:          encoding(cfg.Development),
		EncoderConfig:     encoderConfig(cfg.Development),
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !cfg.Development,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	return logger.Named("sieve"), nil
}

func encoding(development bool) string {
	if development {
		return "console"
	}
	return "json"
}

func encoderConfig(development bool) zapcore.EncoderConfig {
	if development {
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc.EncodeDuration = zapcore.StringDurationEncoder
		return enc
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.MessageKey = "message"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	return enc
}
