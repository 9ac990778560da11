package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newDevelopmentLoggerConfig() zap.Config {
	return zap.NewDevelopmentConfig()
}

// Test config keeps suites quiet: console encoding, errors only.
func newTestLoggerConfig() zap.Config {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	return cfg
}

func newProductionLoggerConfig() zap.Config {
	return zap.NewProductionConfig()
}
