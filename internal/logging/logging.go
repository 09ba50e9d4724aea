package logging

import (
	"os"

	"github.com/diewo77/backoffice/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup builds the process-wide zap logger and installs it as the
// global. File output rotates via lumberjack when enabled.
func Setup(cfg config.LoggerConfig) *zap.Logger {
	var encCfg zapcore.EncoderConfig
	var level zapcore.Level
	if cfg.Mode == "production" {
		encCfg = zap.NewProductionEncoderConfig()
		level = zapcore.InfoLevel
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
		level = zapcore.DebugLevel
	}

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(os.Stdout),
		level,
	)

	var logger *zap.Logger
	if cfg.FileEnable {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
		}
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.AddSync(rotator),
			level,
		)
		logger = zap.New(zapcore.NewTee(consoleCore, fileCore))
	} else {
		logger = zap.New(consoleCore)
	}

	zap.ReplaceGlobals(logger)
	return logger
}
