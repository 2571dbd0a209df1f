package util

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger installs the global zap logger for env and returns it.
func InitLogger(env string) (*zap.Logger, error) {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// LogError logs an error with context
func LogError(message string, err error, fields ...zap.Field) {
	if err != nil {
		zap.L().Error(message, append(fields, zap.Error(err))...)
	}
}

// LogInfo logs an informational message
func LogInfo(message string, fields ...zap.Field) {
	zap.L().Info(message, fields...)
}

// LogWarning logs a warning message
func LogWarning(message string, fields ...zap.Field) {
	zap.L().Warn(message, fields...)
}
