package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger. Production logs are JSON so the log
// pipeline can index fields; other environments use the text formatter unless
// LOG_FORMAT says otherwise.
func NewLogger(cfg *Config) *logrus.Logger {
	logg := logrus.New()
	logg.SetOutput(os.Stdout)

	switch {
	case cfg.LogFormat == "json", cfg.LogFormat == "" && cfg.IsProduction():
		logg.SetFormatter(&logrus.JSONFormatter{})
	default:
		logg.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logg.SetLevel(level)

	return logg
}

func LogError(logger logrus.FieldLogger, moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}
