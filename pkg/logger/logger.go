package logger

import (
	"github.com/kstonekuan/splatter-mcp-app/internal/config"

	"go.uber.org/zap"
)

var logger *zap.Logger

// NewLogger builds a zap logger matching the configured environment:
// structured JSON in prod, human-readable in dev, deterministic in test.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	switch cfg.Environment {
	case "prod":
		return zap.NewProduction()
	case "test":
		return zap.NewExample(), nil
	default:
		return zap.NewDevelopment()
	}
}

func MustNewLogger(cfg *config.Config) *zap.Logger {
	return zap.Must(NewLogger(cfg))
}

func InitLogger(cfg *config.Config) (*zap.Logger, error) {
	var err error
	logger, err = NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	return logger, nil
}

func GetLogger() *zap.Logger {
	if logger == nil {
		panic("logger not initialized")
	}

	return logger
}
