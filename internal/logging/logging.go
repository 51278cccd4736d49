// Package logging builds the service logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iliamunaev/quote-wizard/internal/config"
)

// New returns a JSON production logger, or a console logger when
// cfg.Development is set, at cfg.Level.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if cfg.Level != "" {
		var err error
		if lvl, err = zapcore.ParseLevel(cfg.Level); err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)

	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	return log.Named("wizard"), nil
}
