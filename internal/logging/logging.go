// Package logging builds the process-wide zap logger.
package logging

import (
	"go.uber.org/zap"
)

// New returns a configured logger: human-readable in dev, JSON otherwise.
func New(env string) (*zap.Logger, error) {
	if env == "dev" || env == "development" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
