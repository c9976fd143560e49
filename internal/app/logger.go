package app

import (
	"strings"

	"github.com/goliatone/go-catalog-cache/pkg/logger"
)

// ConfigureLogging initialises the global logger, defaulting to info.
func ConfigureLogging(cfg LogConfig) error {
	level := strings.TrimSpace(cfg.Level)
	if level == "" {
		level = "info"
	}
	return logger.Init(level, cfg.Development)
}
