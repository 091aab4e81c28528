package app

import (
	"strings"

	"github.com/meetgrid/meetgrid/pkg/logger"
)

// ConfigureLogging initialises the global logger with the provided settings, defaulting to info.
func ConfigureLogging(level string, development bool) error {
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	return logger.Init(level, development)
}
