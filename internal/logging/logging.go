// Package logging wires the portal's zerolog logger, grounded on the
// gateway's logger.New: console writer in development, level set by
// the configured LOG_LEVEL.
package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/cpor-labs/cpor-portal/internal/config"
)

// New returns a configured zerolog.Logger. Development gets a
// human-readable console writer; any other environment logs structured
// JSON to stdout, suitable for container log collection.
func New(cfg *config.Config) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out zerolog.ConsoleWriter
	if cfg.IsDevelopment() {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
		return zerolog.New(out).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
