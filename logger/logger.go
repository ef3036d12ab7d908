// Package logger configures the zerolog.Logger every component
// derives its own sub-logger from via .With().Str("component", ...).
package logger

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/vigil-eol/advisor/config"
)

// New returns a configured zerolog.Logger: console-pretty in
// development, level gated by cfg.LogLevel otherwise.
func New(cfg *config.Config) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if cfg.IsDevelopment() {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
	return zerolog.New(out).With().Timestamp().Logger()
}
