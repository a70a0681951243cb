// Package logging configures structured logging for the planning
// pipeline. One root logger is built at startup; every pipeline
// component derives its own tagged logger from it.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures console output at the requested verbosity and
// returns the root logger. Verbose surfaces the per-candidate debug
// output from the planner, scorer and sync reconciler.
func Init(verbose bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).With().Timestamp().Logger()

	log.Logger = logger
	return logger
}
