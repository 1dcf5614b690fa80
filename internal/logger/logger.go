package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup replaces the global zerolog logger. format is "json" or "console".
func Setup(format string, debug bool) {
	log.Logger = New(os.Stdout, format)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func New(out io.Writer, format string) zerolog.Logger {
	if format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}
