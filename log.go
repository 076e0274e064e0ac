/*
Package dynwire – logging.

Thin wrappers over zerolog. The client logs one info line per wire exchange
and, when Debug is enabled, the raw request and response text.
*/
package dynwire

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// defaultLogger writes info and above to stderr. Debug/trace output is
// discarded unless the caller supplies a logger of their own.
func defaultLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

// nopLogger discards everything.
func nopLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func logExchange(log zerolog.Logger, op string, attempt int, status int) {
	log.Info().
		Str("op", op).
		Int("attempt", attempt).
		Int("status", status).
		Msg("dynwire exchange")
}

// logDump prints raw request/response text. Only called when Config.Debug
// is set; propagation of the error itself is unchanged.
func logDump(log zerolog.Logger, op, direction, text string) {
	log.Debug().
		Str("op", op).
		Str("dir", direction).
		Msg(text)
}
