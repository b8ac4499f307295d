package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Outside dev it writes JSON tagged with
// the service name; dev and development get the console writer. An unknown
// level falls back to info.
func NewLogger(env, level string) zerolog.Logger {
	return newLogger(env, level, os.Stdout)
}

func newLogger(env, level string, out io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = out
	dev := env == "dev" || env == "development"
	if dev {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	ctx := zerolog.New(w).Level(lvl).With().Timestamp()
	if !dev {
		ctx = ctx.Str("service", "residences")
	}
	return ctx.Logger()
}
