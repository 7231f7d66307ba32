// Package logging builds the zerolog loggers used by the commands.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// New returns a JSON logger writing to w at the named level. An empty level
// means info.
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// Console is New with human readable output.
func Console(level string, w io.Writer) (zerolog.Logger, error) {
	return New(level, zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
}

func parseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "logging: bad level %q", level)
	}
	return lvl, nil
}
