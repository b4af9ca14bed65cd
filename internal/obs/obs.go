// Package obs wires up the process-wide structured logger. It is a thin
// wrapper over zerolog — the teacher's own logging stack, consumed here
// directly rather than through the teacher's much larger logiface
// abstraction (see DESIGN.md) — giving every package in this module a
// single place to get a *zerolog.Logger from.
package obs

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger. Configure replaces it; until Configure is
// called it writes human-readable output to stderr at info level, which is
// convenient for tests and ad-hoc runs.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel).With().Timestamp().Logger()

// Configure replaces Log with one writing to w at the given level. Passing
// an *os.File that's a terminal gets color console output; anything else
// (a file, a pipe, a bytes.Buffer in tests) gets newline-delimited JSON.
func Configure(level zerolog.Level, w io.Writer) {
	var out io.Writer = w
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		out = zerolog.ConsoleWriter{Out: f}
	}
	Log = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
