// Package logger builds the structured logger shared by every component.
package logger

import (
	"io"
	"os"

	"github.com/phuslu/log"
)

// New returns a logger writing to w at the given level ("debug", "info",
// "warn", "error"). Terminals get coloured console output, anything else
// gets JSON lines.
func New(level string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	var writer log.Writer = &log.IOWriter{Writer: w}
	if f, ok := w.(*os.File); ok && log.IsTerminal(f.Fd()) {
		writer = &log.ConsoleWriter{
			ColorOutput:    true,
			EndWithMessage: true,
			Writer:         w,
		}
	}

	return &log.Logger{
		Level:      log.ParseLevel(level),
		TimeFormat: "15:04:05",
		Writer:     writer,
	}
}

// Discard is a logger that drops everything; used by tests.
func Discard() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}
