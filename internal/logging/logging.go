package logging

import (
	"io"
	"os"
	"strings"

	charm "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Logger is the logging capability handed to each component
// Components never touch a global logger so they stay testable in isolation
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Options controls verbosity and styling for the process-wide logger
type Options struct {
	Verbosity int  // 0=warn, 1=info, 2+=debug
	NoColor   bool // strip ANSI styling from all output
}

// splitLogger routes debug/info to stdout and warn/error to stderr
type splitLogger struct {
	out *charm.Logger
	err *charm.Logger
}

// New creates the process logger with the given verbosity and color settings
func New(opts Options) Logger {
	level := charm.WarnLevel
	switch {
	case opts.Verbosity >= 2:
		level = charm.DebugLevel
	case opts.Verbosity == 1:
		level = charm.InfoLevel
	}

	return &splitLogger{
		out: newCharm(os.Stdout, level, opts.NoColor),
		err: newCharm(os.Stderr, level, opts.NoColor),
	}
}

func newCharm(w io.Writer, level charm.Level, noColor bool) *charm.Logger {
	l := charm.NewWithOptions(w, charm.Options{
		Level:           level,
		ReportTimestamp: false,
	})
	if noColor {
		l.SetColorProfile(termenv.Ascii)
	}
	return l
}

func (l *splitLogger) Debug(msg string, args ...interface{}) { l.out.Debug(msg, args...) }
func (l *splitLogger) Info(msg string, args ...interface{})  { l.out.Info(msg, args...) }
func (l *splitLogger) Warn(msg string, args ...interface{})  { l.err.Warn(msg, args...) }
func (l *splitLogger) Error(msg string, args ...interface{}) { l.err.Error(msg, args...) }

// Nop returns a logger that discards everything, for tests and defaults
func Nop() Logger {
	l := charm.NewWithOptions(io.Discard, charm.Options{Level: charm.FatalLevel})
	return &splitLogger{out: l, err: l}
}

// External relays captured output of an external tool through the logger
// at debug level. Stderr is relayed before stdout, blank streams are dropped.
func External(l Logger, stdout, stderr string) {
	if s := strings.TrimSpace(stderr); s != "" {
		l.Debug(s)
	}
	if s := strings.TrimSpace(stdout); s != "" {
		l.Debug(s)
	}
}
