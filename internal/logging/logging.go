// Package logging builds the logrus loggers used by the CLI and server.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a text logger for a CLI verbosity:
//
//	0  silent
//	1  warnings and errors
//	2  per-degree progress
//	3  every discovered node and edge
//	4  as 3, with full timestamps
//
// Values outside 0..4 are clamped.
func New(verbosity int, w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)

	f := &logrus.TextFormatter{DisableTimestamp: true}

	switch {
	case verbosity <= 0:
		l.SetLevel(logrus.PanicLevel)
	case verbosity == 1:
		l.SetLevel(logrus.WarnLevel)
	case verbosity == 2:
		l.SetLevel(logrus.InfoLevel)
	case verbosity == 3:
		l.SetLevel(logrus.DebugLevel)
	default:
		l.SetLevel(logrus.DebugLevel)
		f = &logrus.TextFormatter{FullTimestamp: true}
	}

	l.SetFormatter(f)

	return l
}

// FromLevel returns a JSON logger for the server at the named level.
// Unknown names fall back to info.
func FromLevel(name string, w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		lvl = logrus.InfoLevel
	}

	l.SetLevel(lvl)

	return l
}
