// Package logging builds the logrus loggers shared by the library packages
// and the pcbtrace command.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to w. verbose enables debug output.
func New(w io.Writer, verbose bool) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return logrus.NewEntry(l)
}

// Stderr returns New(os.Stderr, verbose).
func Stderr(verbose bool) *logrus.Entry {
	return New(os.Stderr, verbose)
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Entry {
	return New(io.Discard, false)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *logrus.Entry) *logrus.Entry {
	if l == nil {
		return Discard()
	}
	return l
}
