package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05.000"

var exit = os.Exit

type logger struct {
	*logrus.Logger
}

func newLogger(verbose bool) *logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
	})
	l.SetLevel(logrus.InfoLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return &logger{l}
}

// SetLevelName sets the level of the logger from its name, unless it
// logs at debug level already
func (l *logger) SetLevelName(name string) error {
	if l.IsLevelEnabled(logrus.DebugLevel) {
		return nil
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	l.SetLevel(level)
	return nil
}

// fail prints err to stderr and exits with the given code
func fail(code int, err error) {
	fmt.Fprintln(os.Stderr, err)
	exit(code)
}
