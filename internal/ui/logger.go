package ui

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NewLogger returns the diagnostics logger. Per-asset failures are logged at
// warn level, so they only surface when verbose.
func NewLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(Output)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.ErrorLevel)
	}
	return log
}

// RunLogger tags every entry with a fresh run id
func RunLogger(log *logrus.Logger) *logrus.Entry {
	return log.WithField("run", uuid.NewString())
}
