// Package logging builds the process logger.
//
// Usage:
//
//	log := logging.New(os.Stdout, "info", "text")
//	log.WithField("url", u).Info("Downloading streams")
package logging

import (
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// New returns a logger writing to w. level is a logrus level name (default
// info); format is "text" (default) or "json". Every line carries app and
// run_id fields.
func New(w io.Writer, level, format string) *logrus.Entry {
	log := logrus.New()
	log.SetOutput(w)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil || strings.TrimSpace(level) == "" {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log.WithFields(logrus.Fields{
		"app":    "iptvorg-m3u",
		"run_id": uuid.NewString(),
	})
}

// Discard returns a logger that drops everything. For tests.
func Discard() *logrus.Entry {
	return New(io.Discard, "panic", "text")
}
