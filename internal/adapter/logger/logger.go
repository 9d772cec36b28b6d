package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Options struct {
	Level  logrus.Level
	Format string // "json" or "text"
	File   string // optional, appended to alongside stderr
}

// New builds the process logger. Logs go to stderr so stdout stays free
// for the report itself. A log file that cannot be opened is reported and
// otherwise ignored.
func New(opts Options) (*logrus.Logger, func() error) {
	log := logrus.New()
	log.SetLevel(opts.Level)

	if strings.EqualFold(opts.Format, "text") {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	closer := func() error { return nil }
	log.SetOutput(os.Stderr)
	if opts.File != "" {
		if file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666); err == nil {
			log.SetOutput(io.MultiWriter(os.Stderr, file))
			closer = file.Close
		} else {
			log.WithError(err).Error("Could not create file for logging")
		}
	}
	return log, closer
}

// Level maps the verbose flag to a logrus level.
func Level(verbose bool) logrus.Level {
	if verbose {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}
