package logfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// DefaultMaxBytes bounds how much of a log ends up in a report.
const DefaultMaxBytes = 1 << 20

// Source reads the tail of a text log file.
type Source struct {
	Path     string
	MaxBytes int64
	log      *logrus.Entry
}

func New(path string, maxBytes int64, log *logrus.Entry) *Source {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Source{Path: path, MaxBytes: maxBytes, log: log.WithFields(logrus.Fields{"adapter": "logfile", "path": path})}
}

// ReadLog returns the last MaxBytes of the file. An unset path or a file
// that does not exist reads as empty text.
func (s *Source) ReadLog() (string, error) {
	if s.Path == "" {
		return "", nil
	}
	f, err := os.Open(s.Path)
	if os.IsNotExist(err) {
		s.log.Warn("Log file not found, report will carry an empty log")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat log: %w", err)
	}
	truncated := false
	if size := info.Size(); size > s.MaxBytes {
		if _, err := f.Seek(size-s.MaxBytes, io.SeekStart); err != nil {
			return "", fmt.Errorf("seek log: %w", err)
		}
		truncated = true
		s.log.WithField("skipped_bytes", size-s.MaxBytes).Debug("Log truncated to tail")
	}

	data, err := io.ReadAll(io.LimitReader(f, s.MaxBytes))
	if err != nil {
		return "", fmt.Errorf("read log: %w", err)
	}
	if truncated {
		data = trimPartialLine(data)
	}
	return string(data), nil
}

// trimPartialLine drops the partial first line of a tail. Without a line
// break it only skips the continuation bytes of a split character.
func trimPartialLine(data []byte) []byte {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return data[i+1:]
	}
	for len(data) > 0 && !utf8.RuneStart(data[0]) {
		data = data[1:]
	}
	return data
}

// Text is a LogSource backed by an in-memory buffer.
type Text string

func (t Text) ReadLog() (string, error) { return string(t), nil }
