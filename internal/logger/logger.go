package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// NewFileLogger creates a logger that writes to a file
func NewFileLogger(path string) (*Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	l := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})

	cleanup := func() {
		f.Close()
	}

	return &Logger{Logger: l}, cleanup, nil
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// PushStarted logs the start of a push operation
func (l *Logger) PushStarted(target string, files int) {
	l.Info("push started",
		"target", target,
		"files", files)
}

// PushCompleted logs the completion of a push operation
func (l *Logger) PushCompleted(pushed, skipped int, duration time.Duration) {
	l.Info("push completed",
		"pushed", pushed,
		"skipped", skipped,
		"duration", duration.Round(time.Millisecond))
}

// PullStarted logs the start of a pull operation
func (l *Logger) PullStarted(source string) {
	l.Info("pull started", "source", source)
}

// PullCompleted logs the completion of a pull operation
func (l *Logger) PullCompleted(pages int, duration time.Duration) {
	l.Info("pull completed",
		"pages", pages,
		"duration", duration.Round(time.Millisecond))
}

// PageSynced logs a successful page sync
func (l *Logger) PageSynced(file, pageID, action string) {
	l.Info("page synced",
		"file", file,
		"page_id", pageID,
		"action", action)
}

// FileError logs an error for a specific file
func (l *Logger) FileError(file string, err error) {
	l.Error("file error",
		"file", file,
		"error", err)
}

// ConversionError logs a conversion error
func (l *Logger) ConversionError(source string, err error) {
	l.Error("conversion failed",
		"source", source,
		"error", err)
}

// APIError logs a remote API error
func (l *Logger) APIError(operation string, err error) {
	l.Error("api error",
		"operation", operation,
		"error", err)
}

// CommitRecorded logs a recorded commit snapshot
func (l *Logger) CommitRecorded(stamp, message string, files int) {
	l.Info("commit recorded",
		"commit", stamp,
		"message", message,
		"files", files)
}

// Skipped logs when a file is skipped
func (l *Logger) Skipped(file, reason string) {
	l.Debug("file skipped",
		"file", file,
		"reason", reason)
}
