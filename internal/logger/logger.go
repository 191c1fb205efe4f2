// Package logger provides leveled logging for the docindex CLI and servers.
// When verbose mode is enabled via the --verbose flag, debug and info
// messages are printed to stderr to help users understand the index
// pipeline. Warnings and errors are always printed.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Output formats accepted by SetFormat.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// sectionField marks an entry as a section header for the text formatter.
const sectionField = "section"

// Fields is a set of structured key/value pairs attached to a log entry.
type Fields = logrus.Fields

// quietLevel is the level outside verbose mode.
const quietLevel = logrus.WarnLevel

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&textFormatter{})
	l.SetLevel(quietLevel)
	return l
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	if v {
		base.SetLevel(logrus.DebugLevel)
		return
	}
	base.SetLevel(quietLevel)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	return base.IsLevelEnabled(logrus.DebugLevel)
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// SetFormat switches between the human-readable text format and JSON lines.
func SetFormat(format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		base.SetFormatter(&textFormatter{})
	case FormatJSON:
		base.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	default:
		return fmt.Errorf("unknown log format %q (want %s or %s)", format, FormatText, FormatJSON)
	}
	return nil
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	base.Debugf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	base.WithField(sectionField, name).Info(name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	base.Infof(format, args...)
}

// Warn prints a warning message regardless of verbose mode.
func Warn(format string, args ...any) {
	base.Warnf(format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	base.Errorf(format, args...)
}

// Entry is a log entry carrying structured fields.
type Entry struct {
	entry *logrus.Entry
}

// WithFields returns an entry that attaches fields to every message.
func WithFields(fields Fields) *Entry {
	return &Entry{entry: base.WithFields(fields)}
}

// WithFields returns a copy of the entry with additional fields.
func (e *Entry) WithFields(fields Fields) *Entry {
	return &Entry{entry: e.entry.WithFields(fields)}
}

// Debug prints a message if verbose mode is enabled.
func (e *Entry) Debug(format string, args ...any) {
	e.entry.Debugf(format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func (e *Entry) Info(format string, args ...any) {
	e.entry.Infof(format, args...)
}

// Warn prints a warning message regardless of verbose mode.
func (e *Entry) Warn(format string, args ...any) {
	e.entry.Warnf(format, args...)
}

// Error prints an error message regardless of verbose mode.
func (e *Entry) Error(format string, args ...any) {
	e.entry.Errorf(format, args...)
}

// textFormatter renders "[LEVEL] message key=value" lines.
type textFormatter struct{}

func (f *textFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var buf bytes.Buffer

	if name, ok := e.Data[sectionField]; ok {
		fmt.Fprintf(&buf, "\n=== %v ===\n", name)
		return buf.Bytes(), nil
	}

	fmt.Fprintf(&buf, "[%s] %s", levelLabel(e.Level), e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, " %s=%v", k, e.Data[k])
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func levelLabel(l logrus.Level) string {
	if l == logrus.WarnLevel {
		return "WARN"
	}
	return strings.ToUpper(l.String())
}
