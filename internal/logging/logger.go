// Package logging provides the CLI's leveled stderr logger and the
// redaction types that keep secret material out of its output.
package logging

import (
	"fmt"
	"os"
	"strings"
)

// Logger writes leveled, glyph-prefixed messages to stderr.
type Logger struct {
	debug   bool
	noColor bool
}

// New creates a logger. Debug messages are dropped unless debug is set.
func New(debug, noColor bool) *Logger {
	return &Logger{
		debug:   debug,
		noColor: noColor,
	}
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(os.Stderr, "\033[32m✓\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "✓ %s\n", msg)
	}
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(os.Stderr, "\033[33m⚠\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "⚠ %s\n", msg)
	}
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "✗ %s\n", msg)
	}
}

// Debug logs a message only when debug mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	if !l.debug {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(os.Stderr, "\033[36m[DEBUG]\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "[DEBUG] %s\n", msg)
	}
}

// Secret wraps a string value so every formatting path prints a redaction
// marker instead of the value. Wrap secrets at the call site:
//
//	log.Debug("loaded %s=%s", name, logging.Secret(value))
type Secret string

// String implements fmt.Stringer, always returning the redaction marker.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString covers %#v formatting.
func (s Secret) GoString() string {
	return "[REDACTED]"
}

// SecretBytes is the []byte counterpart of Secret, for raw key material.
type SecretBytes []byte

// String implements fmt.Stringer, always returning the redaction marker.
func (s SecretBytes) String() string {
	return "[REDACTED]"
}

// GoString covers %#v formatting.
func (s SecretBytes) GoString() string {
	return "[REDACTED]"
}

// Redact replaces every occurrence of the given secret values in s with the
// redaction marker. Values of three characters or fewer are skipped; they
// produce more false positives than protection.
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if secret != "" && len(secret) > 3 {
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}
