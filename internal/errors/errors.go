package errors

import (
	"errors"
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
		if e.Err != nil {
			parts = append(parts, "\n  Caused by: "+e.Err.Error())
		}
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      any
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// CommandError represents a command execution error
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// MemoryError enhances memory-protection errors with context
func MemoryError(operation string, err error) error {
	return UserError{
		Message:    fmt.Sprintf("memory protection error during %s", operation),
		Suggestion: getMemorySuggestion(err),
		Err:        err,
	}
}

// getMemorySuggestion returns helpful suggestions for common memory-protection failures
func getMemorySuggestion(err error) string {
	errStr := err.Error()

	if strings.Contains(errStr, "cannot allocate memory") || strings.Contains(errStr, "memlock") {
		return "Raise the locked-memory limit: 'ulimit -l 65536', or LimitMEMLOCK=infinity under systemd"
	}
	if strings.Contains(errStr, "operation not permitted") {
		return "Grant the process CAP_IPC_LOCK, or run outside the restricting seccomp/AppArmor profile"
	}
	if strings.Contains(errStr, "decryption failed") {
		return "The in-memory ciphertext was tampered with or corrupted. Restart the process"
	}
	if strings.Contains(errStr, "buffer is immutable") {
		return "The locked buffer was frozen. Call Melt() before writing, or copy it first"
	}
	if strings.Contains(errStr, "destroyed") {
		return "The secure buffer was already destroyed. Check the value's lifetime"
	}

	return ""
}

// WrapCommandNotFound wraps command not found errors with helpful suggestions
func WrapCommandNotFound(command string, err error) error {
	suggestions := map[string]string{
		"npm":    "Install Node.js from https://nodejs.org/",
		"python": "Install Python from https://python.org/",
		"go":     "Install Go from https://golang.org/",
		"docker": "Install Docker from https://docker.com/",
		"git":    "Install Git from https://git-scm.com/",
		"make":   "Install Make (usually comes with build tools)",
	}

	suggestion := suggestions[command]
	if suggestion == "" {
		suggestion = fmt.Sprintf("Make sure '%s' is installed and in your PATH", command)
	}

	return CommandError{
		Command:    command,
		Message:    "command not found",
		Suggestion: suggestion,
	}
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Unwrap to get the root cause
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	// Already a user-friendly error
	if _, ok := err.(UserError); ok {
		return err
	}
	if _, ok := err.(ConfigError); ok {
		return err
	}
	if _, ok := err.(CommandError); ok {
		return err
	}

	// Simplify common technical errors
	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if strings.Contains(errStr, "json:") {
		return ConfigError{
			Message:    "Invalid JSON format",
			Suggestion: "Validate your JSON at https://jsonlint.com/",
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	// Return original error if we can't simplify it
	return err
}
