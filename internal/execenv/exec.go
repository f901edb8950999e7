// Package execenv runs child processes with secret-bearing environments.
//
// Secret values arrive sealed (see internal/secure) and are only revealed
// at the moment the child's environ slice is assembled. The child's copy of
// the environment is owned by the OS; sealing bounds the parent's plaintext
// lifetime, not the child's.
package execenv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	mcerrors "github.com/systmms/memclear/internal/errors"
	"github.com/systmms/memclear/internal/logging"
	"github.com/systmms/memclear/internal/secure"
)

// Executor handles running commands with ephemeral environment variables
type Executor struct {
	logger *logging.Logger
}

// New creates a new executor
func New(logger *logging.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// ExecOptions configures command execution
type ExecOptions struct {
	Command      []string                  // Command and arguments to run
	Environment  map[string]string         // Static variables, injected as-is
	Sealed       map[string]*secure.Sealed // Sealed variables, revealed at spawn time
	KeepExisting bool                      // Existing env vars win over injected ones
	PrintVars    bool                      // Print injected variables (values masked)
	WorkingDir   string                    // Working directory for the command
	Timeout      time.Duration             // Kill the child after this long (0 for no timeout)
}

// Exec runs a command with the provided environment. It returns the child's
// exit code; a non-zero code is not an error. Errors cover everything that
// prevented the child from running to completion.
func (e *Executor) Exec(ctx context.Context, options ExecOptions) (int, error) {
	if len(options.Command) == 0 {
		return 0, mcerrors.UserError{
			Message:    "No command specified",
			Suggestion: "Provide a command after -- (e.g., memclear exec -- terraform apply)",
		}
	}

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	cmdName := options.Command[0]
	if _, err := exec.LookPath(cmdName); err != nil {
		return 0, mcerrors.WrapCommandNotFound(cmdName, err)
	}

	env, err := e.buildEnvironment(options)
	if err != nil {
		return 0, mcerrors.UserError{
			Message:    "Failed to build environment",
			Details:    err.Error(),
			Suggestion: "Check the env file and your .memclear.yaml for errors",
			Err:        err,
		}
	}

	if options.PrintVars {
		e.printEnvironment(options)
	}

	cmd := exec.CommandContext(ctx, cmdName, options.Command[1:]...)
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}

	e.logger.Debug("Executing command: %s", strings.Join(options.Command, " "))
	e.logger.Debug("Injected variables: %d static, %d sealed",
		len(options.Environment), len(options.Sealed))

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, mcerrors.CommandError{
				Command:    strings.Join(options.Command, " "),
				Message:    fmt.Sprintf("timed out after %s", options.Timeout),
				Suggestion: "Raise --timeout or exec.timeout in .memclear.yaml",
			}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The child ran and failed; its exit code is the caller's to
			// forward.
			return exitErr.ExitCode(), nil
		}
		return 0, mcerrors.CommandError{
			Command:    strings.Join(options.Command, " "),
			Message:    err.Error(),
			Suggestion: "Check the command output above for details",
		}
	}

	return 0, nil
}

// buildEnvironment creates the environment slice for the child process.
// Sealed values stay encrypted until this point and the returned slice is
// the only plaintext copy the parent holds.
func (e *Executor) buildEnvironment(options ExecOptions) ([]string, error) {
	envMap := make(map[string]string)
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}

	inject := func(key, value string) {
		if options.KeepExisting {
			if _, exists := envMap[key]; exists {
				return
			}
		}
		envMap[key] = value
	}

	for key, value := range options.Environment {
		inject(key, value)
	}

	for key, sealed := range options.Sealed {
		err := sealed.Reveal(func(plaintext []byte) error {
			inject(key, string(plaintext))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("revealing %s: %w", key, err)
		}
	}

	result := make([]string, 0, len(envMap))
	for key, value := range envMap {
		result = append(result, fmt.Sprintf("%s=%s", key, value))
	}

	// Sort for consistent ordering (helps with debugging)
	sort.Strings(result)

	return result, nil
}

// printEnvironment displays the injected variables. Static values are
// masked; sealed values are never decrypted for display.
func (e *Executor) printEnvironment(options ExecOptions) {
	total := len(options.Environment) + len(options.Sealed)
	if total == 0 {
		fmt.Println("No environment variables injected")
		return
	}

	fmt.Printf("Injecting %d environment variables:\n", total)

	keys := make([]string, 0, total)
	for key := range options.Environment {
		keys = append(keys, key)
	}
	for key := range options.Sealed {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if sealed, ok := options.Sealed[key]; ok {
			fmt.Printf("  %s=(sealed, %d bytes)\n", key, sealed.Size())
			continue
		}
		fmt.Printf("  %s=%s\n", key, maskValue(options.Environment[key]))
	}
	fmt.Println()
}

// maskValue masks a secret value for display
func maskValue(value string) string {
	if len(value) == 0 {
		return "(empty)"
	}

	// Show nothing but length for very short values
	if len(value) <= 3 {
		return strings.Repeat("*", len(value))
	}

	// Show first and last characters for short values
	if len(value) <= 8 {
		return value[:1] + strings.Repeat("*", len(value)-2) + value[len(value)-1:]
	}

	// For long values, show first 3 and last 2 with asterisks in between
	return value[:3] + strings.Repeat("*", 8) + value[len(value)-2:]
}

// ValidateCommand checks if a command is safe and accessible
func ValidateCommand(command []string) error {
	if len(command) == 0 {
		return mcerrors.UserError{
			Message:    "No command specified",
			Suggestion: "Provide a command after -- (e.g., memclear exec -- terraform apply)",
		}
	}

	cmdName := command[0]

	if _, err := exec.LookPath(cmdName); err != nil {
		return mcerrors.WrapCommandNotFound(cmdName, err)
	}

	// Basic safety net, not a sandbox.
	dangerousCommands := []string{
		"rm", "rmdir", "del", "format", "fdisk",
		"dd", "mkfs", "parted", "shutdown", "reboot",
	}

	for _, dangerous := range dangerousCommands {
		if cmdName == dangerous || strings.HasSuffix(cmdName, "/"+dangerous) {
			return mcerrors.UserError{
				Message:    fmt.Sprintf("Potentially dangerous command '%s'", cmdName),
				Suggestion: "Use this command with extreme caution or consider safer alternatives",
			}
		}
	}

	return nil
}
