package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	mcerrors "github.com/systmms/memclear/internal/errors"
	"github.com/systmms/memclear/internal/logging"
)

// DefaultPath is the config file looked up in the working directory when
// --config is not given.
const DefaultPath = ".memclear.yaml"

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	Definition     *Definition
}

// Definition represents the .memclear.yaml structure
type Definition struct {
	Version int          `yaml:"version"`
	Exec    ExecConfig   `yaml:"exec,omitempty"`
	Shred   ShredConfig  `yaml:"shred,omitempty"`
	Doctor  DoctorConfig `yaml:"doctor,omitempty"`
}

// ExecConfig holds defaults for the exec command
type ExecConfig struct {
	// EnvFile is sealed into memory and injected into the child process.
	EnvFile string `yaml:"env_file,omitempty"`
	// ShredAfter removes the env file after a successful run.
	ShredAfter bool `yaml:"shred_after,omitempty"`
	// Timeout bounds the child process, as a Go duration string.
	Timeout string `yaml:"timeout,omitempty"`
	// MetricsListen enables the Prometheus endpoint when non-empty.
	MetricsListen string `yaml:"metrics_listen,omitempty"`
	// Mask lists additional values to redact from forwarded output.
	Mask []string `yaml:"mask,omitempty"`
	// Env adds static variables on top of the sealed env file.
	Env map[string]string `yaml:"env,omitempty"`
}

// ShredConfig holds defaults for the shred command
type ShredConfig struct {
	Passes int   `yaml:"passes,omitempty"`
	Remove *bool `yaml:"remove,omitempty"`
}

// DoctorConfig holds defaults for the doctor command
type DoctorConfig struct {
	Verbose bool `yaml:"verbose,omitempty"`
}

// DefaultDefinition returns the configuration used when no file exists.
func DefaultDefinition() *Definition {
	return &Definition{Version: 0}
}

// Load reads and parses the .memclear.yaml file. A missing file is not an
// error; every setting has a flag or a default, so the tool runs unconfigured.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			if c.Logger != nil {
				c.Logger.Debug("no config at %s, using defaults", c.Path)
			}
			c.Definition = DefaultDefinition()
			return nil
		}
		return mcerrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	// Validate the raw document before decoding so unknown keys and type
	// mismatches are reported against what the user actually wrote.
	if err := validateDocument(data); err != nil {
		return err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return mcerrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	if def.Version != 0 {
		return mcerrors.ConfigError{
			Field:      "version",
			Value:      def.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 0' at the top of your .memclear.yaml file",
		}
	}

	if def.Exec.Timeout != "" {
		if _, err := time.ParseDuration(def.Exec.Timeout); err != nil {
			return mcerrors.ConfigError{
				Field:      "exec.timeout",
				Value:      def.Exec.Timeout,
				Message:    "invalid duration",
				Suggestion: "Use a Go duration like '30s' or '2m'",
			}
		}
	}

	c.Definition = &def
	return nil
}

// ExecTimeout returns the configured child-process timeout, or 0 for none.
// Load has already rejected unparseable values.
func (d *Definition) ExecTimeout() time.Duration {
	if d.Exec.Timeout == "" {
		return 0
	}
	timeout, err := time.ParseDuration(d.Exec.Timeout)
	if err != nil {
		return 0
	}
	return timeout
}

// EffectivePasses returns the shred pass count, defaulting to 3.
func (s ShredConfig) EffectivePasses() int {
	if s.Passes <= 0 {
		return 3
	}
	return s.Passes
}

// ShouldRemove reports whether shred unlinks the file afterwards.
// Defaults to true.
func (s ShredConfig) ShouldRemove() bool {
	if s.Remove == nil {
		return true
	}
	return *s.Remove
}

// MaskValues returns the configured mask list plus any extra values,
// dropping empties.
func (d *Definition) MaskValues(extra ...string) []string {
	var out []string
	for _, v := range d.Exec.Mask {
		if v != "" {
			out = append(out, v)
		}
	}
	for _, v := range extra {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Describe returns a short human summary for doctor output.
func (d *Definition) Describe() string {
	summary := "defaults"
	if d.Exec.EnvFile != "" || len(d.Exec.Env) > 0 || d.Exec.Timeout != "" {
		summary = fmt.Sprintf("exec configured (env_file=%q, %d static vars)",
			d.Exec.EnvFile, len(d.Exec.Env))
	}
	return summary
}
