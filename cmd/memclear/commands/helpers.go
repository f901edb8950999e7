package commands

import (
	"fmt"
	"strings"

	mcerrors "github.com/systmms/memclear/internal/errors"
)

// parseVarFlags turns repeated --var KEY=VALUE flags into a map
func parseVarFlags(vars []string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, nil
	}

	out := make(map[string]string, len(vars))
	for _, kv := range vars {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, mcerrors.UserError{
				Message:    fmt.Sprintf("Invalid variable %q", kv),
				Suggestion: "Use --var KEY=VALUE",
			}
		}
		out[key] = value
	}
	return out, nil
}

// formatBytes renders a byte count for doctor output
func formatBytes(n uint64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
