package config

import (
	"fmt"
	"strings"
)

// ConfigError aggregates configuration errors found at startup.
type ConfigError struct {
	Path   string
	Errors []string
}

func (e *ConfigError) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}

	parts := []string{"invalid configuration:"}
	if e.Path != "" {
		parts[0] = fmt.Sprintf("invalid configuration (%s):", e.Path)
	}
	for _, err := range e.Errors {
		parts = append(parts, fmt.Sprintf("  - %s", err))
	}
	return strings.Join(parts, "\n")
}

// HasErrors reports whether any validation errors were recorded.
func (e *ConfigError) HasErrors() bool {
	return len(e.Errors) > 0
}
