package catalog

import (
	"fmt"
	"strings"
)

// Issue is a single catalog validation failure with a stable code.
type Issue struct {
	Code    string
	Message string
}

// ConfigError aggregates every structural problem found while building a
// registry. It is fatal: a catalog that fails validation never reaches
// the pipeline.
type ConfigError struct {
	Issues []Issue
}

func (e *ConfigError) Error() string {
	switch len(e.Issues) {
	case 0:
		return "catalog: validation failed"
	case 1:
		return "catalog: " + e.Issues[0].Message
	}
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Message
	}
	return fmt.Sprintf("catalog: %d validation errors: %s", len(e.Issues), strings.Join(msgs, "; "))
}

// HasCode reports whether any captured issue carries the given code.
func (e *ConfigError) HasCode(code string) bool {
	for _, issue := range e.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}
