// Package catalog holds the immutable registry of paper-analysis tasks.
// The registry is built once at startup from a YAML catalog (the embedded
// default or a user-supplied file) and validated before any run begins:
// duplicate ids, unknown dependency references, and self-dependencies are
// configuration bugs, not per-run errors.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// DomainAll is the sentinel domain tag: a task carrying it applies to
// every paper regardless of the classified domain.
const DomainAll = "all"

// Task is one named analysis unit. Tasks are value types and never
// mutated after the registry is built.
type Task struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description"`
	Weight      int      `yaml:"weight"`
	Domains     []string `yaml:"domains"`
	DependsOn   []string `yaml:"depends_on"`
	Prompt      string   `yaml:"prompt"`
}

// AppliesTo reports whether the task runs for the given domain label.
// A task tagged with DomainAll matches any label, including unknown ones.
func (t Task) AppliesTo(domain string) bool {
	for _, d := range t.Domains {
		if d == DomainAll || d == domain {
			return true
		}
	}
	return false
}

// Registry is the process-wide task catalog. Construct it with
// NewRegistry and pass it explicitly into the pipeline; there is no
// package-level singleton so tests can substitute alternate catalogs.
type Registry struct {
	tasks   map[string]Task
	ordered []string // ids sorted lexicographically

	systemPrompts map[string]string // domain -> system prompt ("" key = default)
}

// NewRegistry validates the task set and builds a Registry. All
// structural problems are aggregated into a single *ConfigError so a
// broken catalog reports every defect in one pass.
func NewRegistry(tasks []Task) (*Registry, error) {
	var issues []Issue

	byID := make(map[string]Task, len(tasks))
	for i, t := range tasks {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			issues = append(issues, Issue{
				Code:    "task_id_missing",
				Message: fmt.Sprintf("task at index %d has no id", i),
			})
			continue
		}
		if _, dup := byID[id]; dup {
			issues = append(issues, Issue{
				Code:    "task_id_duplicate",
				Message: fmt.Sprintf("duplicate task id %q", id),
			})
			continue
		}
		if len(t.Domains) == 0 {
			issues = append(issues, Issue{
				Code:    "task_domains_empty",
				Message: fmt.Sprintf("task %q declares no domains (use %q for domain-independent tasks)", id, DomainAll),
			})
		}
		byID[id] = t
	}

	for _, t := range byID {
		seen := make(map[string]bool, len(t.DependsOn))
		for _, dep := range t.DependsOn {
			if dep == t.ID {
				issues = append(issues, Issue{
					Code:    "dependency_self",
					Message: fmt.Sprintf("task %q depends on itself", t.ID),
				})
				continue
			}
			if _, ok := byID[dep]; !ok {
				issues = append(issues, Issue{
					Code:    "dependency_unknown",
					Message: fmt.Sprintf("task %q depends on unknown task %q", t.ID, dep),
				})
			}
			if seen[dep] {
				issues = append(issues, Issue{
					Code:    "dependency_duplicate",
					Message: fmt.Sprintf("task %q lists dependency %q twice", t.ID, dep),
				})
			}
			seen[dep] = true
		}
	}

	if len(issues) > 0 {
		sort.Slice(issues, func(i, j int) bool {
			if issues[i].Code == issues[j].Code {
				return issues[i].Message < issues[j].Message
			}
			return issues[i].Code < issues[j].Code
		})
		return nil, &ConfigError{Issues: issues}
	}

	ordered := make([]string, 0, len(byID))
	for id := range byID {
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)

	return &Registry{
		tasks:         byID,
		ordered:       ordered,
		systemPrompts: map[string]string{},
	}, nil
}

// Len returns the number of tasks in the catalog.
func (r *Registry) Len() int { return len(r.ordered) }

// IDs returns all task ids in lexicographic order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Task looks up a task by id.
func (r *Registry) Task(id string) (Task, bool) {
	t, ok := r.tasks[id]
	return t, ok
}

// Tasks returns all tasks in lexicographic id order.
func (r *Registry) Tasks() []Task {
	out := make([]Task, 0, len(r.ordered))
	for _, id := range r.ordered {
		out = append(out, r.tasks[id])
	}
	return out
}

// SystemPrompt returns the analyst system prompt for a domain, falling
// back to the catalog default when the domain has no dedicated prompt.
func (r *Registry) SystemPrompt(domain string) string {
	if p, ok := r.systemPrompts[domain]; ok && p != "" {
		return p
	}
	return r.systemPrompts[""]
}
