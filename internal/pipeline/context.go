package pipeline

import (
	"deepread/internal/catalog"
)

// Unavailable is the context marker stored in place of a failed
// dependency's output. Downstream tasks see the marker instead of raw
// failure text, so error content never leaks into a new generation
// request.
const Unavailable = "[analysis unavailable]"

// Context maps a direct dependency's task id to its output text. It is
// built fresh for each task invocation and never mutated afterwards.
type Context map[string]string

// BuildContext assembles the context for one task from the results of
// prior layers. Only direct dependencies contribute: layering enforces
// that ancestors run first, but a task receives transitive ancestor
// output only if it lists that ancestor as a dependency itself.
// Dependencies absent from results (excluded by domain filtering) are
// skipped; failed dependencies are marked Unavailable.
func BuildContext(task catalog.Task, results map[string]Result) Context {
	c := make(Context, len(task.DependsOn))
	for _, dep := range task.DependsOn {
		res, ok := results[dep]
		if !ok {
			continue
		}
		if res.Status == StatusFailed {
			c[dep] = Unavailable
			continue
		}
		c[dep] = res.Output
	}
	return c
}
