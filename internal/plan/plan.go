// Package plan turns the task catalog into a layered execution plan for
// one paper run: domain filtering selects the applicable tasks, then a
// deterministic topological layering orders them so that every task runs
// strictly after all of its selected dependencies.
package plan

import (
	"fmt"
	"sort"
	"strings"

	"deepread/internal/catalog"
)

// Plan is the resolved execution order for one run. Layer 0 holds tasks
// with no dependencies inside the selected set; layer k holds tasks whose
// selected dependencies all live in layers < k. Ids within a layer are
// sorted lexicographically, so two builds over the same selection are
// identical regardless of catalog iteration order.
type Plan struct {
	Domain string
	Tasks  map[string]catalog.Task
	Layers [][]string
}

// CycleError reports a dependency cycle among the selected tasks. It is
// fatal for the run and surfaces before any generation call is made.
type CycleError struct {
	Remaining []string // ids that could not be placed in any layer
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("plan: dependency cycle among tasks: %s", strings.Join(e.Remaining, ", "))
}

// Select returns the ids of catalog tasks applicable to the domain, in
// lexicographic order. Unknown or empty domain labels are not an error:
// they select only the all-domain tasks, so an unrecognized classifier
// output degrades to the generic analysis instead of crashing the run.
func Select(reg *catalog.Registry, domain string) []string {
	var ids []string
	for _, t := range reg.Tasks() {
		if t.AppliesTo(domain) {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Build computes the layered plan for the selected ids. Dependencies on
// tasks outside the selection (excluded by domain filtering) are treated
// as satisfied by absence: the dependent simply receives no context from
// them. A cycle inside the selection returns a *CycleError naming the
// unplaced tasks.
func Build(reg *catalog.Registry, domain string, selected []string) (*Plan, error) {
	inSelection := make(map[string]bool, len(selected))
	tasks := make(map[string]catalog.Task, len(selected))
	for _, id := range selected {
		t, ok := reg.Task(id)
		if !ok {
			return nil, fmt.Errorf("plan: selected task %q not in registry", id)
		}
		inSelection[id] = true
		tasks[id] = t
	}

	// Effective in-degree counts only dependencies inside the selection.
	indegree := make(map[string]int, len(selected))
	dependents := make(map[string][]string, len(selected))
	for id, t := range tasks {
		indegree[id] = 0
		for _, dep := range t.DependsOn {
			if inSelection[dep] {
				indegree[id]++
				dependents[dep] = append(dependents[dep], id)
			}
		}
	}

	var layers [][]string
	placed := 0
	for placed < len(tasks) {
		var layer []string
		for id, deg := range indegree {
			if deg == 0 {
				layer = append(layer, id)
			}
		}
		if len(layer) == 0 {
			var remaining []string
			for id := range indegree {
				remaining = append(remaining, id)
			}
			sort.Strings(remaining)
			return nil, &CycleError{Remaining: remaining}
		}
		sort.Strings(layer)

		for _, id := range layer {
			delete(indegree, id)
			for _, dep := range dependents[id] {
				indegree[dep]--
			}
		}
		placed += len(layer)
		layers = append(layers, layer)
	}

	return &Plan{Domain: domain, Tasks: tasks, Layers: layers}, nil
}

// LayerOf returns the layer index of a task id, or -1 if not planned.
func (p *Plan) LayerOf(id string) int {
	for i, layer := range p.Layers {
		for _, tid := range layer {
			if tid == id {
				return i
			}
		}
	}
	return -1
}

// Size returns the number of planned tasks.
func (p *Plan) Size() int {
	n := 0
	for _, layer := range p.Layers {
		n += len(layer)
	}
	return n
}
