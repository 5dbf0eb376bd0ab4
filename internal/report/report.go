// Package report assembles executed task results into a single ordered
// markdown report: front matter derived from the metadata task, one
// section per analysis, and a token usage footer.
package report

import (
	"sort"
	"time"

	"deepread/internal/pipeline"
	"deepread/internal/plan"
	"deepread/internal/tokencount"
)

// Task ids with report-level meaning. The metadata task emits the YAML
// front matter fields; the verdict task's wording drives the star rating.
const (
	taskMetadata = "metadata_extraction"
	taskVerdict  = "worth_reading_judgment"
)

// Entry is one analysis section of the report.
type Entry struct {
	TaskID      string
	Description string
	Layer       int
	Weight      int
	Output      string
	Status      pipeline.Status
	Err         string
}

// Report is the assembled analysis of one paper.
type Report struct {
	Paper     string // source path or display name
	Domain    string
	Generated time.Time
	Front     FrontMatter
	Summary   string // executive summary, filled by Synthesize
	Entries   []Entry
	Usage     tokencount.Stats
}

// Assemble builds the report from a plan and its execution results.
// Every planned task gets exactly one entry, ordered by layer, then
// weight, then id. A task with no result (the run aborted before its
// layer) appears as failed so the report still accounts for the full
// plan.
func Assemble(p *plan.Plan, results map[string]pipeline.Result) *Report {
	r := &Report{
		Domain:    p.Domain,
		Generated: time.Now(),
		Entries:   make([]Entry, 0, p.Size()),
	}

	for li, layer := range p.Layers {
		for _, id := range layer {
			task := p.Tasks[id]
			e := Entry{
				TaskID:      id,
				Description: task.Description,
				Layer:       li,
				Weight:      task.Weight,
			}
			if res, ok := results[id]; ok {
				e.Output = res.Output
				e.Status = res.Status
				e.Err = res.Err
			} else {
				e.Status = pipeline.StatusFailed
				e.Err = "not executed (run aborted)"
			}
			r.Entries = append(r.Entries, e)
		}
	}

	sort.SliceStable(r.Entries, func(i, j int) bool {
		a, b := r.Entries[i], r.Entries[j]
		if a.Layer != b.Layer {
			return a.Layer < b.Layer
		}
		if a.Weight != b.Weight {
			return a.Weight < b.Weight
		}
		return a.TaskID < b.TaskID
	})

	r.Front = deriveFrontMatter(results)
	return r
}

// Entry returns the entry for a task id, if present.
func (r *Report) Entry(taskID string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.TaskID == taskID {
			return e, true
		}
	}
	return Entry{}, false
}

// Succeeded returns the entries that completed successfully, in report order.
func (r *Report) Succeeded() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Status == pipeline.StatusSuccess {
			out = append(out, e)
		}
	}
	return out
}
