package report

import (
	"context"
	"fmt"
	"strings"

	"deepread/internal/pipeline"
	"deepread/internal/tokencount"
)

const summaryPrompt = "Write a concise executive summary (at most 200 words) of this paper " +
	"based on the analysis sections below. Lead with what the paper contributes and whether " +
	"it is worth reading; do not repeat section headings."

// Synthesize asks the generator for an executive summary over the
// successful sections and stores it on the report. The summary is an
// optional garnish: callers treat an error here as a warning, not a
// failed run.
func Synthesize(ctx context.Context, gen pipeline.Generator, r *Report, usage *tokencount.Usage) error {
	sections := r.Succeeded()
	if len(sections) == 0 {
		return fmt.Errorf("report: no successful sections to summarize")
	}

	var doc strings.Builder
	for _, e := range sections {
		fmt.Fprintf(&doc, "### %s\n%s\n\n", e.Description, strings.TrimSpace(e.Output))
	}

	out, err := gen.Generate(ctx, pipeline.Request{
		TaskID:   "executive_summary",
		Prompt:   summaryPrompt,
		Document: doc.String(),
	})
	if err != nil {
		return fmt.Errorf("report: synthesize summary: %w", err)
	}
	if usage != nil {
		usage.Record(summaryPrompt+doc.String(), out)
	}
	r.Summary = strings.TrimSpace(out)
	return nil
}
