package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"deepread/internal/pipeline"
)

// Markdown renders the full report. Layout: YAML front matter, title,
// star rating, executive summary (when synthesized), one section per
// entry in plan order, and a usage footer.
func (r *Report) Markdown() string {
	var b strings.Builder

	if fmBlock := r.frontMatterBlock(); fmBlock != "" {
		b.WriteString(fmBlock)
		b.WriteString("\n")
	}

	title := r.Front.Title
	if title == "" {
		title = r.Paper
	}
	if title == "" {
		title = "Paper Analysis"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if r.Front.Stars > 0 {
		fmt.Fprintf(&b, "**Verdict:** %s %s\n\n",
			strings.Repeat("⭐", r.Front.Stars), r.Front.Recommendation)
	}

	if r.Summary != "" {
		b.WriteString("## Executive Summary\n\n")
		b.WriteString(strings.TrimSpace(r.Summary))
		b.WriteString("\n\n")
	}

	for _, e := range r.Entries {
		fmt.Fprintf(&b, "## %s\n\n", e.Description)
		if e.Status == pipeline.StatusSuccess {
			b.WriteString(strings.TrimSpace(e.Output))
		} else {
			fmt.Fprintf(&b, "_This analysis is unavailable: %s_", e.Err)
		}
		b.WriteString("\n\n")
	}

	if r.Usage.Calls > 0 {
		b.WriteString("---\n\n")
		fmt.Fprintf(&b, "_Domain: %s. Token usage: %s._\n", r.Domain, r.Usage.Summary())
	}

	return b.String()
}

func (r *Report) frontMatterBlock() string {
	if r.Front.isZero() {
		return ""
	}
	data, err := yaml.Marshal(r.Front)
	if err != nil {
		return ""
	}
	return "---\n" + string(data) + "---\n"
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Filename derives a filesystem-safe report name from the paper title
// (falling back to the source name) plus the generation timestamp.
func (r *Report) Filename() string {
	base := r.Front.Title
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(r.Paper), filepath.Ext(r.Paper))
	}
	if base == "" {
		base = "report"
	}
	base = unsafeFilename.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_")
	if len(base) > 80 {
		base = base[:80]
	}
	return fmt.Sprintf("%s.%s.md", base, r.Generated.Format("20060102-150405"))
}

// Save writes the rendered report into dir, creating it if needed, and
// returns the written path.
func (r *Report) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("report: create output dir: %w", err)
	}
	path := filepath.Join(dir, r.Filename())
	if err := os.WriteFile(path, []byte(r.Markdown()), 0644); err != nil {
		return "", fmt.Errorf("report: write %s: %w", path, err)
	}
	return path, nil
}
