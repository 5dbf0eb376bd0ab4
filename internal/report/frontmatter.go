package report

import (
	"strings"

	"gopkg.in/yaml.v3"

	"deepread/internal/keywords"
	"deepread/internal/pipeline"
)

// FrontMatter is the YAML block at the top of a saved report. Fields come
// from the metadata task's output; Stars and Recommendation from the
// verdict task's wording. All fields are best-effort: a model that emits
// malformed metadata degrades to an empty block, never a failed report.
type FrontMatter struct {
	Title       string     `yaml:"title,omitempty"`
	Authors     stringList `yaml:"authors,omitempty"`
	Affiliation string     `yaml:"affiliation,omitempty"`
	Keywords    stringList `yaml:"keywords,omitempty"`
	Venue       string     `yaml:"venue,omitempty"`
	Year        int        `yaml:"year,omitempty"`
	DOI         string     `yaml:"doi,omitempty"`

	Stars          int    `yaml:"stars,omitempty"`
	Recommendation string `yaml:"recommendation,omitempty"`
}

func (f FrontMatter) isZero() bool {
	return f.Title == "" && len(f.Authors) == 0 && f.Affiliation == "" &&
		len(f.Keywords) == 0 && f.Venue == "" && f.Year == 0 && f.DOI == "" &&
		f.Stars == 0 && f.Recommendation == ""
}

// stringList accepts either a YAML sequence or a single scalar, since
// models render "authors" both ways.
type stringList []string

func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		if s = strings.TrimSpace(s); s != "" {
			*l = stringList{s}
		}
		return nil
	default:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = stringList(items)
		return nil
	}
}

func deriveFrontMatter(results map[string]pipeline.Result) FrontMatter {
	var fm FrontMatter
	if res, ok := results[taskMetadata]; ok && res.Status == pipeline.StatusSuccess {
		fm = parseMetadata(res.Output)
	}
	if res, ok := results[taskVerdict]; ok && res.Status == pipeline.StatusSuccess {
		fm.Stars, fm.Recommendation = rateVerdict(res.Output)
	}
	return fm
}

// parseMetadata decodes the metadata task's YAML output. Code fences and
// document markers around the block are tolerated; anything that still
// fails to parse yields an empty FrontMatter.
func parseMetadata(output string) FrontMatter {
	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(stripEnclosure(output)), &fm); err != nil {
		return FrontMatter{}
	}
	return fm
}

// stripEnclosure removes a surrounding markdown code fence and leading
// "---" document markers from a model-emitted YAML block.
func stripEnclosure(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		}
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "---\n")
	if i := strings.Index(s, "\n---"); i >= 0 {
		s = s[:i]
	}
	return s
}

// rateVerdict maps the verdict task's recommendation wording to a star
// rating. Longer phrases are checked first so "strongly recommended" and
// "not recommended" are not swallowed by the bare "recommended" match.
func rateVerdict(output string) (int, string) {
	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "strongly recommended"):
		return 5, "strongly recommended"
	case strings.Contains(lower, "not recommended"):
		return 1, "not recommended"
	case strings.Contains(lower, "recommended"):
		return 4, "recommended"
	case strings.Contains(lower, "average"):
		return 3, "average"
	case strings.Contains(lower, "cautious"):
		return 2, "cautious"
	}
	return 0, ""
}

// CanonicalizeKeywords rewrites the front matter keywords through the
// shared keyword store so variants across papers converge on one form.
func (r *Report) CanonicalizeKeywords(store *keywords.Store) {
	if store == nil || len(r.Front.Keywords) == 0 {
		return
	}
	r.Front.Keywords = store.Canonicalize(r.Front.Keywords)
}
