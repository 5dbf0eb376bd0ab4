// Package keywords maintains a small canonical-keyword store so that
// near-duplicate keywords extracted from different papers ("low noise
// amplifier", "Low-Noise Amplifier.") collapse onto one canonical form.
// The store is a newline-separated file shared across runs.
package keywords

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultSimilarity is the minimum similarity ratio for treating a new
// keyword as a variant of an existing canonical form.
const DefaultSimilarity = 0.88

var spaceRun = regexp.MustCompile(`\s+`)

// Normalize lowercases a keyword, collapses whitespace, and strips
// trailing punctuation.
func Normalize(kw string) string {
	kw = spaceRun.ReplaceAllString(strings.TrimSpace(kw), " ")
	kw = strings.Trim(kw, ".,;:")
	return strings.ToLower(strings.TrimSpace(kw))
}

// similarity is 1 - normalized levenshtein distance over the longer string.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}

// Store is a file-backed keyword database.
type Store struct {
	Path       string
	Similarity float64 // 0 means DefaultSimilarity

	entries []string
}

// Open loads the store at path. A missing file yields an empty store;
// the file is created on the first Save.
func Open(path string) (*Store, error) {
	s := &Store{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("keywords: read %s: %w", path, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			s.entries = append(s.entries, line)
		}
	}
	return s, nil
}

// Entries returns the stored canonical keywords.
func (s *Store) Entries() []string {
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// match finds the existing canonical form closest to the normalized
// keyword, if any clears the similarity threshold.
func (s *Store) match(normalized string) (string, bool) {
	threshold := s.Similarity
	if threshold == 0 {
		threshold = DefaultSimilarity
	}
	best := ""
	bestScore := 0.0
	for _, existing := range s.entries {
		score := similarity(Normalize(existing), normalized)
		if score > bestScore {
			best, bestScore = existing, score
		}
	}
	if bestScore >= threshold {
		return best, true
	}
	return "", false
}

// Canonicalize maps extracted keywords onto canonical forms, adding
// genuinely new keywords to the store. The returned list preserves input
// order with duplicates removed.
func (s *Store) Canonicalize(extracted []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, kw := range extracted {
		norm := Normalize(kw)
		if norm == "" {
			continue
		}
		canonical, ok := s.match(norm)
		if !ok {
			canonical = strings.TrimSpace(kw)
			s.entries = append(s.entries, canonical)
		}
		if !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}
	return out
}

// Save writes the store back to disk, sorted case-insensitively.
func (s *Store) Save() error {
	entries := s.Entries()
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i]) < strings.ToLower(entries[j])
	})
	var b strings.Builder
	for _, kw := range entries {
		b.WriteString(kw)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(s.Path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("keywords: write %s: %w", s.Path, err)
	}
	return nil
}
