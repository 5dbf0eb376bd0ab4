// Package ingest loads paper text from disk. Plain-text formats are read
// directly; binary formats are rejected with a pointer to convert first.
package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// textExtensions are the formats read as-is.
var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".tex":      true,
	".rst":      true,
}

// Paper is one loaded document.
type Paper struct {
	Path string
	Text string
}

// Load reads one paper file. PDFs and other binary formats are rejected;
// the caller is expected to convert to text or markdown first.
func Load(path string) (*Paper, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		return nil, fmt.Errorf("ingest: %s: PDF input is not supported, convert to text or markdown first", path)
	}
	if !textExtensions[ext] {
		return nil, fmt.Errorf("ingest: %s: unsupported format %q (supported: %s)", path, ext, supportedList())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("ingest: %s: not valid UTF-8 text", path)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("ingest: %s: file is empty", path)
	}
	return &Paper{Path: path, Text: text}, nil
}

// FindPapers walks root and returns the loadable paper paths, sorted.
// Hidden directories are skipped.
func FindPapers(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if textExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: walk %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func supportedList() string {
	exts := make([]string, 0, len(textExtensions))
	for ext := range textExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
