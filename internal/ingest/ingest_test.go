package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.md")
	writeFile(t, path, "  # A Paper\n\nbody text\n")

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Text != "# A Paper\n\nbody text" {
		t.Errorf("text = %q", p.Text)
	}
	if p.Path != path {
		t.Errorf("path = %q", p.Path)
	}
}

func TestLoad_RejectsPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.pdf")
	writeFile(t, path, "%PDF-1.7")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for PDF input")
	}
	if !strings.Contains(err.Error(), "convert to text or markdown") {
		t.Errorf("error = %v, want conversion hint", err)
	}
}

func TestLoad_RejectsUnknownAndEmpty(t *testing.T) {
	dir := t.TempDir()

	docx := filepath.Join(dir, "paper.docx")
	writeFile(t, docx, "zip bytes")
	if _, err := Load(docx); err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("docx error = %v", err)
	}

	empty := filepath.Join(dir, "empty.txt")
	writeFile(t, empty, "   \n")
	if _, err := Load(empty); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("empty error = %v", err)
	}
}

func TestFindPapers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.md"), "b")
	writeFile(t, filepath.Join(dir, "sub", "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "skip.pdf"), "%PDF")
	writeFile(t, filepath.Join(dir, ".hidden", "c.md"), "c")

	got, err := FindPapers(dir)
	if err != nil {
		t.Fatalf("FindPapers: %v", err)
	}
	want := []string{
		filepath.Join(dir, "b.md"),
		filepath.Join(dir, "sub", "a.txt"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}
