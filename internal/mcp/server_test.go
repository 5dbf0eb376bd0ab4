package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"deepread/internal/catalog"
	"deepread/internal/llm"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default: %v", err)
	}
	return NewServer(reg, llm.NewMock())
}

func TestListTasks(t *testing.T) {
	srv := newTestServer(t)

	_, all, err := srv.handleListTasks(context.Background(), nil, listTasksInput{})
	if err != nil {
		t.Fatalf("list_tasks: %v", err)
	}
	if len(all.Tasks) != srv.Registry.Len() {
		t.Errorf("got %d tasks, want %d", len(all.Tasks), srv.Registry.Len())
	}

	_, general, err := srv.handleListTasks(context.Background(), nil, listTasksInput{Domain: "general"})
	if err != nil {
		t.Fatalf("list_tasks general: %v", err)
	}
	if len(general.Tasks) >= len(all.Tasks) {
		t.Errorf("general filter did not narrow the list: %d vs %d", len(general.Tasks), len(all.Tasks))
	}
	for _, task := range general.Tasks {
		if task.Domains[0] != catalog.DomainAll {
			t.Errorf("task %s leaked into the general domain (domains %v)", task.ID, task.Domains)
		}
	}
}

func TestShowPlan(t *testing.T) {
	srv := newTestServer(t)

	_, out, err := srv.handleShowPlan(context.Background(), nil, showPlanInput{Domain: "rf_ic"})
	if err != nil {
		t.Fatalf("show_plan: %v", err)
	}
	if out.Total == 0 || len(out.Layers) == 0 {
		t.Fatalf("empty plan: %+v", out)
	}

	if _, _, err := srv.handleShowPlan(context.Background(), nil, showPlanInput{}); err == nil {
		t.Error("expected error for missing domain")
	}
}

func TestAnalyzePaper(t *testing.T) {
	srv := newTestServer(t)

	path := filepath.Join(t.TempDir(), "paper.md")
	if err := os.WriteFile(path, []byte("# A Paper\n\nSome body."), 0644); err != nil {
		t.Fatal(err)
	}

	_, out, err := srv.handleAnalyzePaper(context.Background(), nil, analyzePaperInput{Path: path, Domain: "general"})
	if err != nil {
		t.Fatalf("analyze_paper: %v", err)
	}
	if out.Domain != "general" {
		t.Errorf("domain = %q", out.Domain)
	}
	if !strings.Contains(out.Report, "[mock") {
		t.Errorf("report does not carry mock output:\n%s", out.Report)
	}
	for id, status := range out.TaskStatus {
		if status != "success" {
			t.Errorf("task %s status = %s", id, status)
		}
	}
}

func TestAnalyzePaper_BadInput(t *testing.T) {
	srv := newTestServer(t)

	if _, _, err := srv.handleAnalyzePaper(context.Background(), nil, analyzePaperInput{}); err == nil {
		t.Error("expected error for missing path")
	}
	if _, _, err := srv.handleAnalyzePaper(context.Background(), nil, analyzePaperInput{Path: "nope.pdf"}); err == nil {
		t.Error("expected error for PDF input")
	}
}
