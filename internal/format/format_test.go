package format_test

import (
	"strings"
	"testing"
	"time"

	"deepread/internal/format"
)

func TestTerminalTable(t *testing.T) {
	tb := format.NewTable(format.Terminal)
	tb.Header("ID", "Layer", "Weight")
	tb.Row("problem_domain", 0, 10)
	tb.Row("method_design", 1, 10)
	out := tb.String()

	for _, want := range []string{"ID", "problem_domain", "method_design"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "─") {
		t.Errorf("terminal style should use box-drawing characters:\n%s", out)
	}
}

func TestMarkdownTable(t *testing.T) {
	tb := format.NewTable(format.Markdown)
	tb.Header("Task", "Status")
	tb.Row("method_design", "success")
	out := tb.String()

	if !strings.Contains(out, "| Task |") && !strings.Contains(out, "| Task ") {
		t.Errorf("expected markdown pipes:\n%s", out)
	}
	if strings.Contains(out, "─") {
		t.Errorf("markdown output must not use box-drawing characters:\n%s", out)
	}
}

func TestTokens(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{950, "950"},
		{1500, "1.5K"},
		{2_400_000, "2.4M"},
	}
	for _, tc := range cases {
		if got := format.Tokens(tc.n); got != tc.want {
			t.Errorf("Tokens(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestDuration(t *testing.T) {
	if got := format.Duration(45 * time.Second); got != "45s" {
		t.Errorf("Duration = %q", got)
	}
	if got := format.Duration(125 * time.Second); got != "2m 5s" {
		t.Errorf("Duration = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := format.Truncate("short", 10); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
	if got := format.Truncate("a longer description", 10); got != "a longe..." {
		t.Errorf("Truncate = %q", got)
	}
}
