package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"deepread/internal/catalog"
)

func TestBuildContext_DirectDepsOnly(t *testing.T) {
	// c depends on b which depends on a; a's output must not leak into
	// c's context unless c lists a directly.
	c := catalog.Task{ID: "c", DependsOn: []string{"b"}}
	results := map[string]Result{
		"a": {TaskID: "a", Status: StatusSuccess, Output: "root finding"},
		"b": {TaskID: "b", Status: StatusSuccess, Output: "middle finding"},
	}

	got := BuildContext(c, results)
	want := Context{"b": "middle finding"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("context mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildContext_FailedDepIsMarkedUnavailable(t *testing.T) {
	c := catalog.Task{ID: "c", DependsOn: []string{"a", "b"}}
	results := map[string]Result{
		"a": {TaskID: "a", Status: StatusFailed, Output: "Analysis \"a\" did not complete: boom", Err: "boom"},
		"b": {TaskID: "b", Status: StatusSuccess, Output: "fine"},
	}

	got := BuildContext(c, results)
	if got["a"] != Unavailable {
		t.Errorf("failed dep marker = %q, want %q", got["a"], Unavailable)
	}
	if got["b"] != "fine" {
		t.Errorf("successful dep output = %q, want %q", got["b"], "fine")
	}
}

func TestBuildContext_AbsentDepSkipped(t *testing.T) {
	// Dependency excluded by domain filtering: no entry at all, which is
	// distinct from an Unavailable marker.
	c := catalog.Task{ID: "c", DependsOn: []string{"excluded"}}
	got := BuildContext(c, map[string]Result{})
	if len(got) != 0 {
		t.Errorf("expected empty context, got %v", got)
	}
}
