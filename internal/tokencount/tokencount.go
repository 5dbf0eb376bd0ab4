// Package tokencount provides rough token estimation and per-run usage
// accounting for generation calls. The estimate is deliberately coarse
// (about four characters per token) — it exists for report bookkeeping
// and budget warnings, not billing.
package tokencount

import (
	"fmt"
	"sync"
)

// Estimate approximates the token count of a text.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	return len(text)/4 + 1
}

// Usage accumulates token counts across the generation calls of one run.
// Safe for concurrent use; the executor records from worker goroutines.
type Usage struct {
	mu     sync.Mutex
	calls  int
	input  int
	output int
}

// Record adds one interaction's input and output text to the totals.
func (u *Usage) Record(input, output string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	u.input += Estimate(input)
	u.output += Estimate(output)
}

// Stats is a snapshot of accumulated usage.
type Stats struct {
	Calls        int
	InputTokens  int
	OutputTokens int
}

// TotalTokens returns input plus output tokens.
func (s Stats) TotalTokens() int { return s.InputTokens + s.OutputTokens }

// Snapshot returns the current totals.
func (u *Usage) Snapshot() Stats {
	u.mu.Lock()
	defer u.mu.Unlock()
	return Stats{Calls: u.calls, InputTokens: u.input, OutputTokens: u.output}
}

// Summary renders a short human-readable usage line.
func (s Stats) Summary() string {
	return fmt.Sprintf("%d calls, %d input + %d output = %d tokens",
		s.Calls, s.InputTokens, s.OutputTokens, s.TotalTokens())
}
