package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"deepread/internal/logging"
	"deepread/internal/plan"
	"deepread/internal/tokencount"
)

// Status of one task result.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Result is the outcome of one task invocation. Results are write-once:
// a task's entry is created exactly once per run and never overwritten.
type Result struct {
	TaskID  string
	Output  string
	Status  Status
	Err     string
	Elapsed time.Duration
}

// Executor runs a plan against a Generator, layer by layer. Tasks within
// a layer are independent by construction and run concurrently up to
// Parallel workers; a barrier separates layers so no task starts before
// every task of the previous layer has a result.
type Executor struct {
	Gen         Generator
	Parallel    int           // max concurrent generation calls per layer; <=0 means serial
	TaskTimeout time.Duration // per-task budget; 0 means no per-task deadline
	Usage       *tokencount.Usage
}

// Run executes every layer of the plan against the document. A single
// task's failure (including a per-task timeout) is absorbed into its
// Result and does not stop the run. A *TransportError from the generator
// aborts the remaining layers; the results accumulated so far are
// returned alongside the error for diagnostic reporting. Cancelling ctx
// lets the in-flight layer drain but starts no further layers.
func (e *Executor) Run(ctx context.Context, p *plan.Plan, document string, system string) (map[string]Result, error) {
	logger := logging.New("pipeline")
	limit := e.Parallel
	if limit <= 0 {
		limit = 1
	}

	results := make(map[string]Result, p.Size())
	var mu sync.Mutex

	for li, layer := range p.Layers {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("run cancelled before layer %d: %w", li, err)
		}

		// Snapshot of prior layers' results. Context building reads only
		// this copy, so same-layer writes never race with reads.
		prior := make(map[string]Result, len(results))
		for id, r := range results {
			prior[id] = r
		}

		logger.Info("layer start", "layer", li, "tasks", len(layer))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for _, id := range layer {
			task := p.Tasks[id]
			g.Go(func() error {
				taskCtx := gctx
				var cancel context.CancelFunc
				if e.TaskTimeout > 0 {
					taskCtx, cancel = context.WithTimeout(gctx, e.TaskTimeout)
					defer cancel()
				}

				req := Request{
					TaskID:   task.ID,
					Prompt:   task.Prompt,
					System:   system,
					Document: document,
					Context:  BuildContext(task, prior),
				}

				start := time.Now()
				out, err := e.Gen.Generate(taskCtx, req)
				elapsed := time.Since(start)

				res := Result{TaskID: task.ID, Elapsed: elapsed}
				switch {
				case err == nil:
					res.Status = StatusSuccess
					res.Output = out
					if e.Usage != nil {
						e.Usage.Record(task.Prompt+document, out)
					}
				case IsTransport(err) && gctx.Err() == nil:
					// Structural collaborator fault: record and abort the run.
					res.Status = StatusFailed
					res.Err = err.Error()
					res.Output = failurePlaceholder(task.ID, err)
					mu.Lock()
					results[task.ID] = res
					mu.Unlock()
					return err
				case errors.Is(err, context.DeadlineExceeded) && gctx.Err() == nil:
					res.Status = StatusFailed
					res.Err = "timed out"
					res.Output = failurePlaceholder(task.ID, errors.New("timed out"))
					logger.Warn("task timed out", "task", task.ID, "elapsed", elapsed)
				default:
					res.Status = StatusFailed
					res.Err = err.Error()
					res.Output = failurePlaceholder(task.ID, err)
					logger.Warn("task failed", "task", task.ID, "error", err)
				}

				mu.Lock()
				results[task.ID] = res
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			logger.Error("run aborted", "layer", li, "error", err)
			return results, fmt.Errorf("layer %d: %w", li, err)
		}
		logger.Info("layer complete", "layer", li)
	}

	return results, nil
}

// failurePlaceholder is the output stored for a failed task. It explains
// the failure without echoing collaborator error payloads verbatim into
// downstream prompts (those see the Unavailable marker instead).
func failurePlaceholder(taskID string, err error) string {
	return fmt.Sprintf("Analysis %q did not complete: %v", taskID, err)
}
