// Package pipeline executes a layered analysis plan against a generation
// collaborator: it builds each task's context from the outputs of its
// direct dependencies, dispatches layer by layer with a barrier between
// layers, and collects per-task results with partial-failure semantics.
package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// Request carries everything the generation collaborator needs for one
// task invocation. The prompt is opaque to the pipeline; the provider
// decides how to compose document, context, and prompt into messages.
type Request struct {
	TaskID   string
	Prompt   string
	System   string
	Document string
	Context  Context
}

// Generator is the external text-generation collaborator. An error that
// wraps *TransportError means the collaborator itself is unreachable or
// misconfigured and the run must stop; any other error is an ordinary
// per-task generation failure.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// TransportError marks a structural collaborator failure (connection
// refused, bad credentials, malformed endpoint) as opposed to a poor or
// failed generation. It aborts the remaining layers of a run.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("pipeline: transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err wraps a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
