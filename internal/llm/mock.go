package llm

import (
	"context"
	"fmt"

	"deepread/internal/pipeline"
)

// Mock is a deterministic offline provider for development and tests. It
// echoes enough of the request to make plan and context behavior visible
// in the rendered report.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Generate(_ context.Context, req pipeline.Request) (string, error) {
	return fmt.Sprintf("[mock %s] document of %d chars, %d context sections",
		req.TaskID, len(req.Document), len(req.Context)), nil
}
