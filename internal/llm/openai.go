package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"deepread/internal/pipeline"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

const (
	defaultRequestTimeout = 120 * time.Second
	defaultMaxRetries     = 2
	maxMaxRetries         = 5
	retryBaseDelay        = 500 * time.Millisecond
)

// OpenAI talks to an OpenAI-compatible chat completions endpoint. Base
// URL override makes it work against local gateways exposing the same
// API shape.
type OpenAI struct {
	apiKey     string
	model      string
	url        string
	client     *http.Client
	timeout    time.Duration
	maxRetries int
}

// NewOpenAIFromEnv builds the provider from environment configuration:
// OPENAI_API_KEY (required), DEEPREAD_MODEL, OPENAI_BASE_URL,
// DEEPREAD_LLM_TIMEOUT_MS, DEEPREAD_LLM_MAX_RETRIES.
func NewOpenAIFromEnv() (*OpenAI, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("llm: OPENAI_API_KEY is required for the openai provider")
	}

	model := strings.TrimSpace(os.Getenv("DEEPREAD_MODEL"))
	if model == "" {
		model = "gpt-4o-mini"
	}

	url := defaultOpenAIURL
	if base := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); base != "" {
		url = strings.TrimSuffix(base, "/") + "/chat/completions"
	}

	timeout := defaultRequestTimeout
	if raw := strings.TrimSpace(os.Getenv("DEEPREAD_LLM_TIMEOUT_MS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Millisecond
		}
	}

	maxRetries := defaultMaxRetries
	if raw := strings.TrimSpace(os.Getenv("DEEPREAD_LLM_MAX_RETRIES")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}
	if maxRetries > maxMaxRetries {
		maxRetries = maxMaxRetries
	}

	return &OpenAI{
		apiKey:     apiKey,
		model:      model,
		url:        url,
		client:     http.DefaultClient,
		timeout:    timeout,
		maxRetries: maxRetries,
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

// Generate sends one chat completion request. Connection failures, 401s,
// and retryable statuses that survive all retries come back as
// *pipeline.TransportError so the executor aborts instead of burning the
// rest of the plan against a dead endpoint. Malformed but reachable
// responses are ordinary task failures.
func (o *OpenAI) Generate(ctx context.Context, req pipeline.Request) (string, error) {
	messages := []map[string]string{}
	if req.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": userContent(req)})

	body, err := json.Marshal(map[string]any{
		"model":    o.model,
		"messages": messages,
	})
	if err != nil {
		return "", err
	}

	totalAttempts := o.maxRetries + 1
	for attempt := 0; attempt < totalAttempts; attempt++ {
		out, err := o.once(ctx, body)
		if err == nil {
			return out, nil
		}
		// Caller-side cancellation or per-task deadline is not a provider
		// fault; hand the context error back untouched.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if retryable(err) && attempt < totalAttempts-1 {
			if waitErr := backoff(ctx, attempt); waitErr != nil {
				return "", waitErr
			}
			continue
		}
		return "", classify(err)
	}
	return "", &pipeline.TransportError{Op: "chat", Err: errors.New("request failed after retries")}
}

func (o *OpenAI) once(ctx context.Context, body []byte) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+o.apiKey)

	response, err := o.client.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(response.Body, 4096))
		return "", &httpError{statusCode: response.StatusCode, message: strings.TrimSpace(string(payload))}
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// userContent renders one chat message from the request: accumulated
// findings first, then the paper, then the task instruction.
func userContent(req pipeline.Request) string {
	var b strings.Builder
	if len(req.Context) > 0 {
		ids := make([]string, 0, len(req.Context))
		for id := range req.Context {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		b.WriteString("Findings from earlier analyses of this paper:\n\n")
		for _, id := range ids {
			fmt.Fprintf(&b, "### %s\n%s\n\n", id, req.Context[id])
		}
	}
	b.WriteString("Paper:\n\n")
	b.WriteString(req.Document)
	b.WriteString("\n\nTask:\n")
	b.WriteString(req.Prompt)
	return b.String()
}

// backoff waits before the next retry, doubling the base delay per
// attempt, and returns the context error if the caller gives up first.
func backoff(ctx context.Context, attempt int) error {
	delay := retryBaseDelay << attempt
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type httpError struct {
	statusCode int
	message    string
}

func (e *httpError) Error() string {
	if e.message == "" {
		return fmt.Sprintf("openai request failed with status %d", e.statusCode)
	}
	return fmt.Sprintf("openai request failed with status %d: %s", e.statusCode, e.message)
}

func retryable(err error) bool {
	var he *httpError
	if errors.As(err, &he) {
		return he.statusCode == http.StatusTooManyRequests || he.statusCode >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, token := range []string{"connection refused", "connection reset", "broken pipe", "eof", "no such host"} {
		if strings.Contains(msg, token) {
			return true
		}
	}
	return false
}

// classify decides whether a final error is structural. Auth failures,
// dead endpoints, and retry-exhausted statuses mean every remaining task
// would fail the same way.
func classify(err error) error {
	var he *httpError
	if errors.As(err, &he) {
		switch {
		case he.statusCode == http.StatusUnauthorized || he.statusCode == http.StatusForbidden:
			return &pipeline.TransportError{Op: "auth", Err: he}
		case he.statusCode == http.StatusTooManyRequests || he.statusCode >= 500:
			return &pipeline.TransportError{Op: "chat", Err: he}
		default:
			return he
		}
	}
	if retryable(err) {
		return &pipeline.TransportError{Op: "chat", Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &pipeline.TransportError{Op: "dial", Err: err}
	}
	return err
}
