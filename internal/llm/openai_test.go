package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"deepread/internal/pipeline"
)

func testProvider(url string, maxRetries int) *OpenAI {
	return &OpenAI{
		apiKey:     "test-key",
		model:      "test-model",
		url:        url,
		client:     http.DefaultClient,
		timeout:    5 * time.Second,
		maxRetries: maxRetries,
	}
}

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatResponse(content string) string {
	quoted, _ := json.Marshal(content)
	return `{"choices":[{"message":{"content":` + string(quoted) + `}}]}`
}

func TestGenerate_ComposesMessages(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization header = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(chatResponse("  the answer  ")))
	}))
	defer srv.Close()

	o := testProvider(srv.URL, 0)
	out, err := o.Generate(context.Background(), pipeline.Request{
		TaskID:   "method",
		Prompt:   "describe the method",
		System:   "you are an analyst",
		Document: "paper body",
		Context:  pipeline.Context{"zeta": "late finding", "alpha": "early finding"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "the answer" {
		t.Errorf("output = %q", out)
	}

	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if got.Messages[0].Content != "you are an analyst" {
		t.Errorf("system message = %q", got.Messages[0].Content)
	}
	user := got.Messages[1].Content
	if !strings.Contains(user, "paper body") || !strings.Contains(user, "describe the method") {
		t.Errorf("user message missing document or prompt:\n%s", user)
	}
	// Context sections render in sorted id order.
	if a, z := strings.Index(user, "### alpha"), strings.Index(user, "### zeta"); a < 0 || z < 0 || a > z {
		t.Errorf("context sections missing or unsorted:\n%s", user)
	}
}

func TestGenerate_RetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(chatResponse("recovered")))
	}))
	defer srv.Close()

	o := testProvider(srv.URL, 2)
	out, err := o.Generate(context.Background(), pipeline.Request{TaskID: "t", Prompt: "p", Document: "d"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "recovered" || attempts != 3 {
		t.Errorf("out = %q after %d attempts", out, attempts)
	}
}

func TestGenerate_ExhaustedRetriesAreTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	o := testProvider(srv.URL, 1)
	_, err := o.Generate(context.Background(), pipeline.Request{TaskID: "t", Prompt: "p"})
	if !pipeline.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestGenerate_UnauthorizedIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	o := testProvider(srv.URL, 2)
	_, err := o.Generate(context.Background(), pipeline.Request{TaskID: "t", Prompt: "p"})
	if !pipeline.IsTransport(err) {
		t.Fatalf("expected transport error for 401, got %v", err)
	}
}

func TestGenerate_BadRequestIsOrdinaryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"context length exceeded"}`))
	}))
	defer srv.Close()

	o := testProvider(srv.URL, 0)
	_, err := o.Generate(context.Background(), pipeline.Request{TaskID: "t", Prompt: "p"})
	if err == nil {
		t.Fatal("expected error")
	}
	if pipeline.IsTransport(err) {
		t.Errorf("a 400 must stay a per-task failure, got transport: %v", err)
	}
}

func TestGenerate_ConnectionRefusedIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens here anymore

	o := testProvider(srv.URL, 0)
	_, err := o.Generate(context.Background(), pipeline.Request{TaskID: "t", Prompt: "p"})
	if !pipeline.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestGenerate_EmptyChoicesIsOrdinaryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	o := testProvider(srv.URL, 0)
	_, err := o.Generate(context.Background(), pipeline.Request{TaskID: "t", Prompt: "p"})
	if err == nil || pipeline.IsTransport(err) {
		t.Fatalf("want ordinary error for empty choices, got %v", err)
	}
}

func TestGenerate_CancelledContextIsNotTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	o := testProvider(srv.URL, 2)
	_, err := o.Generate(ctx, pipeline.Request{TaskID: "t", Prompt: "p"})
	if err == nil || pipeline.IsTransport(err) {
		t.Fatalf("cancellation must not look like a provider fault, got %v", err)
	}
}

func TestNew_Selection(t *testing.T) {
	if _, err := New("bogus"); err == nil {
		t.Error("expected error for unknown provider")
	}

	p, err := New("mock")
	if err != nil {
		t.Fatalf("New(mock): %v", err)
	}
	if p.Name() != "mock" {
		t.Errorf("name = %q", p.Name())
	}

	t.Setenv("DEEPREAD_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := New(""); err == nil {
		t.Error("openai without a key must fail")
	}

	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("DEEPREAD_MODEL", "")
	o, err := New("")
	if err != nil {
		t.Fatalf("New from env: %v", err)
	}
	if o.Name() != "openai" {
		t.Errorf("name = %q", o.Name())
	}
}

func TestMockGenerate(t *testing.T) {
	out, err := NewMock().Generate(context.Background(), pipeline.Request{
		TaskID:   "method",
		Document: "12345",
		Context:  pipeline.Context{"a": "x"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "[mock method] document of 5 chars, 1 context sections" {
		t.Errorf("output = %q", out)
	}
}
