package kobold

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mantisproject/mantis/internal/core/domain"
)

func testPrompt() domain.Prompt {
	return domain.Prompt{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: "system rules"},
			{Role: domain.RoleUser, Content: "Question: oil capacity?"},
		},
		MaxLength: 1000,
	}
}

func TestGenerateSendsChatMLAndParams(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"results":[{"text":"  5 quarts.  "}]}`))
	}))
	defer server.Close()

	client := New(server.URL, DefaultGenParams(), 5*time.Second)
	text, err := client.Generate(context.Background(), testPrompt())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "5 quarts." {
		t.Fatalf("expected trimmed text, got %q", text)
	}

	rendered, _ := payload["prompt"].(string)
	if !strings.Contains(rendered, "<|im_start|>system\nsystem rules<|im_end|>") {
		t.Fatalf("prompt missing system turn: %s", rendered)
	}
	if !strings.HasSuffix(rendered, "<|im_start|>assistant\n") {
		t.Fatalf("prompt does not leave assistant turn open: %s", rendered)
	}
	if got := payload["max_length"].(float64); got != 1000 {
		t.Fatalf("expected max_length 1000, got %v", got)
	}
	if got := payload["temperature"].(float64); got != 0.05 {
		t.Fatalf("expected temperature 0.05, got %v", got)
	}
	if _, ok := payload["stop_sequence"].([]any); !ok {
		t.Fatalf("expected stop_sequence list, got %T", payload["stop_sequence"])
	}
}

func TestGenerateEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := New(server.URL, DefaultGenParams(), 5*time.Second)
	if _, err := client.Generate(context.Background(), testPrompt()); err == nil {
		t.Fatalf("expected error for empty results")
	}
}

func TestGenerateHTTPErrorIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, DefaultGenParams(), 5*time.Second)
	_, err := client.Generate(context.Background(), testPrompt())
	if err == nil || !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("expected body in error, got %v", err)
	}
}

func TestGenerateConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := New(server.URL, DefaultGenParams(), 2*time.Second)
	_, err := client.Generate(context.Background(), testPrompt())
	if !domain.IsKind(err, domain.ErrGenerationUnavailable) {
		t.Fatalf("expected ErrGenerationUnavailable, got %v", err)
	}
}

func TestStatusReturnsModelName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/model" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"result":"koboldcpp/qwen2.5-7b"}`))
	}))
	defer server.Close()

	client := New(server.URL, DefaultGenParams(), 5*time.Second)
	model, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if model != "koboldcpp/qwen2.5-7b" {
		t.Fatalf("unexpected model name %q", model)
	}
}

func TestStatusUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := New(server.URL, DefaultGenParams(), 2*time.Second)
	if _, err := client.Status(context.Background()); !domain.IsKind(err, domain.ErrGenerationUnavailable) {
		t.Fatalf("expected ErrGenerationUnavailable, got %v", err)
	}
}
