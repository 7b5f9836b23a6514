package generator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func TestGenerateWritesStrippedDocument(t *testing.T) {
	var hit int32
	var body struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hit, 1)
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(completionResponse("```yaml\nopenapi: 3.0.3\n```"))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "out.yaml")
	client := &Client{BaseURL: srv.URL, APIKey: "sk-test", Model: "gpt-4o-mini"}
	res, err := Generate(client, Request{
		BaseURL:    "http://localhost:3000",
		Context:    "### app.py\n```\nx = 1\n```",
		OutputPath: out,
	}, nil)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	written, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(written) != "openapi: 3.0.3" {
		t.Fatalf("expected exactly the stripped document, got %q", written)
	}
	if res.Document != "openapi: 3.0.3" {
		t.Fatalf("unexpected result document %q", res.Document)
	}
	if res.Usage.TotalTokens != 150 {
		t.Fatalf("unexpected usage %+v", res.Usage)
	}
	if res.Cost <= 0 {
		t.Fatalf("expected positive cost, got %f", res.Cost)
	}
	if atomic.LoadInt32(&hit) != 1 {
		t.Fatalf("expected exactly 1 request, got %d", hit)
	}
	if len(body.Messages) != 2 || body.Messages[0].Role != "system" {
		t.Fatalf("unexpected messages %+v", body.Messages)
	}
	if !strings.Contains(body.Messages[1].Content, "http://localhost:3000") {
		t.Fatalf("expected user message to carry the base URL")
	}
	if !strings.Contains(body.Messages[1].Content, "### app.py") {
		t.Fatalf("expected user message to carry the context")
	}
}

func TestGenerateFailureWritesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "out.yaml")
	client := &Client{BaseURL: srv.URL, Model: "gpt-4o-mini"}
	_, err := Generate(client, Request{BaseURL: "http://localhost:3000", Context: "x", OutputPath: out}, nil)
	if err == nil {
		t.Fatalf("expected generation failure")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output file on failure")
	}
	if msg := ExplainError(err); !strings.Contains(msg, "credential") {
		t.Fatalf("expected credential classification, got %q", msg)
	}
}

func TestGenerateEmptyContext(t *testing.T) {
	client := &Client{BaseURL: "http://127.0.0.1:1", Model: "gpt-4o-mini"}
	if _, err := Generate(client, Request{OutputPath: "x.yaml"}, nil); err == nil {
		t.Fatalf("expected error for empty context")
	}
}
