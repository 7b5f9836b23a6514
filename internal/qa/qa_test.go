package qa

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yourorg/specgen/internal/generator"
	"github.com/yourorg/specgen/pkg/types"
)

func completionResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
		"usage": map[string]int{"prompt_tokens": 50, "completion_tokens": 20, "total_tokens": 70},
	}
}

func askScript(answers ...string) AskFunc {
	i := 0
	return func() (string, error) {
		if i >= len(answers) {
			return "", errors.New("script exhausted")
		}
		a := answers[i]
		i++
		return a, nil
	}
}

func newTestSession(t *testing.T, handler http.HandlerFunc) (*Session, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := &generator.Client{BaseURL: srv.URL, APIKey: "sk-test", Model: "gpt-4o-mini", MaxTokens: 1024}
	out := &bytes.Buffer{}
	return New(client, "### app.py\n```\nx = 1\n```", "openapi: 3.0.3", out), out
}

func TestRunDoneMarkerEndsWithoutRequest(t *testing.T) {
	var hit int32
	s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hit, 1)
	})

	if err := s.Run(askScript("DoNe")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if atomic.LoadInt32(&hit) != 0 {
		t.Fatalf("expected no requests, got %d", hit)
	}
	if len(s.History()) != 1 {
		t.Fatalf("history = %d entries, want the seed only", len(s.History()))
	}
}

func TestRunEmptyInputEnds(t *testing.T) {
	var hit int32
	s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hit, 1)
	})

	if err := s.Run(askScript("   ")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if atomic.LoadInt32(&hit) != 0 {
		t.Fatalf("expected no requests, got %d", hit)
	}
}

func TestRunAskErrorEndsCleanly(t *testing.T) {
	var hit int32
	s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hit, 1)
	})

	err := s.Run(func() (string, error) { return "", errors.New("prompt closed") })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if atomic.LoadInt32(&hit) != 0 {
		t.Fatalf("expected no requests, got %d", hit)
	}
}

func TestRunAppendsTurns(t *testing.T) {
	var hit int32
	var lastRequest struct {
		Messages []types.Message `json:"messages"`
	}
	s, out := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hit, 1)
		if err := json.NewDecoder(r.Body).Decode(&lastRequest); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(completionResponse("GET /users lists users."))
	})

	if err := s.Run(askScript("What does /users return?", "done")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if atomic.LoadInt32(&hit) != 1 {
		t.Fatalf("expected 1 request, got %d", hit)
	}

	hist := s.History()
	if len(hist) != 3 {
		t.Fatalf("history = %d entries, want 3", len(hist))
	}
	if hist[0].Role != "system" || hist[1].Role != "user" || hist[2].Role != "assistant" {
		t.Fatalf("unexpected roles in %+v", hist)
	}
	if !strings.Contains(hist[0].Content, "openapi: 3.0.3") {
		t.Fatalf("seed lacks the generated document: %q", hist[0].Content)
	}
	if hist[2].Content != "GET /users lists users." {
		t.Fatalf("unexpected answer %q", hist[2].Content)
	}
	if len(lastRequest.Messages) != 2 {
		t.Fatalf("request carried %d messages, want system+user", len(lastRequest.Messages))
	}
	if !strings.Contains(out.String(), "GET /users lists users.") {
		t.Fatalf("answer not printed: %q", out.String())
	}
}

func TestRunFailedTurnKeptAndLoopContinues(t *testing.T) {
	var hit int32
	s, out := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hit, 1)
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}

		var req struct {
			Messages []types.Message `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 3 {
			t.Errorf("second request carried %d messages, want 3 with the failed turn kept", len(req.Messages))
		}
		_ = json.NewEncoder(w).Encode(completionResponse("second answer"))
	})

	if err := s.Run(askScript("first question", "second question", "done")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if atomic.LoadInt32(&hit) != 2 {
		t.Fatalf("expected 2 requests, got %d", hit)
	}

	hist := s.History()
	if len(hist) != 4 {
		t.Fatalf("history = %d entries, want 4", len(hist))
	}
	if hist[1].Content != "first question" || hist[2].Content != "second question" {
		t.Fatalf("unexpected history %+v", hist)
	}
	if hist[3].Role != "assistant" || hist[3].Content != "second answer" {
		t.Fatalf("unexpected final entry %+v", hist[3])
	}
	if !strings.Contains(out.String(), "rate limited") {
		t.Fatalf("failure not reported inline: %q", out.String())
	}
}
