package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

type chatRequest struct {
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionBody(choices ...string) map[string]any {
	list := make([]map[string]any, 0, len(choices))
	for i, c := range choices {
		list = append(list, map[string]any{
			"index":         i,
			"message":       map[string]any{"role": "assistant", "content": c},
			"finish_reason": "stop",
		})
	}
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 123,
		"model":   "llama-3.1-70b-versatile",
		"choices": list,
		"usage":   map[string]any{"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15},
	}
}

func TestOpenAICompleterComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "llama-3.1-70b-versatile" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Temperature == nil || *req.Temperature != 0.7 {
			t.Errorf("temperature = %v, want 0.7", req.Temperature)
		}
		if req.MaxTokens == nil || *req.MaxTokens != 500 {
			t.Errorf("max_tokens = %v, want 500", req.MaxTokens)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionBody("hi there"))
	}))
	defer server.Close()

	c := NewCompleter("test-key", server.URL+"/v1/", "llama-3.1-70b-versatile", Options{MaxTokens: 500, Temperature: 0.7})

	got, usage, err := c.Complete(context.Background(), []Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hello"},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "hi there" {
		t.Errorf("content = %q, want %q", got, "hi there")
	}
	if usage.TotalTokens != 15 {
		t.Errorf("total tokens = %d, want 15", usage.TotalTokens)
	}
}

func TestOpenAICompleterNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionBody())
	}))
	defer server.Close()

	c := NewCompleter("test-key", server.URL+"/v1/", "m", Options{})

	_, _, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hello"}})
	if !errors.Is(err, ErrNoChoices) {
		t.Fatalf("err = %v, want ErrNoChoices", err)
	}
}

func TestOpenAICompleterDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"over capacity","type":"server_error"}}`))
	}))
	defer server.Close()

	c := NewCompleter("test-key", server.URL+"/v1/", "m", Options{})

	if _, _, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hello"}}); err == nil {
		t.Fatal("expected error for 503 response")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d requests, want exactly 1", n)
	}
}

func TestOpenAICompleterSendsZeroTemperature(t *testing.T) {
	var got *float64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		got = req.Temperature
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionBody("ok"))
	}))
	defer server.Close()

	c := NewCompleter("test-key", server.URL+"/v1/", "m", Options{Temperature: 0})

	if _, _, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hello"}}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got == nil || *got != 0 {
		t.Errorf("temperature = %v, want explicit 0", got)
	}
}
