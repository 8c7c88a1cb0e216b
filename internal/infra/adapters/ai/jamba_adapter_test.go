package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newJambaAgainst(t *testing.T, handler http.HandlerFunc) *JambaAdapter {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	j, err := NewJambaAdapter("test-key", "jamba-large", ts.URL)
	if err != nil {
		t.Fatalf("NewJambaAdapter: %v", err)
	}
	return j
}

func TestJambaAdapter_Complete(t *testing.T) {
	t.Parallel()

	j := newJambaAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		var body struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			MaxTokens   int     `json:"maxTokens"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Model != "jamba-large" || body.Temperature != 0.7 || body.MaxTokens != 2000 {
			t.Errorf("request body = %+v", body)
		}
		if len(body.Messages) != 1 || body.Messages[0].Role != "user" {
			t.Errorf("messages = %+v", body.Messages)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "your itinerary"}},
			},
		})
	})

	text, err := j.Complete(context.Background(), "trip to Lisbon")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "your itinerary" {
		t.Fatalf("text = %q", text)
	}
}

func TestJambaAdapter_CompleteNoChoices(t *testing.T) {
	t.Parallel()

	j := newJambaAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})
	if _, err := j.Complete(context.Background(), "p"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestJambaAdapter_CompleteHTTPError(t *testing.T) {
	t.Parallel()

	j := newJambaAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	if _, err := j.Complete(context.Background(), "p"); err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("err = %v, want http 429", err)
	}
}
