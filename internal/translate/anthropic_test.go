package translate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestAnthropic(t *testing.T, handler http.HandlerFunc) *AnthropicTranslator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	translator, err := NewAnthropicTranslator(context.Background(), "fake-key", Options{
		TargetLanguage: "Hebrew",
		BaseURL:        srv.URL + "/",
		Temperature:    0.7,
	})
	if err != nil {
		t.Fatalf("NewAnthropicTranslator error: %v", err)
	}
	return translator
}

func TestAnthropicTranslate(t *testing.T) {
	var req map[string]any
	translator := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-haiku-4-5",
			"content": [{"type": "text", "text": "שלום"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 2}
		}`))
	})

	out, err := translator.Translate(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if out != "שלום" {
		t.Errorf("Translate() = %q, want שלום", out)
	}
	if req["max_tokens"] != float64(2000) {
		t.Errorf("max_tokens = %v, want 2000", req["max_tokens"])
	}
	if req["temperature"] != 0.7 {
		t.Errorf("temperature = %v, want 0.7", req["temperature"])
	}
}

func TestAnthropicTranslateServiceError(t *testing.T) {
	calls := make(chan struct{}, 4)
	translator := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		calls <- struct{}{}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	})

	_, err := translator.Translate(context.Background(), "Hello")
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
	if svcErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", svcErr.StatusCode)
	}
	if !strings.Contains(svcErr.Message, "rate_limit_error") {
		t.Errorf("message = %q, want raw error body", svcErr.Message)
	}
	if n := len(calls); n != 1 {
		t.Errorf("expected exactly one attempt, got %d", n)
	}
}

func TestAnthropicTranslateEmptyText(t *testing.T) {
	translator := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-haiku-4-5",
			"content": [{"type": "text", "text": ""}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 0}
		}`))
	})

	_, err := translator.Translate(context.Background(), "Hello")
	if !errors.Is(err, ErrEmptyTranslation) {
		t.Errorf("expected ErrEmptyTranslation, got %v", err)
	}
}
