package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAITranslator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	translator, err := NewOpenAITranslator(context.Background(), "fake-key", Options{
		TargetLanguage: "Hebrew",
		BaseURL:        srv.URL + "/",
	})
	if err != nil {
		t.Fatalf("NewOpenAITranslator error: %v", err)
	}
	return translator
}

func TestOpenAITranslate(t *testing.T) {
	translator := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-5-mini",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "` + "```\\nשלום\\n```" + `"},
				"finish_reason": "stop"
			}]
		}`))
	})

	out, err := translator.Translate(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if out != "שלום" {
		t.Errorf("Translate() = %q, want שלום", out)
	}
}

func TestOpenAITranslateServiceError(t *testing.T) {
	translator := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","param":null,"code":"invalid_api_key"}}`))
	})

	_, err := translator.Translate(context.Background(), "Hello")
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
	if svcErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", svcErr.StatusCode)
	}
	if svcErr.Code != "invalid_api_key" {
		t.Errorf("code = %q, want invalid_api_key", svcErr.Code)
	}
}

func TestOpenAITranslateNoChoices(t *testing.T) {
	translator := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-5-mini","choices":[]}`))
	})

	_, err := translator.Translate(context.Background(), "Hello")
	if err == nil {
		t.Fatal("expected error but got none")
	}
	if IsServiceError(err) {
		t.Errorf("malformed response classified as service error: %v", err)
	}
}
