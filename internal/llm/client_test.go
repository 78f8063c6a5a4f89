package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCompleteJSON_RequestShape(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"market_type\":\"crypto\"}"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "gpt-4o", 1500, 5*time.Second)
	content, err := client.CompleteJSON(context.Background(), "analyze this", "data:image/jpeg;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if content != `{"market_type":"crypto"}` {
		t.Fatalf("content=%q", content)
	}
	if gotPath != "/chat/completions" {
		t.Fatalf("path=%q want=/chat/completions", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth=%q want bearer token", gotAuth)
	}
	if gotBody.Model != "gpt-4o" {
		t.Fatalf("model=%q want=gpt-4o", gotBody.Model)
	}
	if gotBody.MaxTokens != 1500 {
		t.Fatalf("max_tokens=%d want=1500", gotBody.MaxTokens)
	}
	if gotBody.ResponseFormat == nil || gotBody.ResponseFormat.Type != "json_object" {
		t.Fatalf("response_format=%+v want json_object", gotBody.ResponseFormat)
	}
	if len(gotBody.Messages) != 1 || len(gotBody.Messages[0].Content) != 2 {
		t.Fatalf("messages=%+v want one message with text and image parts", gotBody.Messages)
	}
	img := gotBody.Messages[0].Content[1]
	if img.Type != "image_url" || img.ImageURL == nil || !strings.HasPrefix(img.ImageURL.URL, "data:image/jpeg;base64,") {
		t.Fatalf("image part=%+v", img)
	}
}

func TestCompleteJSON_TextOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body chatRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages[0].Content) != 1 {
			t.Errorf("parts=%d want=1 without an image", len(body.Messages[0].Content))
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k", "gpt-4o", 0, 5*time.Second)
	if _, err := client.CompleteJSON(context.Background(), "hello", ""); err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
}

func TestCompleteJSON_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k", "gpt-4o", 100, 5*time.Second)
	_, err := client.CompleteJSON(context.Background(), "p", "")
	if err == nil {
		t.Fatalf("err=nil want API error")
	}
	if !strings.Contains(err.Error(), "API error 429") {
		t.Fatalf("err=%v want status in message", err)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("err=%v want body in message", err)
	}
}

func TestCompleteJSON_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k", "gpt-4o", 100, 5*time.Second)
	if _, err := client.CompleteJSON(context.Background(), "p", ""); err == nil {
		t.Fatalf("err=nil want no-choices failure")
	}
}
