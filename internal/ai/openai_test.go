// README: Tests for the OpenAI provider against a local chat completions stub.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"itinerary/internal/config"
	"itinerary/internal/modules/itinerary"
)

func testAIConfig(url string) config.AIConfig {
	return config.AIConfig{
		Provider:   "openai",
		OpenAIKey:  "sk-test",
		OpenAIURL:  url,
		OpenAI:     "gpt-4o-mini",
		OpenAIText: "gpt-4o",
		Timeout:    5 * time.Second,
		Structured: config.ModeParams{Temperature: 0.7, MaxTokens: 4000},
		Text:       config.ModeParams{Temperature: 0.8, MaxTokens: 3000},
	}
}

func TestOpenAIProvider_RequestShape(t *testing.T) {
	var got chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != openAIChatPath {
			t.Errorf("path = %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"days\":[]}"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(testAIConfig(srv.URL))
	out, err := p.Generate(context.Background(), itinerary.Prompt{System: "sys", User: "usr"}, itinerary.ModeStructured)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `{"days":[]}` {
		t.Errorf("out = %q", out)
	}
	if auth != "Bearer sk-test" {
		t.Errorf("auth = %q", auth)
	}
	if got.Model != "gpt-4o-mini" || got.MaxTokens != 4000 || got.Temperature != 0.7 {
		t.Errorf("request = %+v", got)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Errorf("structured mode must request json_object")
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "usr" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestOpenAIProvider_TextModeHasNoResponseFormat(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Day 1: walk"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(testAIConfig(srv.URL))
	if _, err := p.Generate(context.Background(), itinerary.Prompt{User: "x"}, itinerary.ModeText); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got.ResponseFormat != nil {
		t.Errorf("text mode must not request json")
	}
	if got.Model != "gpt-4o" || got.MaxTokens != 3000 {
		t.Errorf("request = %+v", got)
	}
}

func TestOpenAIProvider_ClassifiesFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   itinerary.Kind
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided"}}`, itinerary.KindAuth},
		{"throttled", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached"}}`, itinerary.KindRateLimit},
		{"server error", http.StatusInternalServerError, `oops`, itinerary.KindUpstream},
		{"empty choices", http.StatusOK, `{"choices":[]}`, itinerary.KindUpstream},
		{"blank content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`, itinerary.KindUpstream},
		{"not json", http.StatusOK, `<html>`, itinerary.KindUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewOpenAIProvider(testAIConfig(srv.URL))
			_, err := p.Generate(context.Background(), itinerary.Prompt{User: "x"}, itinerary.ModeStructured)
			if got := itinerary.KindOf(err); got != tt.want {
				t.Errorf("kind = %q, want %q (err %v)", got, tt.want, err)
			}
			if calls != 1 {
				t.Errorf("calls = %d, no retry expected", calls)
			}
		})
	}
}

func TestNew_MissingCredential(t *testing.T) {
	cfg := testAIConfig("http://unused")
	cfg.OpenAIKey = ""
	if _, err := New(context.Background(), cfg); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}

	gw := Unconfigured{Provider: "openai"}
	_, err := gw.Generate(context.Background(), itinerary.Prompt{}, itinerary.ModeText)
	var aerr *itinerary.AuthError
	if !errors.As(err, &aerr) || !aerr.Missing {
		t.Fatalf("err = %v", err)
	}
}
