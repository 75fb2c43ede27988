package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOpenAICompatGeneratorSendsOptions(t *testing.T) {
	var got oaiChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Under Article 21...  "}}]}`))
	}))
	defer srv.Close()

	g := NewOpenAICompatGenerator(srv.URL+"/v1/", "sk-test", "gpt-4o-mini", time.Second)
	text, err := g.GenerateText(context.Background(), "system text", "user text", GenerationOptions{Temperature: 0.5, MaxTokens: 2000})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "Under Article 21..." {
		t.Fatalf("unexpected text %q", text)
	}
	if got.Model != "gpt-4o-mini" || got.MaxTokens != 2000 || got.Temperature == nil || *got.Temperature != 0.5 {
		t.Fatalf("unexpected request %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "user text" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
}

func TestOpenAICompatGeneratorErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
		isEmpty bool
	}{
		{name: "api error message", status: 429, body: `{"error":{"message":"rate limited"}}`, wantErr: "rate limited"},
		{name: "bare status", status: 502, body: `oops`, wantErr: "502"},
		{name: "no choices", status: 200, body: `{"choices":[]}`, isEmpty: true},
		{name: "blank content", status: 200, body: `{"choices":[{"message":{"content":"   "}}]}`, isEmpty: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()
			g := NewOpenAICompatGenerator(srv.URL, "", "m", time.Second)
			_, err := g.GenerateText(context.Background(), "", "q", GenerationOptions{})
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.isEmpty && !errors.Is(err, ErrEmptyCompletion) {
				t.Fatalf("expected ErrEmptyCompletion, got %v", err)
			}
			if tc.wantErr != "" && !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestOpenAICompatGeneratorRequiresModel(t *testing.T) {
	g := NewOpenAICompatGenerator("http://127.0.0.1:1", "", "", time.Second)
	if _, err := g.GenerateText(context.Background(), "", "q", GenerationOptions{}); err == nil {
		t.Fatalf("expected missing model error")
	}
}

func TestGeminiGenerator(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.0-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "g-key" {
			t.Errorf("missing api key")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Part one. "},{"text":"Part two."}]}}]}`))
	}))
	defer srv.Close()

	g, err := NewGeminiGenerator(srv.URL, "g-key", "models/gemini-2.0-flash", time.Second)
	if err != nil {
		t.Fatalf("new gemini: %v", err)
	}
	text, err := g.GenerateText(context.Background(), "sys", "user", GenerationOptions{Temperature: 0.7, MaxTokens: 100})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "Part one. Part two." {
		t.Fatalf("unexpected text %q", text)
	}
	if got.SystemInstruction == nil || got.GenerationConfig == nil || got.GenerationConfig.MaxOutputTokens != 100 {
		t.Fatalf("unexpected request %+v", got)
	}
	if _, err := NewGeminiGenerator("", " ", "m", 0); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestLangChainGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"Consult Section 106."},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`))
	}))
	defer srv.Close()

	g, err := NewLangChainGenerator(srv.URL+"/v1", "sk-test", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("new langchain: %v", err)
	}
	text, err := g.GenerateText(context.Background(), "sys", "user", GenerationOptions{Temperature: 0.7, MaxTokens: 50})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "Consult Section 106." {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestNewGeneratorSelectsProvider(t *testing.T) {
	g, err := NewGenerator(ProviderConfig{Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("default provider: %v", err)
	}
	if _, ok := g.(*OpenAICompatGenerator); !ok {
		t.Fatalf("expected openai-compatible default, got %T", g)
	}
	if _, err := NewGenerator(ProviderConfig{Provider: "carrier-pigeon"}); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
}
