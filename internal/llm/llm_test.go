package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/paperbar/internal/config"
	"github.com/ShayCichocki/paperbar/internal/logging"
)

// clearKeys removes provider keys from the environment for one test.
func clearKeys(t *testing.T) {
	t.Helper()
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
}

func TestNew_SelectsProvider(t *testing.T) {
	clearKeys(t)

	cfg := config.Default()
	cfg.Anthropic.APIKey = "sk-ant-test-key-123456"
	cfg.OpenAI.APIKey = "sk-openai-test-key"

	gen, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := gen.(*AnthropicGenerator); !ok {
		t.Errorf("expected *AnthropicGenerator, got %T", gen)
	}

	cfg.LLM.Provider = config.ProviderOpenAI
	gen, err = New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := gen.(*OpenAIGenerator); !ok {
		t.Errorf("expected *OpenAIGenerator, got %T", gen)
	}
}

func TestNew_MissingKey(t *testing.T) {
	clearKeys(t)

	for _, provider := range []string{config.ProviderAnthropic, config.ProviderOpenAI} {
		cfg := config.Default()
		cfg.LLM.Provider = provider

		_, err := New(cfg, nil)
		if !errors.Is(err, config.ErrNoAPIKey) {
			t.Errorf("%s: expected ErrNoAPIKey, got %v", provider, err)
		}
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "cohere"
	if _, err := New(cfg, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewAnthropic_DefaultModel(t *testing.T) {
	gen, err := NewAnthropic(AnthropicConfig{APIKey: "test-key"}, nil)
	if err != nil {
		t.Fatalf("NewAnthropic failed: %v", err)
	}
	if gen.Model() != string(anthropic.ModelClaudeSonnet4_20250514) {
		t.Errorf("Model = %q", gen.Model())
	}
}

func TestNewAnthropic_NoAPIKey(t *testing.T) {
	if _, err := NewAnthropic(AnthropicConfig{}, nil); err == nil {
		t.Fatal("NewAnthropic should fail without API key")
	}
}

func TestTranslateModelForBedrock(t *testing.T) {
	tests := []struct {
		input    anthropic.Model
		expected anthropic.Model
	}{
		{anthropic.ModelClaudeSonnet4_20250514, "us.anthropic.claude-sonnet-4-20250514-v1:0"},
		{anthropic.ModelClaude3_5Haiku20241022, "us.anthropic.claude-3-5-haiku-20241022-v1:0"},
		{"us.anthropic.custom-v1:0", "us.anthropic.custom-v1:0"},
		{"my-custom-model", "my-custom-model"},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := translateModelForBedrock(tt.input); got != tt.expected {
				t.Errorf("translateModelForBedrock(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAnthropicGenerate(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("api key header = %q", r.Header.Get("X-Api-Key"))
		}
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-20250514",
			"content": [
				{"type": "text", "text": "[{\"scheduled_date\": "},
				{"type": "text", "text": "\"2025-03-01\"}]"}
			],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 8}
		}`)
	}))
	defer server.Close()

	logger, logs := logging.NewObserved()
	gen, err := NewAnthropic(AnthropicConfig{APIKey: "test-key", BaseURL: server.URL}, logger)
	if err != nil {
		t.Fatalf("NewAnthropic failed: %v", err)
	}

	text, err := gen.Generate(context.Background(), "decompose this")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != `[{"scheduled_date": "2025-03-01"}]` {
		t.Errorf("text = %q", text)
	}

	if gotBody["max_tokens"] != float64(maxTokens) {
		t.Errorf("max_tokens = %v, want %d", gotBody["max_tokens"], maxTokens)
	}
	if !strings.Contains(mustJSON(t, gotBody["messages"]), "decompose this") {
		t.Errorf("prompt not sent: %v", gotBody["messages"])
	}

	entries := logs.FilterMessage("anthropic generation complete").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 completion log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["output_tokens"]; got != int64(8) {
		t.Errorf("output_tokens = %v", got)
	}
}

func TestAnthropicGenerate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`)
	}))
	defer server.Close()

	gen, err := NewAnthropic(AnthropicConfig{APIKey: "test-key", BaseURL: server.URL}, nil)
	if err != nil {
		t.Fatalf("NewAnthropic failed: %v", err)
	}
	if _, err := gen.Generate(context.Background(), "x"); err == nil {
		t.Error("expected error from failing API")
	}
}

func TestNewOpenAI_NoAPIKey(t *testing.T) {
	if _, err := NewOpenAI(OpenAIConfig{}, nil); err == nil {
		t.Fatal("NewOpenAI should fail without API key")
	}
}

func TestOpenAIGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("authorization header = %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "[]"},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 1, "total_tokens": 6}
		}`)
	}))
	defer server.Close()

	gen, err := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL}, nil)
	if err != nil {
		t.Fatalf("NewOpenAI failed: %v", err)
	}
	if gen.Model() != "gpt-4o" {
		t.Errorf("Model = %q, want default gpt-4o", gen.Model())
	}

	text, err := gen.Generate(context.Background(), "decompose this")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "[]" {
		t.Errorf("text = %q, want []", text)
	}
}

func TestGenerate_EmptyResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
		gen  func(url string) (Generator, error)
	}{
		{
			name: "anthropic without text blocks",
			body: `{
				"id": "msg_02",
				"type": "message",
				"role": "assistant",
				"model": "claude-sonnet-4-20250514",
				"content": [],
				"stop_reason": "end_turn",
				"usage": {"input_tokens": 12, "output_tokens": 0}
			}`,
			gen: func(url string) (Generator, error) {
				return NewAnthropic(AnthropicConfig{APIKey: "test-key", BaseURL: url}, nil)
			},
		},
		{
			name: "openai with empty content",
			body: `{
				"id": "chatcmpl-2",
				"object": "chat.completion",
				"created": 1700000000,
				"model": "gpt-4o",
				"choices": [{
					"index": 0,
					"message": {"role": "assistant", "content": ""},
					"finish_reason": "stop"
				}],
				"usage": {"prompt_tokens": 5, "completion_tokens": 0, "total_tokens": 5}
			}`,
			gen: func(url string) (Generator, error) {
				return NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: url}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			gen, err := tt.gen(server.URL)
			if err != nil {
				t.Fatalf("constructor failed: %v", err)
			}
			text, err := gen.Generate(context.Background(), "decompose this")
			if !errors.Is(err, ErrEmptyResponse) {
				t.Errorf("Generate() = %q, %v; want ErrEmptyResponse", text, err)
			}
		})
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

type echoGenerator struct{ calls int }

func (g *echoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	return prompt, nil
}

func TestNew_RateLimited(t *testing.T) {
	clearKeys(t)

	cfg := config.Default()
	cfg.Anthropic.APIKey = "sk-ant-test-key-123456"
	cfg.LLM.RequestsPerMinute = 30

	gen, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := gen.(*RateLimited); !ok {
		t.Errorf("expected *RateLimited, got %T", gen)
	}
}

func TestRateLimited_Generate(t *testing.T) {
	inner := &echoGenerator{}
	gen := NewRateLimited(inner, 1)

	got, err := gen.Generate(context.Background(), "first")
	if err != nil || got != "first" {
		t.Fatalf("first call = %q, %v", got, err)
	}

	// The next token is a minute away; a cancelled context must not wait for it.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := gen.Generate(ctx, "second"); err == nil {
		t.Error("expected error from rate limiter with cancelled context")
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
}

func TestLazy_BuildsOnFirstCall(t *testing.T) {
	inner := &echoGenerator{}
	builds := 0
	gen := NewLazy(func() (Generator, error) {
		builds++
		return inner, nil
	})
	if builds != 0 {
		t.Fatalf("builds = %d before first call, want 0", builds)
	}

	for _, prompt := range []string{"one", "two"} {
		got, err := gen.Generate(context.Background(), prompt)
		if err != nil || got != prompt {
			t.Fatalf("Generate(%q) = %q, %v", prompt, got, err)
		}
	}
	if builds != 1 {
		t.Errorf("builds = %d, want 1", builds)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}

func TestLazy_BuildErrorReturnedFromGenerate(t *testing.T) {
	clearKeys(t)
	cfg := config.Default()
	gen := NewLazy(func() (Generator, error) { return New(cfg, nil) })

	_, err := gen.Generate(context.Background(), "prompt")
	if !errors.Is(err, config.ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}
