package llm

import (
	"context"
	"errors"
	"testing"

	"story-time-api/internal/config"
)

func newTestConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{
			DefaultProvider: "gemini",
			Providers: map[string]config.ProviderConfig{
				"gemini": {Type: "gemini", Model: "gemini-2.0-flash"},
				"openai": {Type: "openai", APIKey: "sk-test", BaseURL: "http://127.0.0.1:1/v1", Model: "gpt-4o-mini"},
			},
		},
	}
}

func TestEinoFactoryConfigured(t *testing.T) {
	f := NewEinoFactory(newTestConfig())

	if f.Configured("") {
		t.Error("default gemini provider has no key and should not be configured")
	}
	if !f.Configured("openai") {
		t.Error("openai provider has a key and should be configured")
	}
	if f.Configured("missing") {
		t.Error("unknown provider should not be configured")
	}

	name, m := f.Describe("")
	if name != "gemini" || m != "gemini-2.0-flash" {
		t.Errorf("unexpected describe result %s/%s", name, m)
	}
}

func TestEinoFactoryGet(t *testing.T) {
	ctx := context.Background()
	f := NewEinoFactory(newTestConfig())

	if _, err := f.Default(ctx); !errors.Is(err, ErrProviderNotConfigured) {
		t.Errorf("expected ErrProviderNotConfigured, got %v", err)
	}
	if _, err := f.Get(ctx, "missing"); err == nil {
		t.Error("expected error for unknown provider")
	}

	first, err := f.Get(ctx, "openai")
	if err != nil {
		t.Fatalf("Get(openai) returned error: %v", err)
	}
	second, err := f.Get(ctx, "OpenAI")
	if err != nil {
		t.Fatalf("Get(OpenAI) returned error: %v", err)
	}
	if first != second {
		t.Error("chat model should be built once and reused")
	}
}
