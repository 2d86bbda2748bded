package llm

import "testing"

func TestOpenRouterProvider(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "meta-llama/llama-3-8b"})
		if err == nil {
			t.Fatal("expected error for missing API key")
		}
	})

	t.Run("namespaced model passes through", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "anthropic/claude-3-haiku",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "anthropic/claude-3-haiku" {
			t.Errorf("ModelID() = %q", p.ModelID())
		}
	})

	t.Run("custom base URL accepted", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey:  "sk-or-test",
			Model:   "google/gemini-2.0-flash-exp",
			BaseURL: "https://gateway.example/v1",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p == nil {
			t.Fatal("nil provider")
		}
	})
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "fallback"); got != "fallback" {
		t.Errorf("got %q", got)
	}
	if got := firstNonEmpty("set", "fallback"); got != "set" {
		t.Errorf("got %q", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("got %q", got)
	}
}
