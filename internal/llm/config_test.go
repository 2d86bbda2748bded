package llm

import "testing"

func TestConfigFromStored_OpenAICompatible(t *testing.T) {
	cfg := ConfigFromStored(StoredEndpoint{
		Protocol: "openai-compatible",
		BaseURL:  "https://api.deepseek.com/v1/chat/completions/",
		Model:    "deepseek-chat",
		APIKey:   "sk-test",
	})

	if cfg.Provider != "openai" {
		t.Fatalf("provider = %q, want openai", cfg.Provider)
	}
	if cfg.OpenAI.Model != "deepseek-chat" {
		t.Errorf("model = %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("api key = %q", cfg.OpenAI.APIKey)
	}
	// Full endpoint URLs are trimmed back to the SDK's base URL.
	if cfg.OpenAI.BaseURL != "https://api.deepseek.com/v1" {
		t.Errorf("base url = %q", cfg.OpenAI.BaseURL)
	}
}

func TestConfigFromStored_GeminiNative(t *testing.T) {
	cfg := ConfigFromStored(StoredEndpoint{
		Protocol: "gemini-native",
		Model:    "gemini-2.0-flash",
		APIKey:   "g-test",
	})

	if cfg.Provider != "gemini" {
		t.Fatalf("provider = %q, want gemini", cfg.Provider)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" || cfg.Gemini.APIKey != "g-test" {
		t.Errorf("gemini cfg = %+v", cfg.Gemini)
	}
}

func TestConfigFromStored_EmptyProtocolKeepsEnvConfig(t *testing.T) {
	env := ConfigFromEnv()
	cfg := ConfigFromStored(StoredEndpoint{})
	if cfg.Provider != env.Provider {
		t.Errorf("provider = %q, want %q", cfg.Provider, env.Provider)
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://x.test/v1", "https://x.test/v1"},
		{"https://x.test/v1/", "https://x.test/v1"},
		{"https://x.test/v1/chat/completions", "https://x.test/v1"},
		{"https://x.test/api/v4/chat/completions/", "https://x.test/api/v4"},
	}
	for _, tt := range tests {
		if got := normalizeBaseURL(tt.in); got != tt.want {
			t.Errorf("normalizeBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
