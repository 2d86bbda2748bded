package llm

import "testing"

func TestGeminiAliases(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.5-pro", "gemini-2.5-pro"}, // unknown names pass through
	}
	for _, tt := range tests {
		if got := expandAlias(tt.in, geminiAliases); got != tt.want {
			t.Errorf("expandAlias(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToGeminiSchema(t *testing.T) {
	schema := toGeminiSchema(map[string]any{
		"type":        "object",
		"description": "one quiz question",
		"properties": map[string]any{
			"stem": map[string]any{"type": "string"},
			"kind": map[string]any{"type": "string", "enum": []any{"single", "multi"}},
			"options": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"points": map[string]any{"type": "integer"},
		},
		"required": []any{"stem", "options"},
	})

	if schema.Type != "OBJECT" {
		t.Fatalf("type = %s", schema.Type)
	}
	if schema.Description != "one quiz question" {
		t.Errorf("description = %q", schema.Description)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("properties = %d, want 4", len(schema.Properties))
	}
	if schema.Properties["stem"].Type != "STRING" {
		t.Errorf("stem type = %s", schema.Properties["stem"].Type)
	}
	if schema.Properties["points"].Type != "INTEGER" {
		t.Errorf("points type = %s", schema.Properties["points"].Type)
	}
	if got := schema.Properties["kind"].Enum; len(got) != 2 {
		t.Errorf("kind enum = %v", got)
	}
	if schema.Properties["options"].Type != "ARRAY" {
		t.Errorf("options type = %s", schema.Properties["options"].Type)
	}
	if schema.Properties["options"].Items.Type != "STRING" {
		t.Errorf("options items type = %s", schema.Properties["options"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Errorf("required = %v", schema.Required)
	}
}
