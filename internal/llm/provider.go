package llm

import (
	"context"
	"encoding/json"
)

// Provider is the single abstraction the rest of the app talks to for
// LLM work. Everything above this package deals in Request/Response
// pairs and never sees an SDK type.
type Provider interface {
	// Generate sends one prompt and returns the model's output. When
	// the request carries a Schema, the returned Content is JSON that
	// already passed validation against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID reports the model this provider was configured with.
	ModelID() string
}

// Request describes one call to the model.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation so far. Generation here is almost
	// always single turn, so this is usually one user message.
	Messages []Message

	// Schema, when set, makes the provider use its native structured
	// output mode and the result is validated against it. When nil the
	// response comes back as raw text.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature in [0.0, 1.0]; zero value means deterministic.
	Temperature float64
}

// Message is one turn of conversation.
type Message struct {
	Role    Role
	Content string
}

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is the JSON structure the model must produce.
type Schema struct {
	// Name identifies the schema to both the provider API and the
	// compiled-schema cache. Kebab-case, e.g. "quiz-batch".
	Name string

	// Description tells the model what the schema represents.
	Description string

	// Definition is the JSON Schema itself, as a map.
	Definition map[string]any
}

// Response is the model's output plus accounting.
type Response struct {
	// Content is validated JSON when the request had a Schema,
	// otherwise the raw text wrapped as json.RawMessage.
	Content json.RawMessage

	// Usage is the token accounting for this one call.
	Usage Usage

	// Model is the model that actually served the request, which can
	// differ from the configured ID when the provider resolves aliases
	// server side.
	Model string

	// StopReason is normalized across providers: "end", "max_tokens",
	// or "error".
	StopReason string
}

// Usage counts tokens for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
