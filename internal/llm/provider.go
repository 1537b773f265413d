package llm

import "context"

// Provider generates text from a prompt. Implementations return the raw
// model output; callers must treat it as untrusted.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request is a single-turn generation request.
type Request struct {
	// System sets the model's role and output rules.
	System string
	// Prompt is the user turn.
	Prompt string
	// Schema, when set, asks providers with native structured output to
	// constrain the response. Providers without support ignore it.
	Schema *Schema
	// JSON requests a machine-parseable response body.
	JSON        bool
	MaxTokens   int
	Temperature float64
}

// Schema is a JSON Schema definition attached to a request.
type Schema struct {
	Name       string
	Definition map[string]any
}

// Response holds the model output.
type Response struct {
	Text  string
	Usage Usage
	Model string
	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel maps a friendly model name to a provider model ID, passing
// unknown names through unchanged.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
