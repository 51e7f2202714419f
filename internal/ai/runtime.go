package ai

import "context"

// Provider identifiers accepted in configuration.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest is the provider-neutral completion request. Each backend
// translates it into its own wire shape.
type GenerateRequest struct {
	Model       string
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	// JSON asks the backend to constrain output to a JSON object where the
	// provider supports it natively.
	JSON bool
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type GenerateResponse struct {
	ID        string
	Model     string
	Text      string
	Usage     Usage
	RequestID string
}

// Backend is one of the supported LLM providers. The set is closed: the
// unexported method keeps implementations inside this package.
type Backend interface {
	Provider() string
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	// recoversMalformedOutput reports whether a non-JSON completion should be
	// parsed heuristically instead of failing the call.
	recoversMalformedOutput() bool
}
