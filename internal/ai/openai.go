package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIClient talks to the OpenAI Chat Completions API.
type OpenAIClient struct {
	t *transport
}

// NewOpenAIClient returns a client for the given key. An empty baseURL
// selects the public endpoint.
func NewOpenAIClient(apiKey, baseURL string, httpTimeout time.Duration) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+apiKey)
	return &OpenAIClient{t: newTransport(baseURL, httpTimeout, h)}
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

func (c *OpenAIClient) Provider() string { return ProviderOpenAI }

// JSON mode is enforced server side, so a malformed reply is a real failure.
func (c *OpenAIClient) recoversMalformedOutput() bool { return false }

// Generate posts a single chat completion. req.System becomes the leading
// system message.
func (c *OpenAIClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if req.Model == "" {
		return nil, errors.New("model cannot be empty")
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}
	msgs := make([]Message, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, Message{Role: "system", Content: req.System})
	}
	msgs = append(msgs, req.Messages...)
	body := chatRequest{
		Model:       req.Model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	var out chatResponse
	requestID, err := c.t.postJSON(ctx, "/chat/completions", body, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%w (request_id=%s)", ErrEmptyCompletion, requestID)
	}
	return &GenerateResponse{
		ID:        out.ID,
		Model:     out.Model,
		Text:      out.Choices[0].Message.Content,
		Usage:     out.Usage,
		RequestID: requestID,
	}, nil
}
