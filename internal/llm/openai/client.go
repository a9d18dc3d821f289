package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"checkcontrat-backend/internal/llm"
)

const defaultModel = "gpt-4o-mini"

// Client implements llm.Completer with the OpenAI chat completions API.
type Client struct {
	api   *goopenai.Client
	model string
}

// NewClient builds a client. baseURL is optional and points at any
// OpenAI-compatible endpoint (including test servers).
func NewClient(apiKey, model, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if u := strings.TrimSpace(baseURL); u != "" {
		cfg.BaseURL = strings.TrimRight(u, "/")
	}
	return &Client{api: goopenai.NewClientWithConfig(cfg), model: model}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Complete sends the system and user messages and returns the trimmed reply.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	chatReq := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System},
			{Role: goopenai.ChatMessageRoleUser, Content: req.User},
		},
	}
	// Reasoning models reject a non-default temperature.
	if !isReasoningModel(c.model) {
		chatReq.Temperature = req.Temperature
	}

	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", &llm.ServiceError{Op: "chat completion", StatusCode: statusCode(err), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &llm.ServiceError{Op: "chat completion", Err: errors.New("no choices returned")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func isReasoningModel(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

func statusCode(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

var _ llm.Completer = (*Client)(nil)
