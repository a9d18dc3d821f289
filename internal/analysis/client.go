package analysis

import (
	"context"
	"errors"

	"checkcontrat-backend/internal/llm"
)

const (
	// SystemInstruction frames the model as a French labour-law expert.
	SystemInstruction = "Tu es un expert juridique spécialisé en droit du travail français."
	// Separator sits between the prompt and the document text.
	Separator   = "\n\n---\n\n"
	Temperature = float32(0.3)
)

// Client runs one prompt + text through the language model.
type Client struct {
	LLM llm.Completer
}

// NewClient returns a Client backed by completer.
func NewClient(completer llm.Completer) *Client {
	return &Client{LLM: completer}
}

// Analyse sends prompt and text in a single call. Remote failures come back
// as *llm.ServiceError; an unparsable reply is classified, never an error.
func (c *Client) Analyse(ctx context.Context, prompt, text string) (Result, error) {
	raw, err := c.LLM.Complete(ctx, llm.CompletionRequest{
		System:      SystemInstruction,
		User:        UserMessage(prompt, text),
		Temperature: Temperature,
	})
	if err != nil {
		var svcErr *llm.ServiceError
		if !errors.As(err, &svcErr) {
			err = &llm.ServiceError{Op: "complete", Err: err}
		}
		return Result{}, err
	}
	return Resolve(ParseReply(raw)), nil
}

// UserMessage joins prompt and text with the separator.
func UserMessage(prompt, text string) string {
	return prompt + Separator + text
}
