// Package llm provides chat completion clients for OpenAI-compatible APIs.
package llm

import (
	"context"
	"errors"

	"go.aimuz.me/glimpse/internal/types"
)

// ErrNoChoices is returned when the service answers without any choice.
var ErrNoChoices = errors.New("no choices returned")

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options configures LLM completion behavior.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Completer performs chat completions.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, types.Usage, error)
}

// completerConfig holds all parameters needed by completers.
type completerConfig struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
}

// NewCompleter creates a Completer for an OpenAI-compatible endpoint.
// An empty baseURL targets api.openai.com.
func NewCompleter(apiKey, baseURL, model string, opts Options) Completer {
	return newOpenAICompleter(completerConfig{
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	})
}
