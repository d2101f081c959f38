package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// StreamChunk is one increment of a streamed completion. Err is set at most
// once, on the final chunk before the channel closes.
type StreamChunk struct {
	Text string
	Done bool
	Err  error
}

// StreamingProvider is implemented by backends that can deliver the
// completion incrementally. The returned channel is closed by the provider
// when the stream ends or ctx is cancelled.
type StreamingProvider interface {
	LLMProvider
	ChatStream(ctx context.Context, history []Message, options ...Option) (<-chan StreamChunk, error)
}
