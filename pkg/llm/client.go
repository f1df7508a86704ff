package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/andrew/llm-movie-rec/pkg/models"
)

// Client is the interface for interacting with chat-completion LLMs
type Client interface {
	// Chat sends the whole message sequence and returns the single completed reply
	Chat(ctx context.Context, messages []models.Message, config ModelConfig) (models.Message, error)

	// ChatStream sends the whole message sequence and returns the reply as a stream
	// of fragments. The channel is closed after a terminal or error fragment and is
	// drained once; it cannot be replayed.
	ChatStream(ctx context.Context, messages []models.Message, config ModelConfig) (<-chan Fragment, error)

	// Model returns the name of the model requests are sent to
	Model() string

	Close() error
}

// Fragment is one incremental piece of a streamed completion.
// A fragment with Done set is the terminal marker and carries no content.
type Fragment struct {
	Content string
	Done    bool
	Err     error
}

// ModelConfig holds sampling parameters for a completion request
type ModelConfig struct {
	Temperature float32 `json:"temperature" yaml:"temperature"`
	TopP        float32 `json:"top_p" yaml:"top_p"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
}

// DefaultModelConfig returns the sampling parameters used by every flow
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Temperature: 0.5,
		TopP:        0.7,
		MaxTokens:   1024,
	}
}

const (
	// ProviderOpenAI selects any OpenAI-compatible chat completion endpoint
	ProviderOpenAI = "openai"
	// ProviderOllama selects a native Ollama server
	ProviderOllama = "ollama"

	defaultTimeout = 5 * time.Minute
)

// Options configures a Client created by NewClient
type Options struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// NewClient creates a completion client for the configured provider
func NewClient(opts Options) (Client, error) {
	if opts.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	switch opts.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(opts.Model, opts.BaseURL, opts.APIKey, httpClient), nil
	case ProviderOllama:
		return NewOllamaClient(opts.Model, opts.BaseURL, httpClient)
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Provider)
	}
}

// Collect drains a fragment stream and returns the concatenated content.
// Terminal fragments contribute no text.
func Collect(stream <-chan Fragment) (string, error) {
	var content []byte
	for f := range stream {
		if f.Err != nil {
			return string(content), f.Err
		}
		if f.Done {
			continue
		}
		content = append(content, f.Content...)
	}
	return string(content), nil
}

// send delivers f unless ctx is cancelled first
func send(ctx context.Context, ch chan<- Fragment, f Fragment) bool {
	select {
	case ch <- f:
		return true
	case <-ctx.Done():
		return false
	}
}
