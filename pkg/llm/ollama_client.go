package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/andrew/llm-movie-rec/pkg/models"
)

const defaultOllamaURL = "http://localhost:11434"

// OllamaClient is a client that uses the Ollama API to interact with LLM models
type OllamaClient struct {
	client    *api.Client
	baseURL   string
	modelName string
}

// NewOllamaClient creates a new client for interacting with an Ollama server.
// baseURL may be given with or without the trailing /api path.
func NewOllamaClient(modelName string, baseURL string, httpClient *http.Client) (*OllamaClient, error) {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	baseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/api")

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &OllamaClient{
		client:    api.NewClient(u, httpClient),
		baseURL:   baseURL,
		modelName: modelName,
	}, nil
}

// Model returns the model name
func (c *OllamaClient) Model() string { return c.modelName }

func (c *OllamaClient) request(messages []models.Message, config ModelConfig, stream bool) *api.ChatRequest {
	ollamaMessages := make([]api.Message, len(messages))
	for i, msg := range messages {
		ollamaMessages[i] = api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	options := map[string]interface{}{
		"temperature": config.Temperature,
		"top_p":       config.TopP,
		"num_predict": config.MaxTokens,
	}

	return &api.ChatRequest{
		Model:    c.modelName,
		Messages: ollamaMessages,
		Stream:   &stream,
		Options:  options,
	}
}

// Chat processes a conversation and returns a response
func (c *OllamaClient) Chat(ctx context.Context, messages []models.Message, config ModelConfig) (models.Message, error) {
	var content strings.Builder
	err := c.client.Chat(ctx, c.request(messages, config, false), func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return models.Message{}, fmt.Errorf("ollama chat: %w", err)
	}

	return models.Message{
		Role:      models.RoleAssistant,
		Content:   content.String(),
		Timestamp: time.Now(),
	}, nil
}

// ChatStream processes a conversation and streams the response fragment by fragment
func (c *OllamaClient) ChatStream(ctx context.Context, messages []models.Message, config ModelConfig) (<-chan Fragment, error) {
	req := c.request(messages, config, true)
	ch := make(chan Fragment, 32)

	go func() {
		defer close(ch)

		err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
			if resp.Done {
				// The final object carries timing metrics, not text
				if resp.Message.Content != "" && !send(ctx, ch, Fragment{Content: resp.Message.Content}) {
					return ctx.Err()
				}
				if !send(ctx, ch, Fragment{Done: true}) {
					return ctx.Err()
				}
				return nil
			}
			if !send(ctx, ch, Fragment{Content: resp.Message.Content}) {
				return ctx.Err()
			}
			return nil
		})
		if err != nil {
			send(ctx, ch, Fragment{Err: fmt.Errorf("ollama chat stream: %w", err)})
		}
	}()

	return ch, nil
}

// Close cleans up any resources
func (c *OllamaClient) Close() error {
	// No cleanup needed for HTTP client
	return nil
}
