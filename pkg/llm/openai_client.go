package llm

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/andrew/llm-movie-rec/pkg/models"
)

// Local OpenAI-compatible servers accept any key but the header must be present
const placeholderAPIKey = "API_KEY"

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint
type OpenAIClient struct {
	client    openai.Client
	modelName string
}

// NewOpenAIClient creates a client for an OpenAI-compatible server.
// An empty baseURL targets the official API.
func NewOpenAIClient(modelName, baseURL, apiKey string, httpClient *http.Client, extra ...option.RequestOption) *OpenAIClient {
	if apiKey == "" {
		apiKey = placeholderAPIKey
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	opts = append(opts, extra...)

	return &OpenAIClient{
		client:    openai.NewClient(opts...),
		modelName: modelName,
	}
}

// Model returns the model name
func (c *OpenAIClient) Model() string { return c.modelName }

func (c *OpenAIClient) params(messages []models.Message, config ModelConfig) (openai.ChatCompletionNewParams, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(msg.Content))
		case models.RoleUser:
			msgs = append(msgs, openai.UserMessage(msg.Content))
		case models.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(msg.Content))
		default:
			return openai.ChatCompletionNewParams{}, fmt.Errorf("unexpected message role: %q", msg.Role)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    c.modelName,
		Messages: msgs,
	}
	if config.Temperature > 0 {
		params.Temperature = openai.Float(widen(config.Temperature))
	}
	if config.TopP > 0 {
		params.TopP = openai.Float(widen(config.TopP))
	}
	if config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(config.MaxTokens))
	}
	return params, nil
}

// Chat processes a conversation and returns a response
func (c *OpenAIClient) Chat(ctx context.Context, messages []models.Message, config ModelConfig) (models.Message, error) {
	params, err := c.params(messages, config)
	if err != nil {
		return models.Message{}, err
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return models.Message{}, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.Message{}, fmt.Errorf("openai chat: no choices")
	}

	return models.Message{
		Role:      models.RoleAssistant,
		Content:   resp.Choices[0].Message.Content,
		Timestamp: time.Now(),
	}, nil
}

// ChatStream processes a conversation and streams the response fragment by fragment.
// The chunk that carries a finish reason becomes the terminal fragment.
func (c *OpenAIClient) ChatStream(ctx context.Context, messages []models.Message, config ModelConfig) (<-chan Fragment, error) {
	params, err := c.params(messages, config)
	if err != nil {
		return nil, err
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
	ch := make(chan Fragment, 32)

	go func() {
		defer close(ch)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			choice := chunk.Choices[0]
			if choice.FinishReason != "" {
				if !send(ctx, ch, Fragment{Done: true}) {
					return
				}
				continue
			}
			if choice.Delta.Content == "" {
				continue
			}
			if !send(ctx, ch, Fragment{Content: choice.Delta.Content}) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			send(ctx, ch, Fragment{Err: fmt.Errorf("openai chat stream: %w", err)})
		}
	}()

	return ch, nil
}

// Close cleans up any resources
func (c *OpenAIClient) Close() error {
	return nil
}

// widen converts f to float64 by its shortest decimal form, so 0.7 is sent as 0.7
// rather than 0.699999988079071
func widen(f float32) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	return v
}
