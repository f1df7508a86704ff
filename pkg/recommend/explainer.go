package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/andrew/llm-movie-rec/pkg/llm"
	"github.com/andrew/llm-movie-rec/pkg/models"
)

// Explainer asks the model to justify a recommendation it is told it made
type Explainer struct {
	client   llm.Client
	config   llm.ModelConfig
	log      zerolog.Logger
	messages []models.Message
}

// NewExplainer creates an Explainer using the default sampling parameters
func NewExplainer(client llm.Client, log zerolog.Logger) *Explainer {
	return &Explainer{
		client: client,
		config: llm.DefaultModelConfig(),
		log:    log.With().Str("flow", "explain").Logger(),
	}
}

// Explain presents history and a suggestion for rec as if the model had made it,
// asks why, and returns the model's answer.
func (e *Explainer) Explain(ctx context.Context, history []models.Movie, rec models.Movie) (string, error) {
	e.messages = append(e.messages,
		models.NewMessage(models.RoleUser, explanationRequest(history)),
		models.NewMessage(models.RoleAssistant, explanationSuggestion(rec)),
		models.NewMessage(models.RoleUser, explanationQuestion),
	)

	start := time.Now()
	reply, err := e.client.Chat(ctx, e.Messages(), e.config)
	if err != nil {
		return "", fmt.Errorf("requesting explanation: %w", err)
	}
	e.log.Debug().
		Int("history", len(history)).
		Str("recommendation", rec.Title).
		Dur("duration", time.Since(start)).
		Msg("explanation received")

	return reply.Content, nil
}

// Messages returns a copy of the messages sent so far
func (e *Explainer) Messages() []models.Message {
	out := make([]models.Message, len(e.messages))
	copy(out, e.messages)
	return out
}
