package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/andrew/llm-movie-rec/pkg/llm"
	"github.com/andrew/llm-movie-rec/pkg/metrics"
	"github.com/andrew/llm-movie-rec/pkg/models"
)

// Ranker asks the model to order a candidate pool for a user
type Ranker struct {
	client   llm.Client
	config   llm.ModelConfig
	log      zerolog.Logger
	metrics  *metrics.Metrics
	messages []models.Message
	reply    string
}

// NewRanker creates a Ranker using the default sampling parameters.
// m may be nil.
func NewRanker(client llm.Client, log zerolog.Logger, m *metrics.Metrics) *Ranker {
	return &Ranker{
		client:  client,
		config:  llm.DefaultModelConfig(),
		log:     log.With().Str("flow", "rank").Logger(),
		metrics: m,
	}
}

// Rank returns candidate indices ordered best to worst for the user described
// by profile. The result is parsed, not validated; callers that need a
// permutation should check it with ValidatePermutation.
func (r *Ranker) Rank(ctx context.Context, profile string, candidates []models.Movie) ([]int, error) {
	r.messages = append(r.messages, models.NewMessage(models.RoleUser, rankingRequest(profile, candidates)))

	start := time.Now()
	reply, err := r.client.Chat(ctx, r.Messages(), r.config)
	if err != nil {
		return nil, fmt.Errorf("requesting ranking: %w", err)
	}
	r.reply = reply.Content

	indices, err := ParseRanking(reply.Content)
	if err != nil {
		r.metrics.RecordParseFailure("ranking")
		r.log.Warn().Err(err).Str("reply", reply.Content).Msg("unparsable ranking")
		return nil, err
	}
	r.log.Debug().
		Int("candidates", len(candidates)).
		Ints("ranking", indices).
		Dur("duration", time.Since(start)).
		Msg("ranking received")
	return indices, nil
}

// Messages returns a copy of the messages sent so far
func (r *Ranker) Messages() []models.Message {
	out := make([]models.Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Reply returns the raw text of the last ranking reply
func (r *Ranker) Reply() string { return r.reply }
