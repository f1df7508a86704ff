// Package dialogue runs the interactive interview that builds a user's movie
// preference profile. The model is asked to answer every turn with a
// structured response document; the profile is read back from the newest
// assistant message that parses once the dialogue is over.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/andrew/llm-movie-rec/pkg/llm"
	"github.com/andrew/llm-movie-rec/pkg/models"
)

const (
	// Sentinel typed as a whole message ends the dialogue without another request
	Sentinel = "!q"

	// DefaultTurnLimit caps user turns regardless of whether the model stops on its own
	DefaultTurnLimit = 4 * MaxChatRounds
)

// Conversation owns the message history of one interactive session.
// It is not safe for concurrent use.
type Conversation struct {
	ID string

	client         llm.Client
	config         llm.ModelConfig
	systemMessage  string
	firstMessage   string
	multiline      bool
	turnLimit      int
	requestTimeout time.Duration
	presenter      Presenter
	log            zerolog.Logger

	created  time.Time
	messages []models.Message
}

// Option configures a Conversation
type Option func(*Conversation)

// WithModelConfig overrides the sampling parameters
func WithModelConfig(cfg llm.ModelConfig) Option {
	return func(c *Conversation) { c.config = cfg }
}

// WithSystemMessage replaces the interview instructions
func WithSystemMessage(s string) Option {
	return func(c *Conversation) { c.systemMessage = s }
}

// WithFirstMessage replaces the example opening turn
func WithFirstMessage(s string) Option {
	return func(c *Conversation) { c.firstMessage = s }
}

// WithMultiline reads every line up to end of input as one user message
func WithMultiline(multiline bool) Option {
	return func(c *Conversation) { c.multiline = multiline }
}

// WithTurnLimit sets the hard cap on user turns
func WithTurnLimit(n int) Option {
	return func(c *Conversation) {
		if n > 0 {
			c.turnLimit = n
		}
	}
}

// WithRequestTimeout bounds each completion request, stream included
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Conversation) { c.requestTimeout = d }
}

// WithPresenter sets where the transcript is rendered
func WithPresenter(p Presenter) Option {
	return func(c *Conversation) {
		if p != nil {
			c.presenter = p
		}
	}
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) Option {
	return func(c *Conversation) { c.log = log }
}

// New creates a conversation that talks to client
func New(client llm.Client, opts ...Option) *Conversation {
	c := &Conversation{
		ID:            uuid.New().String(),
		client:        client,
		config:        llm.DefaultModelConfig(),
		systemMessage: DefaultSystemMessage,
		firstMessage:  DefaultFirstMessage,
		turnLimit:     DefaultTurnLimit,
		presenter:     nopPresenter{},
		log:           zerolog.Nop(),
		created:       time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("conversation", c.ID).Logger()
	return c
}

// Converse runs the dialogue reading user messages from in, then extracts the
// profile. Transport errors end the dialogue and are returned as is; a
// conversation with no parsable assistant message returns ErrExtractionExhausted.
func (c *Conversation) Converse(ctx context.Context, in io.Reader) (models.UserProfile, error) {
	if len(c.messages) > 0 {
		return models.UserProfile{}, errors.New("conversation already used")
	}
	if err := c.run(ctx, in); err != nil {
		return models.UserProfile{}, err
	}
	return c.Profile()
}

func (c *Conversation) run(ctx context.Context, in io.Reader) error {
	c.presenter.Begin(c.multiline)
	defer c.presenter.End()

	c.messages = append(c.messages,
		models.NewMessage(models.RoleSystem, c.systemMessage),
		models.NewMessage(models.RoleAssistant, c.firstMessage),
	)
	c.presenter.Assistant()
	c.presenter.Fragment(c.firstMessage)

	input := newInputReader(in, c.multiline)
	for turn := 0; ; turn++ {
		if turn >= c.turnLimit {
			c.log.Warn().Int("turn_limit", c.turnLimit).Msg("turn limit reached, ending dialogue")
			return nil
		}

		c.presenter.User()
		content, err := input.Read()
		if errors.Is(err, io.EOF) {
			c.log.Debug().Int("turn", turn).Msg("end of input")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading user input: %w", err)
		}
		if content == Sentinel {
			c.log.Debug().Int("turn", turn).Msg("user ended dialogue")
			return nil
		}
		c.messages = append(c.messages, models.NewMessage(models.RoleUser, content))

		reply, err := c.complete(ctx)
		if err != nil {
			return err
		}
		c.messages = append(c.messages, models.NewMessage(models.RoleAssistant, reply))
	}
}

// complete streams one assistant reply, rendering each fragment as it arrives
func (c *Conversation) complete(ctx context.Context) (string, error) {
	var cancel context.CancelFunc
	if c.requestTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	start := time.Now()
	stream, err := c.client.ChatStream(ctx, c.Messages(), c.config)
	if err != nil {
		return "", fmt.Errorf("requesting completion: %w", err)
	}

	c.presenter.Assistant()
	var reply strings.Builder
	for f := range stream {
		if f.Err != nil {
			return "", fmt.Errorf("streaming completion: %w", f.Err)
		}
		if f.Done {
			continue
		}
		c.presenter.Fragment(f.Content)
		reply.WriteString(f.Content)
	}

	c.log.Debug().
		Str("model", c.client.Model()).
		Int("messages", len(c.messages)).
		Int("reply_bytes", reply.Len()).
		Dur("duration", time.Since(start)).
		Msg("completion received")
	return reply.String(), nil
}

// Profile extracts the profile from the newest assistant message that parses
func (c *Conversation) Profile() (models.UserProfile, error) {
	resp, index, err := lastResponse(c.messages, func(index int, err error) {
		c.log.Debug().Int("index", index).Err(err).Msg("skipping unparsable assistant message")
	})
	if err != nil {
		c.log.Error().Err(err).Msg("profile extraction failed")
		return models.UserProfile{}, err
	}
	c.log.Debug().Int("index", index).Stringer("turn", resp.Turn).Bool("done", resp.Done).Msg("profile extracted")
	return resp.Profile, nil
}

// Messages returns a copy of the message history
func (c *Conversation) Messages() []models.Message {
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Transcript returns a snapshot of the conversation
func (c *Conversation) Transcript() models.Chat {
	updated := c.created
	if n := len(c.messages); n > 0 {
		updated = c.messages[n-1].Timestamp
	}
	return models.Chat{
		ID:       c.ID,
		Messages: c.Messages(),
		Created:  c.created,
		Updated:  updated,
	}
}
