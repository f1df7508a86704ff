package llm

import (
	"context"
	"time"

	"github.com/andrew/llm-movie-rec/pkg/metrics"
	"github.com/andrew/llm-movie-rec/pkg/models"
)

// Instrument wraps c so that every request is counted and timed in m.
// A nil m returns c unchanged.
func Instrument(c Client, m *metrics.Metrics) Client {
	if m == nil {
		return c
	}
	return &instrumentedClient{Client: c, metrics: m}
}

type instrumentedClient struct {
	Client
	metrics *metrics.Metrics
}

func (c *instrumentedClient) observe(mode string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.CompletionRequestsTotal.WithLabelValues(c.Model(), mode, status).Inc()
	c.metrics.CompletionRequestDuration.WithLabelValues(c.Model(), mode).Observe(time.Since(start).Seconds())
}

func (c *instrumentedClient) Chat(ctx context.Context, messages []models.Message, config ModelConfig) (models.Message, error) {
	start := time.Now()
	msg, err := c.Client.Chat(ctx, messages, config)
	c.observe("chat", start, err)
	return msg, err
}

func (c *instrumentedClient) ChatStream(ctx context.Context, messages []models.Message, config ModelConfig) (<-chan Fragment, error) {
	start := time.Now()
	in, err := c.Client.ChatStream(ctx, messages, config)
	if err != nil {
		c.observe("stream", start, err)
		return nil, err
	}

	out := make(chan Fragment, cap(in))
	go func() {
		defer close(out)

		var streamErr error
		forwarding := true
		for f := range in {
			if f.Err != nil {
				streamErr = f.Err
			} else if !f.Done {
				c.metrics.CompletionFragmentsTotal.Inc()
			}
			// Keep draining after the reader has gone so the producer can exit
			if forwarding && !send(ctx, out, f) {
				forwarding = false
			}
		}
		c.observe("stream", start, streamErr)
	}()

	return out, nil
}
