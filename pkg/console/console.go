// Package console renders conversations to a terminal: user turns in red,
// assistant turns in blue, tips in magenta.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/andrew/llm-movie-rec/pkg/dialogue"
	"github.com/andrew/llm-movie-rec/pkg/models"
)

const (
	userLabel      = "<USER>"
	assistantLabel = "<ASSISTANT>"
	systemLabel    = "<SYSTEM>"

	multilineTip = "[TIP: End your input with Ctrl-Z+Return on Windows and Ctrl-D on *nix at the start of a new line]"
)

var sentinelTip = fmt.Sprintf("[TIP: You can end the conversation at any time by sending %q as your message.]", dialogue.Sentinel)

// Console writes styled conversation output. It implements dialogue.Presenter.
type Console struct {
	out io.Writer

	tip       *color.Color
	userHead  *color.Color
	userBody  *color.Color
	asstHead  *color.Color
	asstBody  *color.Color
	active    *color.Color
	hasOutput bool
}

// Option configures a Console
type Option func(*Console)

// WithColor forces styling on or off regardless of whether out is a terminal
func WithColor(enabled bool) Option {
	return func(c *Console) {
		for _, col := range c.colors() {
			if enabled {
				col.EnableColor()
			} else {
				col.DisableColor()
			}
		}
	}
}

// New creates a Console writing to out, or to stdout when out is nil
func New(out io.Writer, opts ...Option) *Console {
	if out == nil {
		out = os.Stdout
	}
	c := &Console{
		out:      out,
		tip:      color.New(color.FgMagenta, color.Bold),
		userHead: color.New(color.FgRed),
		userBody: color.New(color.FgHiRed, color.Bold),
		asstHead: color.New(color.FgBlue),
		asstBody: color.New(color.FgHiBlue, color.Bold),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) colors() []*color.Color {
	return []*color.Color{c.tip, c.userHead, c.userBody, c.asstHead, c.asstBody}
}

// Begin prints the input tips
func (c *Console) Begin(multiline bool) {
	if multiline {
		c.tip.Fprintln(c.out, multilineTip)
	}
	c.tip.Fprintln(c.out, sentinelTip)
	fmt.Fprintln(c.out)
}

// User starts a user turn. Styling stays applied so typed input is coloured.
func (c *Console) User() {
	c.turn(userLabel, c.userHead, c.userBody)
}

// Assistant starts an assistant turn
func (c *Console) Assistant() {
	c.turn(assistantLabel, c.asstHead, c.asstBody)
}

// Fragment prints streamed text in the current turn's style
func (c *Console) Fragment(text string) {
	fmt.Fprint(c.out, text)
}

// End resets styling
func (c *Console) End() {
	c.reset()
	fmt.Fprintln(c.out)
}

// PrintMessage prints a complete message with its role label
func (c *Console) PrintMessage(m models.Message) {
	switch m.Role {
	case models.RoleUser:
		c.User()
	case models.RoleAssistant:
		c.Assistant()
	default:
		c.turn(systemLabel, c.tip, c.tip)
	}
	fmt.Fprint(c.out, m.Content)
}

// PrintTranscript prints messages in order and resets styling afterwards
func (c *Console) PrintTranscript(messages []models.Message) {
	for _, m := range messages {
		c.PrintMessage(m)
	}
	c.End()
}

func (c *Console) turn(label string, head, body *color.Color) {
	c.reset()
	if c.hasOutput {
		fmt.Fprintln(c.out)
	}
	c.hasOutput = true
	head.Fprintln(c.out, label)
	body.SetWriter(c.out)
	c.active = body
}

func (c *Console) reset() {
	if c.active != nil {
		c.active.UnsetWriter(c.out)
		c.active = nil
	}
}

var _ dialogue.Presenter = (*Console)(nil)
