package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrew/llm-movie-rec/pkg/console"
	"github.com/andrew/llm-movie-rec/pkg/dialogue"
	"github.com/andrew/llm-movie-rec/pkg/models"
	"github.com/andrew/llm-movie-rec/pkg/recommend"
)

var (
	multiline bool
	turnLimit int
)

var converseCmd = &cobra.Command{
	Use:   "converse",
	Short: "Interview the user and print the collected profile",
	Long: `Run an interactive interview in which the model collects the user's movie
preferences, then print the extracted profile as YAML.

Send "!q" as a message to stop at any time. With --multiline a message ends
at end of input (Ctrl-D on *nix, Ctrl-Z+Return on Windows) instead of at
the end of the line.

Examples:
  movierec converse
  movierec converse --multiline --turn-limit 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		out := console.New(os.Stdout)

		// Reading stdin cannot be interrupted, so leave straight away on a
		// signal after restoring the terminal colours.
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sig
			cancel()
			out.End()
			fmt.Fprintln(os.Stderr, "Shutting down...")
			os.Exit(130)
		}()

		conv := dialogue.New(client,
			dialogue.WithMultiline(multiline),
			dialogue.WithTurnLimit(turnLimit),
			dialogue.WithPresenter(out),
			dialogue.WithLogger(log),
		)
		log.Debug().Str("conversation", conv.ID).Str("model", client.Model()).Msg("starting conversation")

		profile, err := conv.Converse(ctx, os.Stdin)
		if err != nil {
			return fmt.Errorf("conversation %s: %w", conv.ID, err)
		}
		return printProfile(profile)
	},
}

func init() {
	converseCmd.Flags().BoolVar(&multiline, "multiline", false, "read each message until end of input")
	converseCmd.Flags().IntVar(&turnLimit, "turn-limit", dialogue.DefaultTurnLimit, "maximum number of user messages")
}

func printProfile(p models.UserProfile) error {
	out, err := recommend.ProfileYAML(p)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(out)
	return nil
}
