package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrew/llm-movie-rec/pkg/console"
	"github.com/andrew/llm-movie-rec/pkg/models"
	"github.com/andrew/llm-movie-rec/pkg/movielens"
	"github.com/andrew/llm-movie-rec/pkg/recommend"
)

var (
	userID        int
	historyLength int
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Ask the model to justify a recommendation",
	Long: `Take a MovieLens user's liked movies, present the most recent one to the model
as its own suggestion, and ask it to explain why the user should watch it.
The full exchange is printed.

Examples:
  movierec explain --user 62
  movierec explain --user 62 --history 10 --data ./ml-latest-small`,
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := loadHistory(userID)
		if err != nil {
			return err
		}
		rec, history, err := movielens.SplitRecommendation(history, historyLength)
		if err != nil {
			return fmt.Errorf("user %d: %w", userID, err)
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		ctx, cancel := signalContext()
		defer cancel()

		explainer := recommend.NewExplainer(client, log)
		explanation, err := explainer.Explain(ctx, history, rec)
		if err != nil {
			return err
		}

		transcript := append(explainer.Messages(), models.NewMessage(models.RoleAssistant, explanation))
		console.New(os.Stdout).PrintTranscript(transcript)
		return nil
	},
}

func init() {
	explainCmd.Flags().IntVarP(&userID, "user", "u", 62, "MovieLens user id")
	explainCmd.Flags().IntVar(&historyLength, "history", movielens.DefaultHistoryLength, "number of liked movies shown to the model")
}
