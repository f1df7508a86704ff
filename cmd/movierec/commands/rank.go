package commands

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrew/llm-movie-rec/pkg/models"
	"github.com/andrew/llm-movie-rec/pkg/movielens"
	"github.com/andrew/llm-movie-rec/pkg/recommend"
)

var (
	rankUserID    int
	rankHistory   int
	numCandidates int
	seed          uint64
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Ask the model to order held-out movies",
	Long: `Hold out a MovieLens user's most recently liked movies as a shuffled candidate
pool, describe the user by the movies liked before them, and ask the model to
order the pool. The model's order is printed next to the user's actual ratings.

Examples:
  movierec rank --user 62
  movierec rank --user 62 --candidates 5 --seed 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := loadHistory(rankUserID)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("seed") {
			seed = uint64(time.Now().UnixNano())
		}
		rng := rand.New(rand.NewPCG(seed, seed))
		candidates, history, err := movielens.SplitCandidates(history, numCandidates, rankHistory, rng)
		if err != nil {
			return fmt.Errorf("user %d: %w", rankUserID, err)
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		ctx, cancel := signalContext()
		defer cancel()

		fmt.Println("Initial order:")
		printMovies(candidates, true)

		ranker := recommend.NewRanker(client, log, met)
		ranking, err := ranker.Rank(ctx, recommend.ProfilePrompt(history), candidates)
		if err != nil {
			return err
		}
		if err := recommend.ValidatePermutation(ranking, len(candidates)); err != nil {
			met.RecordParseFailure("permutation")
			return fmt.Errorf("%w (reply: %q)", err, ranker.Reply())
		}

		fmt.Println("LLM order:")
		ordered := make([]models.Movie, len(ranking))
		for i, idx := range ranking {
			ordered[i] = candidates[idx]
		}
		printMovies(ordered, false)

		fmt.Println("Actual order:")
		printMovies(movielens.ByRating(candidates), true)

		fmt.Println()
		fmt.Println("Message given to the LLM")
		fmt.Println(ranker.Messages()[0].Content)
		log.Debug().Uint64("seed", seed).Msg("ranking done")
		return nil
	},
}

func init() {
	rankCmd.Flags().IntVarP(&rankUserID, "user", "u", 62, "MovieLens user id")
	rankCmd.Flags().IntVar(&rankHistory, "history", movielens.DefaultHistoryLength, "number of liked movies describing the user")
	rankCmd.Flags().IntVarP(&numCandidates, "candidates", "n", movielens.DefaultCandidates, "size of the candidate pool")
	rankCmd.Flags().Uint64Var(&seed, "seed", 0, "shuffle seed (random when unset)")
}

func printMovies(movies []models.Movie, withRating bool) {
	for i, m := range movies {
		if withRating {
			fmt.Printf("\t%2d) %s [%.1f]\n", i+1, m.Title, m.Rating)
		} else {
			fmt.Printf("\t%2d) %s\n", i+1, m.Title)
		}
	}
}
