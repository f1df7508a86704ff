package movielens

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/andrew/llm-movie-rec/pkg/models"
)

const (
	DefaultCandidates    = 10
	DefaultHistoryLength = 25
)

// ErrHistoryTooShort is returned when a history cannot supply the movies asked for
var ErrHistoryTooShort = errors.New("history too short")

// SplitCandidates holds out the last n movies of history as a candidate pool,
// shuffled with rng, and returns up to historyLen movies watched before them.
// A nil rng uses the global source.
func SplitCandidates(history []models.Movie, n, historyLen int, rng *rand.Rand) (candidates, rest []models.Movie, err error) {
	if n <= 0 || len(history) <= n {
		return nil, nil, fmt.Errorf("%w: %d liked movies for %d candidates", ErrHistoryTooShort, len(history), n)
	}

	split := len(history) - n
	candidates = slices.Clone(history[split:])
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return candidates, tail(history[:split], historyLen), nil
}

// SplitRecommendation holds out the most recent movie of history as the
// recommendation to explain and returns up to historyLen movies watched before it.
func SplitRecommendation(history []models.Movie, historyLen int) (models.Movie, []models.Movie, error) {
	if len(history) < 2 {
		return models.Movie{}, nil, fmt.Errorf("%w: %d liked movies", ErrHistoryTooShort, len(history))
	}
	last := len(history) - 1
	return history[last], tail(history[:last], historyLen), nil
}

// ByRating returns a copy of movies ordered by rating, highest first
func ByRating(movies []models.Movie) []models.Movie {
	out := slices.Clone(movies)
	slices.SortStableFunc(out, func(a, b models.Movie) int {
		switch {
		case a.Rating > b.Rating:
			return -1
		case a.Rating < b.Rating:
			return 1
		}
		return 0
	})
	return out
}

func tail(movies []models.Movie, n int) []models.Movie {
	if n >= 0 && len(movies) > n {
		movies = movies[len(movies)-n:]
	}
	return slices.Clone(movies)
}
