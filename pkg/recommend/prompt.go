// Package recommend builds the explanation and ranking prompts around a
// viewing history and reads the model's answers back.
package recommend

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/andrew/llm-movie-rec/pkg/models"
)

const noTags = "-"

// HistoryPrompt renders a viewing history, oldest first
func HistoryPrompt(history []models.Movie) string {
	var b strings.Builder
	b.WriteString("Movie History:\n")
	for _, m := range history {
		tags := strings.Join(m.Tags, ", ")
		if tags == "" {
			tags = noTags
		}
		fmt.Fprintf(&b, "  - title: %s\n", m.Title)
		fmt.Fprintf(&b, "    genres: %s\n", strings.Join(m.Genres, ", "))
		fmt.Fprintf(&b, "    my tags: %s\n", tags)
	}
	return b.String()
}

// ProfilePrompt describes a user to the ranker by their viewing history
func ProfilePrompt(history []models.Movie) string {
	return HistoryPrompt(history) +
		"The user has watched and liked the above movies.\n" +
		"They are given in the order that the user watched them with the one watched most recently being last on the list.\n"
}

// ProfileYAML describes a user to the ranker by a profile collected in dialogue
func ProfileYAML(p models.UserProfile) (string, error) {
	b, err := yaml.Marshal(map[string]models.UserProfile{"user profile": p})
	if err != nil {
		return "", fmt.Errorf("rendering profile: %w", err)
	}
	return string(b), nil
}

// CandidatePoolPrompt renders the candidates with their stable indices
func CandidatePoolPrompt(candidates []models.Movie) string {
	var b strings.Builder
	b.WriteString("Candidate Pool:\n")
	for i, m := range candidates {
		fmt.Fprintf(&b, "  - index: %d\n", i)
		fmt.Fprintf(&b, "    title: %s\n", m.Title)
		fmt.Fprintf(&b, "    genres: %s\n", strings.Join(m.Genres, ", "))
	}
	return b.String()
}

func explanationRequest(history []models.Movie) string {
	return HistoryPrompt(history) +
		"I have watched and liked the above movies.\n" +
		"They are given in the order I watched them with the one I watch most recently being last on the list.\n" +
		"Please suggest a movie for me to watch next."
}

func explanationSuggestion(rec models.Movie) string {
	return "A fun challenge!\n" +
		"After analyzing your movie preferences, I've identified some common themes and genres that you seem to enjoy.\n" +
		"Considering these patterns, here's a movie suggestion for you:\n" +
		fmt.Sprintf("  title: %s\n", rec.Title) +
		fmt.Sprintf("  genres: %s\n", strings.Join(rec.Genres, ", ")) +
		"Give it a try and let me know what you think!"
}

const explanationQuestion = "Could you please explain why you think I should watch this movie?"

func rankingRequest(profile string, candidates []models.Movie) string {
	return "~~~\n" +
		profile + "\n" +
		"~~~\n" +
		"Based on the user's profile above, order the items in the candidate pool from best to worst recommendation for the user.\n" +
		"Respond ONLY with a comma separated list of indices surrounded by triple curly braces (i.e. {{{1, 2, 3 ...}}}).\n" +
		CandidatePoolPrompt(candidates)
}
