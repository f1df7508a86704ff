package recommend

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	rankingOpen  = "{{{"
	rankingClose = "}}}"
)

var (
	// ErrMalformedRankingOutput is returned when a reply holds no usable index list
	ErrMalformedRankingOutput = errors.New("malformed ranking output")

	// ErrNotPermutation is returned when a ranking is not a permutation of the pool indices
	ErrNotPermutation = errors.New("ranking is not a permutation of the candidate pool")
)

// ParseRanking extracts the index list written between the first "{{{" and the
// last "}}}" of a reply, separated by ", ". It does not check the indices
// against the candidate pool; see ValidatePermutation.
func ParseRanking(text string) ([]int, error) {
	start := strings.Index(text, rankingOpen)
	if start < 0 {
		return nil, fmt.Errorf("%w: no opening %q", ErrMalformedRankingOutput, rankingOpen)
	}
	start += len(rankingOpen)
	end := strings.LastIndex(text, rankingClose)
	if end < 0 {
		return nil, fmt.Errorf("%w: no closing %q", ErrMalformedRankingOutput, rankingClose)
	}
	if end < start {
		return nil, fmt.Errorf("%w: closing marker precedes opening marker", ErrMalformedRankingOutput)
	}

	body := text[start:end]
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: empty list", ErrMalformedRankingOutput)
	}

	tokens := strings.Split(body, ", ")
	indices := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return nil, fmt.Errorf("%w: bad index %q", ErrMalformedRankingOutput, tok)
		}
		indices = append(indices, n)
	}
	return indices, nil
}

// ValidatePermutation checks that indices contains each of 0..n-1 exactly once
func ValidatePermutation(indices []int, n int) error {
	if len(indices) != n {
		return fmt.Errorf("%w: got %d indices for %d candidates", ErrNotPermutation, len(indices), n)
	}
	seen := make([]bool, n)
	for _, i := range indices {
		if i < 0 || i >= n {
			return fmt.Errorf("%w: index %d out of range", ErrNotPermutation, i)
		}
		if seen[i] {
			return fmt.Errorf("%w: index %d repeated", ErrNotPermutation, i)
		}
		seen[i] = true
	}
	return nil
}
