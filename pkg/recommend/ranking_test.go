package recommend

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"slices"
	"strings"
	"testing"
)

func TestParseRanking(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []int
	}{
		{"surrounded by prose", "blah {{{2, 0, 1}}} blah", []int{2, 0, 1}},
		{"single index", "{{{0}}}", []int{0}},
		{"padded", "{{{ 3, 1, 0, 2 }}}", []int{3, 1, 0, 2}},
		{"multiline reply", "Here you go:\n{{{4, 2, 0, 1, 3}}}\nEnjoy!", []int{4, 2, 0, 1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRanking(tt.text)
			if err != nil {
				t.Fatalf("ParseRanking(%q): %v", tt.text, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseRanking(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseRanking_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no markers", "2, 0, 1"},
		{"no closing marker", "blah {{{2, 0, 1 blah"},
		{"no opening marker", "blah 2, 0, 1}}} blah"},
		{"empty list", "{{{}}}"},
		{"blank list", "{{{   }}}"},
		{"close before open", "}}} {{{"},
		{"non integer", "{{{2, zero, 1}}}"},
		{"wrong separator", "{{{2; 0; 1}}}"},
		{"trailing separator", "{{{2, 0, }}}"},
		{"spans to last close", "{{{1, 0}}} or maybe {{{0, 1}}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRanking(tt.text)
			if !errors.Is(err, ErrMalformedRankingOutput) {
				t.Errorf("ParseRanking(%q) = %v, %v; want ErrMalformedRankingOutput", tt.text, got, err)
			}
		})
	}
}

func TestParseRanking_PermutationProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for n := 1; n <= 30; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			perm := rng.Perm(n)
			parts := make([]string, n)
			for i, p := range perm {
				parts[i] = fmt.Sprint(p)
			}
			reply := "Ranking: {{{" + strings.Join(parts, ", ") + "}}}"

			got, err := ParseRanking(reply)
			if err != nil {
				t.Fatalf("ParseRanking: %v", err)
			}
			if err := ValidatePermutation(got, n); err != nil {
				t.Fatalf("ValidatePermutation: %v", err)
			}
			sorted := slices.Clone(got)
			slices.Sort(sorted)
			for i, v := range sorted {
				if v != i {
					t.Fatalf("sorted ranking = %v, want 0..%d", sorted, n-1)
				}
			}
		})
	}
}

func TestValidatePermutation(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		n       int
		wantErr bool
	}{
		{"identity", []int{0, 1, 2}, 3, false},
		{"shuffled", []int{2, 0, 1}, 3, false},
		{"empty pool", []int{}, 0, false},
		{"too short", []int{0, 1}, 3, true},
		{"too long", []int{0, 1, 2, 3}, 3, true},
		{"duplicate", []int{0, 0, 1}, 3, true},
		{"out of range", []int{0, 1, 3}, 3, true},
		{"negative", []int{-1, 0, 1}, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePermutation(tt.indices, tt.n)
			if tt.wantErr != (err != nil) {
				t.Fatalf("ValidatePermutation(%v, %d) = %v, wantErr %v", tt.indices, tt.n, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNotPermutation) {
				t.Errorf("err = %v, want ErrNotPermutation", err)
			}
		})
	}
}
