package models

import "strings"

// Sex is the user's sex as understood from the conversation
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// ParseSex maps free text onto a Sex, falling back to SexUnknown
func ParseSex(s string) Sex {
	switch Sex(strings.ToLower(strings.TrimSpace(s))) {
	case SexMale:
		return SexMale
	case SexFemale:
		return SexFemale
	default:
		return SexUnknown
	}
}

const (
	// MinYear is the default lower bound of an acceptable release period
	MinYear = 0
	// MaxYear is the default upper bound of an acceptable release period
	MaxYear = 9999
)

// TimePeriod bounds the release years a user will accept
type TimePeriod struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Genres is the closed set of genres a profile may contain
var Genres = []string{
	"Action",
	"Adventure",
	"Animation",
	"Children's",
	"Comedy",
	"Crime",
	"Documentary",
	"Drama",
	"Fantasy",
	"Film-Noir",
	"Horror",
	"Musical",
	"Mystery",
	"Romance",
	"Sci-Fi",
	"Thriller",
	"War",
	"Western",
}

// NormalizeGenre returns the canonical spelling of g and whether g is a known genre
func NormalizeGenre(g string) (string, bool) {
	g = strings.TrimSpace(g)
	for _, known := range Genres {
		if strings.EqualFold(g, known) {
			return known, true
		}
	}
	return "", false
}

// UserProfile is the preference record collected by the dialogue
type UserProfile struct {
	Sex        Sex        `json:"sex" yaml:"sex"`
	Age        int        `json:"age" yaml:"age"`
	Movies     []string   `json:"movies" yaml:"movies"`
	Genres     []string   `json:"genres" yaml:"genres"`
	Directors  []string   `json:"directors" yaml:"directors"`
	Actors     []string   `json:"actors" yaml:"actors"`
	TimePeriod TimePeriod `json:"time_period" yaml:"time period"`
}

// DefaultProfile returns an empty profile with an unbounded time period
func DefaultProfile() UserProfile {
	return UserProfile{
		Sex:        SexUnknown,
		Movies:     []string{},
		Genres:     []string{},
		Directors:  []string{},
		Actors:     []string{},
		TimePeriod: TimePeriod{Start: MinYear, End: MaxYear},
	}
}
