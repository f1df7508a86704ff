package dialogue

import (
	"errors"
	"reflect"
	"testing"

	"github.com/andrew/llm-movie-rec/pkg/models"
)

const wellFormed = `response:
  n: 3/5
  content: |
    Thanks! One more question.
    Any favourite directors?
  done: true
  profile:
    sex: female
    age: 27
    movies:
      - Heat
      - Alien
    genres:
      - Crime
      - Sci-Fi
    directors:
      - Michael Mann
    actors:
      - Al Pacino
      - Sigourney Weaver
    time period:
      start: 1975
      end: 2020
`

func TestParseResponse_WellFormed(t *testing.T) {
	resp, err := ParseResponse(wellFormed)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}

	want := &Response{
		Turn:    Turn{Current: 3, Total: 5},
		Content: "Thanks! One more question.\nAny favourite directors?\n",
		Done:    true,
		Profile: models.UserProfile{
			Sex:        models.SexFemale,
			Age:        27,
			Movies:     []string{"Heat", "Alien"},
			Genres:     []string{"Crime", "Sci-Fi"},
			Directors:  []string{"Michael Mann"},
			Actors:     []string{"Al Pacino", "Sigourney Weaver"},
			TimePeriod: models.TimePeriod{Start: 1975, End: 2020},
		},
	}
	if !reflect.DeepEqual(resp, want) {
		t.Errorf("ParseResponse =\n%+v\nwant\n%+v", resp, want)
	}
}

func TestParseResponse_MissingOptionalFields(t *testing.T) {
	resp, err := ParseResponse(`response:
  n: 2
  content: Tell me more.
  done: false
  profile:
    movies:
    genres:
`)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	p := resp.Profile
	if p.Sex != models.SexUnknown || p.Age != 0 {
		t.Errorf("sex/age = %q/%d, want unknown/0", p.Sex, p.Age)
	}
	for name, list := range map[string][]string{
		"movies": p.Movies, "genres": p.Genres, "directors": p.Directors, "actors": p.Actors,
	} {
		if list == nil || len(list) != 0 {
			t.Errorf("%s = %#v, want empty non-nil list", name, list)
		}
	}
	if p.TimePeriod != (models.TimePeriod{Start: 0, End: 9999}) {
		t.Errorf("time period = %+v, want default", p.TimePeriod)
	}
	if resp.Turn.Current != 2 {
		t.Errorf("turn = %+v, want 2", resp.Turn)
	}
}

func TestParseResponse_DefaultFirstMessage(t *testing.T) {
	resp, err := ParseResponse(DefaultFirstMessage)
	if err != nil {
		t.Fatalf("seed message must parse: %v", err)
	}
	if resp.Turn != (Turn{Current: 1, Total: MaxChatRounds}) {
		t.Errorf("turn = %+v", resp.Turn)
	}
	if resp.Done {
		t.Error("seed message should not be done")
	}
	if resp.Profile.Age != 1 || resp.Profile.Sex != models.SexUnknown {
		t.Errorf("unexpected seed profile: %+v", resp.Profile)
	}
}

func TestParseResponse_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"prose", "Sure! I'd love to help you find a movie."},
		{"prose with colon", "Note: I forgot the format"},
		{"missing response key", "n: 1\ncontent: hi\n"},
		{"missing profile", "response:\n  n: 1\n  content: hi\n  done: false\n"},
		{"broken yaml", "response:\n  n: 1\n content: [unclosed\n"},
		{"non boolean done", "response:\n  done: maybe\n  profile:\n    age: 3\n"},
		{"mapping content", "response:\n  content:\n    a: b\n  profile:\n    age: 3\n"},
		{"mapping movies", "response:\n  profile:\n    movies:\n      a: b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.content)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("err = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestParseResponse_CodeFence(t *testing.T) {
	content := "Here is my reply:\n```yaml\n" + wellFormed + "```\nHope that helps!"
	resp, err := ParseResponse(content)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if resp.Profile.Age != 27 {
		t.Errorf("age = %d, want 27", resp.Profile.Age)
	}
}

func TestParseResponse_Coercion(t *testing.T) {
	resp, err := ParseResponse(`response:
  n: third
  content: 42
  done: "Yes"
  profile:
    sex: MALE
    age: early 30s
    movies: 1917
    genres:
      - sci-fi
      - Space Opera
      - Sci-Fi
      - film-noir
    directors: Sam Mendes
    actors:
      - Tom Hanks
      - Tom Hanks
    time period:
      start: 1990
`)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if resp.Turn.Raw != "third" {
		t.Errorf("turn = %+v, want raw third", resp.Turn)
	}
	if resp.Content != "42" || !resp.Done {
		t.Errorf("content/done = %q/%v", resp.Content, resp.Done)
	}
	p := resp.Profile
	if p.Sex != models.SexMale {
		t.Errorf("sex = %q, want male", p.Sex)
	}
	if p.Age != 30 {
		t.Errorf("age = %d, want 30", p.Age)
	}
	if !reflect.DeepEqual(p.Movies, []string{"1917"}) {
		t.Errorf("movies = %q", p.Movies)
	}
	if !reflect.DeepEqual(p.Genres, []string{"Sci-Fi", "Film-Noir"}) {
		t.Errorf("genres = %q", p.Genres)
	}
	if !reflect.DeepEqual(p.Directors, []string{"Sam Mendes"}) {
		t.Errorf("directors = %q", p.Directors)
	}
	if !reflect.DeepEqual(p.Actors, []string{"Tom Hanks"}) {
		t.Errorf("actors = %q", p.Actors)
	}
	if p.TimePeriod != (models.TimePeriod{Start: 1990, End: 9999}) {
		t.Errorf("time period = %+v", p.TimePeriod)
	}
}

func TestTurn_String(t *testing.T) {
	tests := []struct {
		turn Turn
		want string
	}{
		{Turn{Current: 2}, "2"},
		{Turn{Current: 2, Total: 5}, "2/5"},
		{Turn{Raw: "last"}, "last"},
	}
	for _, tt := range tests {
		if got := tt.turn.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.turn, got, tt.want)
		}
	}
}

func TestExtractProfile_SkipsMalformedNewest(t *testing.T) {
	messages := []models.Message{
		models.NewMessage(models.RoleSystem, DefaultSystemMessage),
		models.NewMessage(models.RoleAssistant, DefaultFirstMessage),
		models.NewMessage(models.RoleUser, "I'm 27 and love heist movies"),
		models.NewMessage(models.RoleAssistant, wellFormed),
		models.NewMessage(models.RoleUser, "anything else?"),
		models.NewMessage(models.RoleAssistant, "Sorry, I lost track of the format."),
	}

	profile, err := ExtractProfile(messages)
	if err != nil {
		t.Fatalf("ExtractProfile: %v", err)
	}
	if profile.Age != 27 {
		t.Errorf("age = %d, want 27 from the second-to-last assistant message", profile.Age)
	}
}

func TestExtractProfile_Exhausted(t *testing.T) {
	tests := []struct {
		name     string
		messages []models.Message
	}{
		{"no messages", nil},
		{"only malformed assistant content", []models.Message{
			models.NewMessage(models.RoleAssistant, "hello"),
			models.NewMessage(models.RoleUser, wellFormed),
			models.NewMessage(models.RoleAssistant, "response: nope"),
		}},
		{"well-formed text only in non-assistant messages", []models.Message{
			models.NewMessage(models.RoleSystem, wellFormed),
			models.NewMessage(models.RoleUser, wellFormed),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := ExtractProfile(tt.messages)
			if !errors.Is(err, ErrExtractionExhausted) {
				t.Fatalf("err = %v, want ErrExtractionExhausted", err)
			}
			if !reflect.DeepEqual(profile, models.UserProfile{}) {
				t.Errorf("profile = %+v, want zero value", profile)
			}
		})
	}
}
