package dialogue

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/andrew/llm-movie-rec/pkg/models"
)

var (
	// ErrMalformedResponse is returned when a message is not a structured response document
	ErrMalformedResponse = errors.New("malformed structured response")

	// ErrExtractionExhausted is returned when no assistant message in a conversation parses
	ErrExtractionExhausted = errors.New("no assistant message contains a structured response")
)

// Turn is the informational message counter, written by the model as "3" or "3/5"
type Turn struct {
	Current int
	Total   int
	Raw     string
}

func (t Turn) String() string {
	if t.Raw != "" {
		return t.Raw
	}
	if t.Total > 0 {
		return fmt.Sprintf("%d/%d", t.Current, t.Total)
	}
	return strconv.Itoa(t.Current)
}

// Response is one parsed assistant turn
type Response struct {
	Turn    Turn
	Content string
	Done    bool
	Profile models.UserProfile
}

// The raw shapes accept whatever scalar types the model happens to emit;
// conversion into typed fields happens afterwards.
type rawDocument struct {
	Response *rawResponse `yaml:"response"`
}

type rawResponse struct {
	N       any         `yaml:"n"`
	Content any         `yaml:"content"`
	Done    any         `yaml:"done"`
	Profile *rawProfile `yaml:"profile"`
}

type rawProfile struct {
	Sex        any        `yaml:"sex"`
	Age        any        `yaml:"age"`
	Movies     any        `yaml:"movies"`
	Genres     any        `yaml:"genres"`
	Directors  any        `yaml:"directors"`
	Actors     any        `yaml:"actors"`
	TimePeriod *rawPeriod `yaml:"time period"`
}

type rawPeriod struct {
	Start any `yaml:"start"`
	End   any `yaml:"end"`
}

// ParseResponse parses one assistant message into a Response.
// Every failure wraps ErrMalformedResponse.
func ParseResponse(content string) (*Response, error) {
	doc := stripCodeFence(content)
	if strings.TrimSpace(doc) == "" {
		return nil, fmt.Errorf("%w: empty message", ErrMalformedResponse)
	}

	var raw rawDocument
	if err := yaml.Unmarshal([]byte(doc), &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if raw.Response == nil {
		return nil, fmt.Errorf("%w: missing response key", ErrMalformedResponse)
	}
	if raw.Response.Profile == nil {
		return nil, fmt.Errorf("%w: missing profile", ErrMalformedResponse)
	}

	text, err := toText(raw.Response.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: content: %w", ErrMalformedResponse, err)
	}
	done, err := toBool(raw.Response.Done)
	if err != nil {
		return nil, fmt.Errorf("%w: done: %w", ErrMalformedResponse, err)
	}
	profile, err := raw.Response.Profile.toProfile()
	if err != nil {
		return nil, fmt.Errorf("%w: profile: %w", ErrMalformedResponse, err)
	}

	return &Response{
		Turn:    toTurn(raw.Response.N),
		Content: text,
		Done:    done,
		Profile: profile,
	}, nil
}

func (p *rawProfile) toProfile() (models.UserProfile, error) {
	profile := models.DefaultProfile()

	if p.Sex != nil {
		profile.Sex = models.ParseSex(fmt.Sprint(p.Sex))
	}
	profile.Age = toAge(p.Age)

	var err error
	if profile.Movies, err = toSet(p.Movies); err != nil {
		return profile, fmt.Errorf("movies: %w", err)
	}
	if profile.Directors, err = toSet(p.Directors); err != nil {
		return profile, fmt.Errorf("directors: %w", err)
	}
	if profile.Actors, err = toSet(p.Actors); err != nil {
		return profile, fmt.Errorf("actors: %w", err)
	}
	genres, err := toSet(p.Genres)
	if err != nil {
		return profile, fmt.Errorf("genres: %w", err)
	}
	for _, g := range genres {
		if canonical, ok := models.NormalizeGenre(g); ok {
			profile.Genres = appendUnique(profile.Genres, canonical)
		}
	}

	if p.TimePeriod != nil {
		if start, ok := toInt(p.TimePeriod.Start); ok {
			profile.TimePeriod.Start = start
		}
		if end, ok := toInt(p.TimePeriod.End); ok {
			profile.TimePeriod.End = end
		}
	}
	return profile, nil
}

// stripCodeFence returns the body of the first markdown code fence in s,
// or s itself when there is none.
func stripCodeFence(s string) string {
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	rest := s[start+3:]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return s
	}
	rest = rest[nl+1:]
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

func toTurn(v any) Turn {
	if v == nil {
		return Turn{}
	}
	if n, ok := toInt(v); ok {
		return Turn{Current: n}
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if cur, total, found := strings.Cut(s, "/"); found {
		c, err1 := strconv.Atoi(strings.TrimSpace(cur))
		t, err2 := strconv.Atoi(strings.TrimSpace(total))
		if err1 == nil && err2 == nil {
			return Turn{Current: c, Total: t}
		}
	}
	return Turn{Raw: s}
}

func toText(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case map[string]any, []any:
		return "", fmt.Errorf("expected text, got %T", v)
	default:
		return fmt.Sprint(v), nil
	}
}

func toBool(v any) (bool, error) {
	switch v := v.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "on":
			return true, nil
		case "false", "no", "n", "off", "":
			return false, nil
		}
		return false, fmt.Errorf("not a boolean: %q", v)
	default:
		return false, fmt.Errorf("not a boolean: %v", v)
	}
}

func toInt(v any) (int, bool) {
	switch v := v.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		if v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case float64:
		return int(math.Floor(v)), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

var firstInteger = regexp.MustCompile(`\d+`)

// toAge reads an age, taking the first integer out of approximate text such as "30s"
func toAge(v any) int {
	n, ok := toInt(v)
	if !ok {
		if s, isString := v.(string); isString {
			if m := firstInteger.FindString(s); m != "" {
				n, _ = strconv.Atoi(m)
			}
		}
	}
	if n < 0 {
		return 0
	}
	return n
}

// toSet turns a YAML list, single scalar or null into a deduplicated list of strings
func toSet(v any) ([]string, error) {
	out := []string{}
	switch v := v.(type) {
	case nil:
		return out, nil
	case []any:
		for _, item := range v {
			if item == nil {
				continue
			}
			if _, nested := item.(map[string]any); nested {
				return nil, fmt.Errorf("expected a list of strings, found a mapping")
			}
			out = appendUnique(out, fmt.Sprint(item))
		}
		return out, nil
	case map[string]any:
		return nil, fmt.Errorf("expected a list of strings, found a mapping")
	default:
		return appendUnique(out, fmt.Sprint(v)), nil
	}
}

func appendUnique(list []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return list
	}
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

// lastResponse scans messages newest first and returns the first assistant
// message that parses. The scan stops at index 0.
func lastResponse(messages []models.Message, onSkip func(index int, err error)) (*Response, int, error) {
	tried := 0
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != models.RoleAssistant {
			continue
		}
		tried++
		resp, err := ParseResponse(messages[i].Content)
		if err != nil {
			if onSkip != nil {
				onSkip(i, err)
			}
			continue
		}
		return resp, i, nil
	}
	return nil, -1, fmt.Errorf("%w (%d assistant messages tried)", ErrExtractionExhausted, tried)
}

// ExtractProfile returns the profile from the most recent assistant message
// that parses as a structured response.
func ExtractProfile(messages []models.Message) (models.UserProfile, error) {
	resp, _, err := lastResponse(messages, nil)
	if err != nil {
		return models.UserProfile{}, err
	}
	return resp.Profile, nil
}
