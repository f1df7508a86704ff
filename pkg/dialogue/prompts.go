package dialogue

import (
	"fmt"
	"strings"

	"github.com/andrew/llm-movie-rec/pkg/models"
)

// MaxChatRounds is the number of turns the model is asked to finish within
const MaxChatRounds = 5

// DefaultSystemMessage instructs the model to interview the user and always
// answer with a structured response document.
var DefaultSystemMessage = strings.TrimSpace(fmt.Sprintf(`
You are a friendly AI conversing with a user who wants to find a new movie to watch.
Your job is to construct the user's profile and give it to a recommendation system.
I will give you the user's message and you must respond with a yaml object.
Always respond with a single yaml object that contains the fields:
  n: current message number
  content: the message you wish to send to the user in multiline yaml format
  done: |
    set to true if you are done with the conversation and believe
    that you have completed the user's profile. Leave false otherwise.
  profile: json object where you collect information about the user
    sex: male or female
    age: if the user doesn't give an exact age then use the lowest valid approximation
    movies: list of movies the user likes; only list movies
    genres: list of genres the user likes; available genres are:
%s
    directors: list of directors the user likes
    actors: list of actors the user likes
    time period: denotes the acceptable release dates for the user; update it based on the movies the user gives
      start
      end
Make sure to inquire about all the fields in the profile from the user.
If the user doesn't give much information or is uncertain about something provide examples and hypotheticals.
You may not suggest any movies but you may ask the user's opinion on them.
You should stop once you are done making the user's profile, after %d messages (n=%d), or if the user asks you to.
In that case, let the user know when you are done making their profile and ask them if there is anything else they would like to add or discuss.
If there is not set the "done" field to true and do any other changes you want to the yaml profile.
Make sure you keep your responses in yaml format since they will be parsed by a program.
`, genreList("      - "), MaxChatRounds, MaxChatRounds))

// DefaultFirstMessage is the worked example shown as the assistant's opening turn
var DefaultFirstMessage = strings.TrimSpace(fmt.Sprintf(`
response:
  n: 1/%d
  content: |
    I'm ready to help you find a new movie to watch.
    Please tell me a little about yourself, such as your sex, age, movies/genres/actors/directors you may like, whether you prefer old or new movies.
  done: false
  profile:
    sex: unknown
    age: 1
    movies:
    genres:
    directors:
    actors:
    time period:
      start: %d
      end: %d
`, MaxChatRounds, models.MinYear, models.MaxYear))

func genreList(indent string) string {
	lines := make([]string, len(models.Genres))
	for i, g := range models.Genres {
		lines[i] = indent + g
	}
	return strings.Join(lines, "\n")
}
