// Package movielens loads the MovieLens "latest-small" CSV files and turns a
// user's ratings into the viewing histories the recommendation prompts use.
package movielens

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/andrew/llm-movie-rec/pkg/models"
)

const (
	MoviesFile  = "movies.csv"
	RatingsFile = "ratings.csv"
	TagsFile    = "tags.csv"

	// DefaultMinRating is the rating a movie must exceed to count as liked
	DefaultMinRating = 3.5
)

// ErrUnknownUser is returned when a user has no ratings in the dataset
var ErrUnknownUser = errors.New("user has no ratings")

type rating struct {
	userID    int
	movieID   int
	rating    float64
	timestamp int64
}

type userMovie struct {
	userID  int
	movieID int
}

// Dataset is an in-memory copy of the movies, ratings and tags tables
type Dataset struct {
	movies  map[int]models.Movie
	ratings []rating
	tags    map[userMovie][]string
}

// Load reads movies.csv, ratings.csv and tags.csv from dir.
// A missing tags.csv leaves every movie untagged.
func Load(dir string) (*Dataset, error) {
	d := &Dataset{
		movies: make(map[int]models.Movie),
		tags:   make(map[userMovie][]string),
	}

	if err := readTable(filepath.Join(dir, MoviesFile), []string{"movieId", "title", "genres"}, d.addMovie); err != nil {
		return nil, err
	}
	if err := readTable(filepath.Join(dir, RatingsFile), []string{"userId", "movieId", "rating", "timestamp"}, d.addRating); err != nil {
		return nil, err
	}
	err := readTable(filepath.Join(dir, TagsFile), []string{"userId", "movieId", "tag"}, d.addTag)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return d, nil
}

// Movies returns the number of movies loaded
func (d *Dataset) Movies() int { return len(d.movies) }

// Ratings returns the number of ratings loaded
func (d *Dataset) Ratings() int { return len(d.ratings) }

// UserHistory returns the movies userID rated above minRating, oldest first,
// with the user's own tags attached. Ratings of movies missing from
// movies.csv are skipped.
func (d *Dataset) UserHistory(userID int, minRating float64) ([]models.Movie, error) {
	var (
		rated   bool
		history []models.Movie
	)
	for _, r := range d.ratings {
		if r.userID != userID {
			continue
		}
		rated = true
		if r.rating <= minRating {
			continue
		}
		movie, ok := d.movies[r.movieID]
		if !ok {
			continue
		}
		movie.Genres = slices.Clone(movie.Genres)
		movie.Tags = slices.Clone(d.tags[userMovie{userID, r.movieID}])
		movie.Rating = r.rating
		movie.Timestamp = r.timestamp
		history = append(history, movie)
	}
	if !rated {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUser, userID)
	}

	slices.SortStableFunc(history, func(a, b models.Movie) int {
		if c := cmp.Compare(a.Timestamp, b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return history, nil
}

func (d *Dataset) addMovie(row map[string]string) error {
	id, err := strconv.Atoi(row["movieId"])
	if err != nil {
		return fmt.Errorf("movieId: %w", err)
	}
	d.movies[id] = models.Movie{
		ID:     id,
		Title:  row["title"],
		Genres: strings.Split(row["genres"], "|"),
	}
	return nil
}

func (d *Dataset) addRating(row map[string]string) error {
	var (
		r   rating
		err error
	)
	if r.userID, err = strconv.Atoi(row["userId"]); err != nil {
		return fmt.Errorf("userId: %w", err)
	}
	if r.movieID, err = strconv.Atoi(row["movieId"]); err != nil {
		return fmt.Errorf("movieId: %w", err)
	}
	if r.rating, err = strconv.ParseFloat(row["rating"], 64); err != nil {
		return fmt.Errorf("rating: %w", err)
	}
	if r.timestamp, err = strconv.ParseInt(row["timestamp"], 10, 64); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	d.ratings = append(d.ratings, r)
	return nil
}

func (d *Dataset) addTag(row map[string]string) error {
	userID, err := strconv.Atoi(row["userId"])
	if err != nil {
		return fmt.Errorf("userId: %w", err)
	}
	movieID, err := strconv.Atoi(row["movieId"])
	if err != nil {
		return fmt.Errorf("movieId: %w", err)
	}
	tag := strings.TrimSpace(row["tag"])
	if tag == "" {
		return nil
	}
	key := userMovie{userID, movieID}
	if !slices.Contains(d.tags[key], tag) {
		d.tags[key] = append(d.tags[key], tag)
	}
	return nil
}

// readTable streams a headed CSV file into fn, one row at a time, keyed by
// column name. Every name in required must appear in the header.
func readTable(path string, required []string, fn func(map[string]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading %s header: %w", filepath.Base(path), err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return fmt.Errorf("%s: missing column %q", filepath.Base(path), name)
		}
	}

	row := make(map[string]string, len(required))
	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
		}
		for _, name := range required {
			row[name] = record[columns[name]]
		}
		if err := fn(row); err != nil {
			line, _ := r.FieldPos(0)
			return fmt.Errorf("%s line %d: %w", filepath.Base(path), line, err)
		}
	}
}
