package models

// Movie is one row of a viewing history or one entry of a candidate pool.
// History rows carry the user's rating and tags; candidates only need a title and genres.
type Movie struct {
	ID        int      `json:"id,omitempty"`
	Title     string   `json:"title"`
	Genres    []string `json:"genres"`
	Tags      []string `json:"tags,omitempty"`
	Rating    float64  `json:"rating,omitempty"`
	Timestamp int64    `json:"timestamp,omitempty"`
}
