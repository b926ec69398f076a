package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CatalogItem is a movie record as returned by the catalog.
// Lists store copies of it by value.
type CatalogItem struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Overview         string  `json:"overview,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"` // YYYY-MM-DD, may be empty
	Popularity       float64 `json:"popularity,omitempty"`
	VoteAverage      float64 `json:"vote_average,omitempty"` // 0-10 community score
	VoteCount        int     `json:"vote_count,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`   // Relative image path
	BackdropPath     string  `json:"backdrop_path,omitempty"` // Relative image path
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	Adult            bool    `json:"adult,omitempty"`

	// Derived on read, never persisted
	IsFavorite    bool `json:"-"`
	IsInWatchlist bool `json:"-"`
	IsWatched     bool `json:"-"`
}

// Year returns the release year (0 if unknown)
func (c CatalogItem) Year() int {
	if len(c.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(c.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// Released returns the parsed release date
func (c CatalogItem) Released() (time.Time, bool) {
	if c.ReleaseDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, c.ReleaseDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DisplayTitle returns "Title (Year)" or just the title when the year is unknown
func (c CatalogItem) DisplayTitle() string {
	if y := c.Year(); y > 0 {
		return fmt.Sprintf("%s (%d)", c.Title, y)
	}
	return c.Title
}

// FormattedScore returns the community score with one decimal (e.g. "7.8")
func (c CatalogItem) FormattedScore() string {
	if c.VoteCount == 0 && c.VoteAverage == 0 {
		return "-"
	}
	return strconv.FormatFloat(c.VoteAverage, 'f', 1, 64)
}

// Genre is a catalog genre
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieDetails is the full detail record for a single movie
type MovieDetails struct {
	CatalogItem
	Tagline  string  `json:"tagline,omitempty"`
	Runtime  int     `json:"runtime,omitempty"` // Minutes
	Status   string  `json:"status,omitempty"`
	Budget   int64   `json:"budget,omitempty"`
	Revenue  int64   `json:"revenue,omitempty"`
	Homepage string  `json:"homepage,omitempty"`
	IMDbID   string  `json:"imdb_id,omitempty"`
	Genres   []Genre `json:"genres,omitempty"`
}

// FormattedRuntime returns the runtime in a human-readable format
func (d MovieDetails) FormattedRuntime() string {
	if d.Runtime <= 0 {
		return ""
	}
	h := d.Runtime / 60
	mins := d.Runtime % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// GenreNames returns the genre names joined by ", "
func (d MovieDetails) GenreNames() string {
	names := make([]string, len(d.Genres))
	for i, g := range d.Genres {
		names[i] = g.Name
	}
	return strings.Join(names, ", ")
}

// CastMember is an actor credit
type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	Order       int    `json:"order"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// CrewMember is a crew credit
type CrewMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// Credits holds cast and crew for a movie
type Credits struct {
	MovieID int64
	Cast    []CastMember
	Crew    []CrewMember
}

// Directors returns the names of crew members with the Director job
func (c Credits) Directors() []string {
	var names []string
	for _, m := range c.Crew {
		if m.Job == "Director" {
			names = append(names, m.Name)
		}
	}
	return names
}

// Review is a user review from the catalog
type Review struct {
	ID        string
	Author    string
	Content   string
	Rating    float64 // 0 when the author gave none
	CreatedAt time.Time
	URL       string
}

// Video is a trailer/teaser/clip reference
type Video struct {
	ID       string
	Key      string // Provider-specific key (e.g. YouTube video ID)
	Name     string
	Site     string // "YouTube", "Vimeo"
	Type     string // "Trailer", "Teaser", "Clip"
	Official bool
}

// WatchURL returns a browser URL for supported sites ("" otherwise)
func (v Video) WatchURL() string {
	switch v.Site {
	case "YouTube":
		return "https://www.youtube.com/watch?v=" + v.Key
	case "Vimeo":
		return "https://vimeo.com/" + v.Key
	default:
		return ""
	}
}

// Page is one page of a paginated catalog response
type Page[T any] struct {
	Number       int
	TotalPages   int
	TotalResults int
	Results      []T
}

// HasNext reports whether another page follows this one
func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages
}
