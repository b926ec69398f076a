package tmdb

// PageResponse is the envelope of every paginated TMDB list
type PageResponse[T any] struct {
	Page         int `json:"page"`
	Results      []T `json:"results"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
}

// Movie is the movie summary returned by list and search endpoints
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	GenreIDs         []int   `json:"genre_ids"`
	Adult            bool    `json:"adult"`
}

// RatedMovie is a movie from the account's rated list
type RatedMovie struct {
	Movie
	Rating float64 `json:"rating"`
}

// MovieDetail is the response of /movie/{id}
type MovieDetail struct {
	Movie
	Tagline  string  `json:"tagline"`
	Runtime  int     `json:"runtime"`
	Status   string  `json:"status"`
	Budget   int64   `json:"budget"`
	Revenue  int64   `json:"revenue"`
	Homepage string  `json:"homepage"`
	IMDbID   string  `json:"imdb_id"`
	Genres   []Genre `json:"genres"`
}

// Genre is a TMDB genre
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenresResponse is the response of /genre/movie/list
type GenresResponse struct {
	Genres []Genre `json:"genres"`
}

// CreditsResponse is the response of /movie/{id}/credits
type CreditsResponse struct {
	ID   int64  `json:"id"`
	Cast []Cast `json:"cast"`
	Crew []Crew `json:"crew"`
}

// Cast is a cast credit
type Cast struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	Order       int     `json:"order"`
	ProfilePath *string `json:"profile_path"`
}

// Crew is a crew credit
type Crew struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Job         string  `json:"job"`
	Department  string  `json:"department"`
	ProfilePath *string `json:"profile_path"`
}

// Review is a single review
type Review struct {
	ID            string        `json:"id"`
	Author        string        `json:"author"`
	AuthorDetails AuthorDetails `json:"author_details"`
	Content       string        `json:"content"`
	CreatedAt     string        `json:"created_at"`
	URL           string        `json:"url"`
}

// AuthorDetails carries the reviewer's optional rating
type AuthorDetails struct {
	Username string   `json:"username"`
	Rating   *float64 `json:"rating"`
}

// VideosResponse is the response of /movie/{id}/videos
type VideosResponse struct {
	ID      int64   `json:"id"`
	Results []Video `json:"results"`
}

// Video is a trailer/teaser/clip
type Video struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// StatusResponse is returned by account mutation endpoints
type StatusResponse struct {
	Success       bool   `json:"success"`
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// markRequest is the body of /account/{id}/favorite and /account/{id}/watchlist
type markRequest struct {
	MediaType string `json:"media_type"`
	MediaID   int64  `json:"media_id"`
	Favorite  *bool  `json:"favorite,omitempty"`
	Watchlist *bool  `json:"watchlist,omitempty"`
}

// ratingRequest is the body of /movie/{id}/rating
type ratingRequest struct {
	Value float64 `json:"value"`
}

// RequestTokenResponse is the response of /authentication/token/new
type RequestTokenResponse struct {
	Success      bool   `json:"success"`
	ExpiresAt    string `json:"expires_at"`
	RequestToken string `json:"request_token"`
}

// SessionResponse is the response of /authentication/session/new
type SessionResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
}

// AccountResponse is the response of /account
type AccountResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}
