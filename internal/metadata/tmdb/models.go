package tmdb

import "github.com/mediashelf/mediashelf/internal/media"

// PagedResponse is a page of TMDB search or list results.
type PagedResponse[T any] struct {
	Page         int `json:"page"`
	Results      []T `json:"results"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
}

// MovieResult is a movie from TMDB search results.
type MovieResult struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Overview    string          `json:"overview"`
	ReleaseDate string          `json:"release_date"`
	PosterPath  *string         `json:"poster_path"`
	VoteAverage media.RawRating `json:"vote_average"`
	VoteCount   int             `json:"vote_count"`
	GenreIDs    []int           `json:"genre_ids"`
}

// TVResult is a series from TMDB search results.
type TVResult struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Overview     string          `json:"overview"`
	FirstAirDate string          `json:"first_air_date"`
	PosterPath   *string         `json:"poster_path"`
	VoteAverage  media.RawRating `json:"vote_average"`
	VoteCount    int             `json:"vote_count"`
	GenreIDs     []int           `json:"genre_ids"`
}

// Genre is a TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is one credited actor.
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// CrewMember is one credited crew member.
type CrewMember struct {
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// Credits is the credits block appended to detail responses.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// ExternalIDs holds cross-references to other databases.
type ExternalIDs struct {
	ImdbID *string `json:"imdb_id"`
}

// Creator is a series creator.
type Creator struct {
	Name string `json:"name"`
}

// Details covers both movie and tv detail responses. Movies use Title and
// ReleaseDate, series use Name and FirstAirDate.
type Details struct {
	ID              int             `json:"id"`
	Title           string          `json:"title"`
	Name            string          `json:"name"`
	Overview        string          `json:"overview"`
	ReleaseDate     string          `json:"release_date"`
	FirstAirDate    string          `json:"first_air_date"`
	PosterPath      *string         `json:"poster_path"`
	VoteAverage     media.RawRating `json:"vote_average"`
	VoteCount       int             `json:"vote_count"`
	Runtime         int             `json:"runtime"`
	NumberOfSeasons int             `json:"number_of_seasons"`
	ImdbID          *string         `json:"imdb_id"`
	Genres          []Genre         `json:"genres"`
	CreatedBy       []Creator       `json:"created_by"`
	Credits         *Credits        `json:"credits,omitempty"`
	ExternalIDs     *ExternalIDs    `json:"external_ids,omitempty"`
}

// ErrorResponse is the TMDB error body.
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}
