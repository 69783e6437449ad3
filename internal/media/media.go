// Package media holds the source-agnostic record that every catalog client
// produces, and the helpers used to build it.
package media

import (
	"strings"

	"github.com/mediashelf/mediashelf/internal/apperr"
)

// Type is the kind of media an item represents.
type Type string

const (
	TypeMovie  Type = "movie"
	TypeSeries Type = "series"
	TypeBook   Type = "book"
	TypeGame   Type = "game"
)

// AllTypes lists the supported media types in display order.
var AllTypes = []Type{TypeMovie, TypeSeries, TypeBook, TypeGame}

var typeAliases = map[string]Type{
	"movie":      TypeMovie,
	"film":       TypeMovie,
	"series":     TypeSeries,
	"tv":         TypeSeries,
	"show":       TypeSeries,
	"book":       TypeBook,
	"game":       TypeGame,
	"video game": TypeGame,
	"videogame":  TypeGame,
	"video_game": TypeGame,
}

// ParseType resolves a media type name, accepting a few legacy aliases.
func ParseType(s string) (Type, error) {
	t, ok := typeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", apperr.Validation("invalid media type %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the canonical types.
func (t Type) Valid() bool {
	for _, v := range AllTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Source names a catalog provider.
type Source string

const (
	SourceTMDB        Source = "tmdb"
	SourceGoogleBooks Source = "googlebooks"
	SourceIGDB        Source = "igdb"
)

// Record is one catalog item in normalized form.
type Record struct {
	MediaType   Type     `json:"mediaType"`
	ExternalID  string   `json:"externalId"`
	Title       string   `json:"title"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Description string   `json:"description,omitempty"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	ReleaseYear *int     `json:"releaseYear"`
	Rating      *float64 `json:"normalizedRating"`
	Genres      []string `json:"genres"`
	Source      Source   `json:"source"`
	// Detailed is set when the record came from a detail fetch.
	Detailed bool `json:"detailed"`

	Screen *ScreenExtras `json:"screen,omitempty"`
	Book   *BookExtras   `json:"book,omitempty"`
	Game   *GameExtras   `json:"game,omitempty"`
}

// CastMember is an actor and the role they play.
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
}

// ScreenExtras holds movie and series details.
type ScreenExtras struct {
	Cast      []CastMember `json:"cast,omitempty"`
	Directors []string     `json:"directors,omitempty"`
	Producers []string     `json:"producers,omitempty"`
	ImdbID    string       `json:"imdbId,omitempty"`
	Runtime   int          `json:"runtime,omitempty"`
	Seasons   int          `json:"seasons,omitempty"`
}

// BookExtras holds book details.
type BookExtras struct {
	Authors   []string `json:"authors,omitempty"`
	Publisher string   `json:"publisher,omitempty"`
	PageCount int      `json:"pageCount,omitempty"`
	InfoLink  string   `json:"infoLink,omitempty"`
	ISBN      string   `json:"isbn,omitempty"`
}

// GameExtras holds game details.
type GameExtras struct {
	Platforms   []string `json:"platforms,omitempty"`
	Developers  []string `json:"developers,omitempty"`
	Publishers  []string `json:"publishers,omitempty"`
	Screenshots []string `json:"screenshots,omitempty"`
	Videos      []string `json:"videos,omitempty"`
	Link        string   `json:"link,omitempty"`
}

// Validate checks the only required fields of a record.
func (r Record) Validate() error {
	if !r.MediaType.Valid() {
		return apperr.Validation("invalid media type %q", r.MediaType)
	}
	if strings.TrimSpace(r.ExternalID) == "" {
		return apperr.Validation("external id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return apperr.Validation("title is required")
	}
	return nil
}

// CleanStrings trims names and drops blanks and duplicates. The result is
// never nil.
func CleanStrings(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
