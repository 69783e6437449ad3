// Package library tracks the media each user has added, with a status from
// the media type's own vocabulary, an optional rating and notes.
package library

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/mediashelf/mediashelf/internal/media"
)

// Entry is one library row. Title, image and release year are copied from
// the catalog when the entry is added and never re-synced.
type Entry struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	MediaType   media.Type `json:"mediaType"`
	ExternalID  string     `json:"externalId"`
	Title       string     `json:"title"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	ReleaseYear *int       `json:"releaseYear"`
	Status      string     `json:"status"`
	Rating      *float64   `json:"rating"`
	Notes       *string    `json:"notes"`
	IsFavorite  bool       `json:"isFavorite"`
	AddedAt     time.Time  `json:"addedAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// AddInput is the payload for adding an entry.
type AddInput struct {
	MediaType   string   `json:"mediaType"`
	ExternalID  string   `json:"externalId"`
	Title       string   `json:"title"`
	ImageURL    string   `json:"imageUrl"`
	ReleaseYear *int     `json:"releaseYear"`
	Status      string   `json:"status"`
	Rating      *float64 `json:"rating"`
	Notes       *string  `json:"notes"`
	IsFavorite  bool     `json:"isFavorite"`
}

// UpdateInput is a partial update. Rating and notes can be cleared by
// sending null, so they track presence separately from value.
type UpdateInput struct {
	Status     *string           `json:"status"`
	Rating     Optional[float64] `json:"rating"`
	Notes      Optional[string]  `json:"notes"`
	IsFavorite *bool             `json:"isFavorite"`
}

// IsEmpty reports whether no field was supplied.
func (in UpdateInput) IsEmpty() bool {
	return in.Status == nil && !in.Rating.Set && !in.Notes.Set && in.IsFavorite == nil
}

// Optional is a JSON field that distinguishes "absent" from "null".
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a present, null Optional.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// Sort orders for List.
const (
	SortUpdated   = "updatedAt"
	SortAdded     = "addedAt"
	SortCompleted = "completedAt"
	SortRating    = "rating"
	SortTitle     = "title"
)

// ListOptions filters and orders a library listing.
type ListOptions struct {
	MediaType media.Type
	Status    string
	Favorite  *bool
	MinRating *float64
	MaxRating *float64
	Sort      string

	// Order is "asc" or "desc". Empty sorts titles A-Z and everything
	// else newest or highest first.
	Order  string
	Limit  int
	Offset int
}

// Stats summarizes one user's library.
type Stats struct {
	Total          int                `json:"total"`
	CompletedCount int                `json:"completedCount"`
	FavoriteCount  int                `json:"favoriteCount"`
	RatedCount     int                `json:"ratedCount"`
	AverageRating  *float64           `json:"averageRating"`
	ByType         map[media.Type]int `json:"byType"`
	ByCategory     map[Category]int   `json:"byCategory"`
}
