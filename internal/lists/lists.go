// Package lists manages named, ordered collections of a user's library
// entries.
package lists

import (
	"time"

	"github.com/mediashelf/mediashelf/internal/media"
)

// List is a user's collection.
type List struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	CoverImageURL string    `json:"coverImageUrl,omitempty"`
	IsPublic      bool      `json:"isPublic"`
	ItemCount     int       `json:"itemCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Items         []*Item   `json:"items,omitempty"`
}

// Item is one library entry placed on a list, with the entry fields needed
// to render it.
type Item struct {
	ID             int64      `json:"id"`
	ListID         int64      `json:"listId"`
	LibraryEntryID int64      `json:"libraryEntryId"`
	Comment        string     `json:"comment,omitempty"`
	Position       int        `json:"position"`
	AddedAt        time.Time  `json:"addedAt"`
	MediaType      media.Type `json:"mediaType"`
	ExternalID     string     `json:"externalId"`
	Title          string     `json:"title"`
	ImageURL       string     `json:"imageUrl,omitempty"`
	ReleaseYear    *int       `json:"releaseYear"`
	Status         string     `json:"status"`
}

// CreateInput is the payload for creating a list.
type CreateInput struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	CoverImageURL string `json:"coverImageUrl"`
	IsPublic      bool   `json:"isPublic"`
}

// UpdateInput is a partial list update.
type UpdateInput struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	CoverImageURL *string `json:"coverImageUrl"`
	IsPublic      *bool   `json:"isPublic"`
}

// AddItemInput places a library entry on a list.
type AddItemInput struct {
	LibraryEntryID int64  `json:"libraryEntryId"`
	Comment        string `json:"comment"`
}

// UpdateItemInput changes an item's comment.
type UpdateItemInput struct {
	Comment *string `json:"comment"`
}
