package googlebooks

import "github.com/mediashelf/mediashelf/internal/media"

// VolumesResponse is the response from a volumes search.
type VolumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// Volume is one Google Books volume.
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

// VolumeInfo holds the bibliographic fields of a volume.
type VolumeInfo struct {
	Title               string               `json:"title"`
	Subtitle            string               `json:"subtitle"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	PageCount           int                  `json:"pageCount"`
	Categories          []string             `json:"categories"`
	AverageRating       media.RawRating      `json:"averageRating"`
	RatingsCount        int                  `json:"ratingsCount"`
	ImageLinks          *ImageLinks          `json:"imageLinks"`
	InfoLink            string               `json:"infoLink"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers"`
}

// ImageLinks holds cover image URLs.
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

// IndustryIdentifier is an ISBN or similar.
type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// ErrorResponse is the Google API error body.
type ErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
