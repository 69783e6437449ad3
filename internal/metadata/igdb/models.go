package igdb

import "github.com/mediashelf/mediashelf/internal/media"

// Game is an IGDB game with the expanded fields requested by this client.
type Game struct {
	ID                int               `json:"id"`
	Name              string            `json:"name"`
	Summary           string            `json:"summary"`
	FirstReleaseDate  int64             `json:"first_release_date"`
	TotalRating       media.RawRating   `json:"total_rating"`
	Cover             *Image            `json:"cover"`
	Genres            []Named           `json:"genres"`
	Platforms         []Platform        `json:"platforms"`
	InvolvedCompanies []InvolvedCompany `json:"involved_companies"`
	Screenshots       []Image           `json:"screenshots"`
	Videos            []Video           `json:"videos"`
	URL               string            `json:"url"`
}

// Image is a cover or screenshot reference.
type Image struct {
	URL string `json:"url"`
}

// Named is any IGDB object referenced by name.
type Named struct {
	Name string `json:"name"`
}

// Platform is a gaming platform.
type Platform struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// InvolvedCompany links a company to a game with its role.
type InvolvedCompany struct {
	Company   Named `json:"company"`
	Developer bool  `json:"developer"`
	Publisher bool  `json:"publisher"`
}

// Video is a YouTube trailer reference.
type Video struct {
	VideoID string `json:"video_id"`
}
