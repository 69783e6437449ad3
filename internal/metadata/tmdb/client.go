// Package tmdb implements the movie and series catalog on top of The Movie
// Database API.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/config"
	"github.com/mediashelf/mediashelf/internal/media"
)

const (
	posterSize = "w500"
	castLimit  = 10
)

// Client is a TMDB API client.
type Client struct {
	httpClient *http.Client
	config     config.TMDBConfig
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client.
func NewClient(cfg config.TMDBConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger.With().Str("component", "tmdb").Logger(),
	}
}

// Name returns the source name.
func (c *Client) Name() media.Source {
	return media.SourceTMDB
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// MediaTypes returns the media types served by TMDB.
func (c *Client) MediaTypes() []media.Type {
	return []media.Type{media.TypeMovie, media.TypeSeries}
}

func pathFor(mediaType media.Type) (string, error) {
	switch mediaType {
	case media.TypeMovie:
		return "movie", nil
	case media.TypeSeries:
		return "tv", nil
	default:
		return "", apperr.Validation("tmdb does not serve media type %q", mediaType)
	}
}

// Search runs a keyword search for movies or series.
func (c *Client) Search(ctx context.Context, mediaType media.Type, query string) ([]media.Record, error) {
	if !c.IsConfigured() {
		return nil, apperr.New(apperr.KindUnavailable, "movie and series search is not configured")
	}
	kind, err := pathFor(mediaType)
	if err != nil {
		return nil, err
	}

	params := c.params()
	params.Set("query", query)
	params.Set("include_adult", "false")

	records, err := c.fetchList(ctx, mediaType, fmt.Sprintf("%s/search/%s", c.config.BaseURL, kind), params)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("query", query).
		Str("mediaType", string(mediaType)).
		Int("results", len(records)).
		Msg("TMDB search completed")

	return records, nil
}

// Popular returns the current popular movies or series.
func (c *Client) Popular(ctx context.Context, mediaType media.Type, limit int) ([]media.Record, error) {
	if !c.IsConfigured() {
		return nil, apperr.New(apperr.KindUnavailable, "movie and series search is not configured")
	}
	kind, err := pathFor(mediaType)
	if err != nil {
		return nil, err
	}

	records, err := c.fetchList(ctx, mediaType, fmt.Sprintf("%s/%s/popular", c.config.BaseURL, kind), c.params())
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Details fetches one movie or series with credits and external ids.
func (c *Client) Details(ctx context.Context, mediaType media.Type, externalID string) (*media.Record, error) {
	if !c.IsConfigured() {
		return nil, apperr.New(apperr.KindUnavailable, "movie and series search is not configured")
	}
	kind, err := pathFor(mediaType)
	if err != nil {
		return nil, err
	}
	id, err := strconv.Atoi(externalID)
	if err != nil || id <= 0 {
		return nil, apperr.Validation("invalid TMDB id %q", externalID)
	}

	params := c.params()
	params.Set("append_to_response", "credits,external_ids")

	var details Details
	if err := c.doRequest(ctx, fmt.Sprintf("%s/%s/%d", c.config.BaseURL, kind, id), params, &details); err != nil {
		return nil, err
	}

	record := c.detailsToRecord(mediaType, details)

	c.logger.Debug().
		Str("externalId", externalID).
		Str("title", record.Title).
		Msg("Got TMDB details")

	return &record, nil
}

func (c *Client) params() url.Values {
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)
	if c.config.Language != "" {
		params.Set("language", c.config.Language)
	}
	return params
}

func (c *Client) fetchList(ctx context.Context, mediaType media.Type, endpoint string, params url.Values) ([]media.Record, error) {
	if mediaType == media.TypeMovie {
		var response PagedResponse[MovieResult]
		if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
			return nil, err
		}
		records := make([]media.Record, 0, len(response.Results))
		for _, m := range response.Results {
			records = append(records, c.movieToRecord(m))
		}
		return records, nil
	}

	var response PagedResponse[TVResult]
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}
	records := make([]media.Record, 0, len(response.Results))
	for _, s := range response.Results {
		records = append(records, c.tvToRecord(s))
	}
	return records, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", endpoint).Msg("HTTP request failed")
		return apperr.Wrap(apperr.KindUpstreamTransport, err, "tmdb request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			c.logger.Warn().
				Int("status", resp.StatusCode).
				Str("message", errResp.StatusMessage).
				Msg("TMDB API error")
		}
		return apperr.FromUpstreamStatus("tmdb", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return apperr.Wrap(apperr.KindUpstreamTransport, err, "failed to decode tmdb response")
	}

	return nil
}

// ImageURL builds a poster URL for a TMDB image path.
func (c *Client) ImageURL(path *string, size string) string {
	if path == nil || *path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", strings.TrimSuffix(c.config.ImageBaseURL, "/"), size, *path)
}

func (c *Client) movieToRecord(m MovieResult) media.Record {
	return media.Record{
		MediaType:   media.TypeMovie,
		ExternalID:  strconv.Itoa(m.ID),
		Title:       m.Title,
		ImageURL:    c.ImageURL(m.PosterPath, posterSize),
		Description: m.Overview,
		ReleaseDate: m.ReleaseDate,
		ReleaseYear: media.ExtractYear(m.ReleaseDate),
		Rating:      rating(m.VoteAverage, m.VoteCount),
		Genres:      genreNamesFor(m.GenreIDs),
		Source:      media.SourceTMDB,
	}
}

func (c *Client) tvToRecord(s TVResult) media.Record {
	return media.Record{
		MediaType:   media.TypeSeries,
		ExternalID:  strconv.Itoa(s.ID),
		Title:       s.Name,
		ImageURL:    c.ImageURL(s.PosterPath, posterSize),
		Description: s.Overview,
		ReleaseDate: s.FirstAirDate,
		ReleaseYear: media.ExtractYear(s.FirstAirDate),
		Rating:      rating(s.VoteAverage, s.VoteCount),
		Genres:      genreNamesFor(s.GenreIDs),
		Source:      media.SourceTMDB,
	}
}

func (c *Client) detailsToRecord(mediaType media.Type, d Details) media.Record {
	title, date := d.Title, d.ReleaseDate
	if mediaType == media.TypeSeries {
		title, date = d.Name, d.FirstAirDate
	}

	genres := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		genres = append(genres, g.Name)
	}

	screen := &media.ScreenExtras{
		Runtime: d.Runtime,
		Seasons: d.NumberOfSeasons,
	}
	if d.Credits != nil {
		for i, cm := range d.Credits.Cast {
			if i >= castLimit {
				break
			}
			screen.Cast = append(screen.Cast, media.CastMember{Name: cm.Name, Character: cm.Character})
		}
		var directors, producers []string
		for _, cm := range d.Credits.Crew {
			switch cm.Job {
			case "Director":
				directors = append(directors, cm.Name)
			case "Producer":
				producers = append(producers, cm.Name)
			}
		}
		screen.Directors = media.CleanStrings(directors)
		screen.Producers = media.CleanStrings(producers)
	}
	// series have no director credit; creators stand in for them
	if len(screen.Directors) == 0 && len(d.CreatedBy) > 0 {
		creators := make([]string, 0, len(d.CreatedBy))
		for _, cr := range d.CreatedBy {
			creators = append(creators, cr.Name)
		}
		screen.Directors = media.CleanStrings(creators)
	}
	switch {
	case d.ExternalIDs != nil && d.ExternalIDs.ImdbID != nil:
		screen.ImdbID = *d.ExternalIDs.ImdbID
	case d.ImdbID != nil:
		screen.ImdbID = *d.ImdbID
	}

	return media.Record{
		MediaType:   mediaType,
		ExternalID:  strconv.Itoa(d.ID),
		Title:       title,
		ImageURL:    c.ImageURL(d.PosterPath, posterSize),
		Description: d.Overview,
		ReleaseDate: date,
		ReleaseYear: media.ExtractYear(date),
		Rating:      rating(d.VoteAverage, d.VoteCount),
		Genres:      media.CleanStrings(genres),
		Source:      media.SourceTMDB,
		Detailed:    true,
		Screen:      screen,
	}
}

// rating treats an unvoted 0.0 average as no rating.
func rating(avg media.RawRating, votes int) *float64 {
	raw := avg.V
	if raw != nil && votes == 0 {
		raw = media.NonZero(*raw)
	}
	return media.ConvertRating(raw, media.ScaleTMDB)
}
