// Package googlebooks implements the book catalog on top of the Google
// Books API. An API key is optional.
package googlebooks

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

const popularQuery = "subject:fiction"

// Client is a Google Books API client.
type Client struct {
	httpClient *http.Client
	config     config.GoogleBooksConfig
	logger     zerolog.Logger
}

// NewClient creates a new Google Books client.
func NewClient(cfg config.GoogleBooksConfig, logger zerolog.Logger) *Client {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 20
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger.With().Str("component", "googlebooks").Logger(),
	}
}

// Name returns the source name.
func (c *Client) Name() media.Source {
	return media.SourceGoogleBooks
}

// IsConfigured reports whether a base URL is set. The API works without a
// key at a lower quota.
func (c *Client) IsConfigured() bool {
	return c.config.BaseURL != ""
}

// MediaTypes returns the media types served by Google Books.
func (c *Client) MediaTypes() []media.Type {
	return []media.Type{media.TypeBook}
}

// Search runs a keyword search for books.
func (c *Client) Search(ctx context.Context, mediaType media.Type, query string) ([]media.Record, error) {
	if mediaType != media.TypeBook {
		return nil, apperr.Validation("google books does not serve media type %q", mediaType)
	}

	params := c.params()
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(c.config.MaxResults))
	params.Set("printType", "books")

	records, err := c.fetchVolumes(ctx, params)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(records)).
		Msg("Google Books search completed")

	return records, nil
}

// Popular returns the newest fiction titles, the closest thing Google Books
// has to a popularity feed.
func (c *Client) Popular(ctx context.Context, mediaType media.Type, limit int) ([]media.Record, error) {
	if mediaType != media.TypeBook {
		return nil, apperr.Validation("google books does not serve media type %q", mediaType)
	}
	if limit <= 0 || limit > 40 {
		limit = c.config.MaxResults
	}

	params := c.params()
	params.Set("q", popularQuery)
	params.Set("orderBy", "newest")
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("printType", "books")

	return c.fetchVolumes(ctx, params)
}

// Details fetches one volume by id.
func (c *Client) Details(ctx context.Context, mediaType media.Type, externalID string) (*media.Record, error) {
	if mediaType != media.TypeBook {
		return nil, apperr.Validation("google books does not serve media type %q", mediaType)
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperr.Validation("book id is required")
	}

	var volume Volume
	endpoint := fmt.Sprintf("%s/volumes/%s", c.config.BaseURL, url.PathEscape(externalID))
	if err := c.doRequest(ctx, endpoint, c.params(), &volume); err != nil {
		return nil, err
	}
	if volume.ID == "" || strings.TrimSpace(volume.VolumeInfo.Title) == "" {
		return nil, apperr.New(apperr.KindUpstreamNotFound, "googlebooks has no such item")
	}

	record := volumeToRecord(volume, true)
	return &record, nil
}

func (c *Client) params() url.Values {
	params := url.Values{}
	if c.config.APIKey != "" {
		params.Set("key", c.config.APIKey)
	}
	if c.config.Language != "" {
		params.Set("langRestrict", c.config.Language)
	}
	return params
}

func (c *Client) fetchVolumes(ctx context.Context, params url.Values) ([]media.Record, error) {
	var response VolumesResponse
	if err := c.doRequest(ctx, fmt.Sprintf("%s/volumes", c.config.BaseURL), params, &response); err != nil {
		return nil, err
	}

	records := make([]media.Record, 0, len(response.Items))
	for _, v := range response.Items {
		if v.ID == "" || strings.TrimSpace(v.VolumeInfo.Title) == "" {
			continue
		}
		records = append(records, volumeToRecord(v, false))
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
		return apperr.Wrap(apperr.KindUpstreamTransport, err, "googlebooks request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			c.logger.Warn().
				Int("status", resp.StatusCode).
				Str("message", errResp.Error.Message).
				Msg("Google Books API error")
		}
		return apperr.FromUpstreamStatus("googlebooks", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return apperr.Wrap(apperr.KindUpstreamTransport, err, "failed to decode googlebooks response")
	}

	return nil
}

func volumeToRecord(v Volume, detailed bool) media.Record {
	info := v.VolumeInfo

	title := info.Title
	if detailed && info.Subtitle != "" {
		title = fmt.Sprintf("%s: %s", info.Title, info.Subtitle)
	}

	book := &media.BookExtras{
		Authors:   media.CleanStrings(info.Authors),
		Publisher: info.Publisher,
		PageCount: info.PageCount,
		InfoLink:  info.InfoLink,
		ISBN:      isbn(info.IndustryIdentifiers),
	}

	return media.Record{
		MediaType:   media.TypeBook,
		ExternalID:  v.ID,
		Title:       title,
		ImageURL:    coverURL(info.ImageLinks),
		Description: media.PlainText(info.Description),
		ReleaseDate: info.PublishedDate,
		ReleaseYear: media.ExtractYear(info.PublishedDate),
		Rating:      media.ConvertRating(info.AverageRating.V, media.ScaleGoogleBooks),
		Genres:      media.CleanStrings(info.Categories),
		Source:      media.SourceGoogleBooks,
		Detailed:    detailed,
		Book:        book,
	}
}

// coverURL prefers the larger thumbnail and upgrades it to https.
func coverURL(links *ImageLinks) string {
	if links == nil {
		return ""
	}
	u := links.Thumbnail
	if u == "" {
		u = links.SmallThumbnail
	}
	if strings.HasPrefix(u, "http://") {
		u = "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

func isbn(ids []IndustryIdentifier) string {
	var isbn10 string
	for _, id := range ids {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			isbn10 = id.Identifier
		}
	}
	return isbn10
}
