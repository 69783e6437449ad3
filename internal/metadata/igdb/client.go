// Package igdb implements the game catalog on top of the IGDB API.
// Requests are authenticated with a Twitch client-credentials token.
package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/config"
	"github.com/mediashelf/mediashelf/internal/media"
)

const (
	searchFields  = "name, summary, cover.url, first_release_date, total_rating, genres.name, platforms.abbreviation, platforms.name"
	detailFields  = searchFields + ", involved_companies.company.name, involved_companies.developer, involved_companies.publisher, screenshots.url, videos.video_id, url"
	searchLimit   = 20
	mainGameWhere = "category = 0 | category = 8 | category = 9"
)

// Client is an IGDB API client.
type Client struct {
	httpClient *http.Client
	config     config.IGDBConfig
	tokens     *TokenSource
	logger     zerolog.Logger
}

// NewClient creates a new IGDB client with its own token source.
func NewClient(cfg config.IGDBConfig, logger zerolog.Logger) *Client {
	httpClient := &http.Client{
		Timeout: cfg.Timeout,
	}
	logger = logger.With().Str("component", "igdb").Logger()
	return &Client{
		httpClient: httpClient,
		config:     cfg,
		tokens:     NewTokenSource(httpClient, cfg.AuthURL, cfg.ClientID, cfg.ClientSecret, cfg.TokenBuffer, logger),
		logger:     logger,
	}
}

// Name returns the source name.
func (c *Client) Name() media.Source {
	return media.SourceIGDB
}

// IsConfigured returns true if both client credentials are set.
func (c *Client) IsConfigured() bool {
	return c.config.ClientID != "" && c.config.ClientSecret != ""
}

// MediaTypes returns the media types served by IGDB.
func (c *Client) MediaTypes() []media.Type {
	return []media.Type{media.TypeGame}
}

// Search runs a keyword search over main games, bundles and expansions.
func (c *Client) Search(ctx context.Context, mediaType media.Type, query string) ([]media.Record, error) {
	if err := c.check(mediaType); err != nil {
		return nil, err
	}

	body := fmt.Sprintf(`search "%s"; fields %s; limit %d; where %s;`,
		escapeQuery(query), searchFields, searchLimit, mainGameWhere)

	var games []Game
	if err := c.doRequest(ctx, "/games", body, &games); err != nil {
		return nil, err
	}

	records := make([]media.Record, 0, len(games))
	for _, g := range games {
		records = append(records, gameToRecord(g, false))
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(records)).
		Msg("IGDB search completed")

	return records, nil
}

// Popular returns well-rated main games sorted by popularity.
func (c *Client) Popular(ctx context.Context, mediaType media.Type, limit int) ([]media.Record, error) {
	if err := c.check(mediaType); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = searchLimit
	}

	body := fmt.Sprintf(`fields %s; sort popularity desc; where total_rating_count > 20 & category = 0; limit %d;`,
		searchFields, limit)

	var games []Game
	if err := c.doRequest(ctx, "/games", body, &games); err != nil {
		return nil, err
	}

	records := make([]media.Record, 0, len(games))
	for _, g := range games {
		records = append(records, gameToRecord(g, false))
	}
	return records, nil
}

// Details fetches one game by its numeric IGDB id.
func (c *Client) Details(ctx context.Context, mediaType media.Type, externalID string) (*media.Record, error) {
	if err := c.check(mediaType); err != nil {
		return nil, err
	}
	id, err := strconv.Atoi(externalID)
	if err != nil || id <= 0 {
		return nil, apperr.Validation("invalid IGDB id %q", externalID)
	}

	body := fmt.Sprintf(`fields %s; where id = %d; limit 1;`, detailFields, id)

	var games []Game
	if err := c.doRequest(ctx, "/games", body, &games); err != nil {
		return nil, err
	}
	// IGDB answers an unknown id with an empty array, not a 404
	if len(games) == 0 {
		return nil, apperr.New(apperr.KindUpstreamNotFound, "igdb has no such item")
	}

	record := gameToRecord(games[0], true)

	c.logger.Debug().
		Str("externalId", externalID).
		Str("title", record.Title).
		Msg("Got IGDB details")

	return &record, nil
}

func (c *Client) check(mediaType media.Type) error {
	if mediaType != media.TypeGame {
		return apperr.Validation("igdb does not serve media type %q", mediaType)
	}
	if !c.IsConfigured() {
		return apperr.New(apperr.KindUnavailable, "game search is not configured")
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, endpoint, body string, result any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+endpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Client-ID", c.tokens.ClientID())
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return apperr.Wrap(apperr.KindUpstreamTransport, err, "igdb request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			// token revoked or expired early; the next request re-authenticates
			c.tokens.Invalidate()
		}
		c.logger.Warn().Int("status", resp.StatusCode).Str("endpoint", endpoint).Msg("IGDB API error")
		return apperr.FromUpstreamStatus("igdb", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return apperr.Wrap(apperr.KindUpstreamTransport, err, "failed to decode igdb response")
	}
	return nil
}

// escapeQuery keeps a user query inside the Apicalypse string literal.
func escapeQuery(q string) string {
	q = strings.ReplaceAll(q, `\`, `\\`)
	q = strings.ReplaceAll(q, `"`, `\"`)
	q = strings.ReplaceAll(q, "\n", " ")
	return strings.TrimSpace(q)
}

// imageURL rewrites an IGDB thumbnail URL to the requested size and makes
// protocol-relative URLs absolute.
func imageURL(raw, size string) string {
	if raw == "" {
		return ""
	}
	u := strings.Replace(raw, "t_thumb", size, 1)
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	return u
}

func gameToRecord(g Game, detailed bool) media.Record {
	genres := make([]string, 0, len(g.Genres))
	for _, genre := range g.Genres {
		genres = append(genres, genre.Name)
	}

	platforms := make([]string, 0, len(g.Platforms))
	for _, p := range g.Platforms {
		if p.Abbreviation != "" {
			platforms = append(platforms, p.Abbreviation)
		} else {
			platforms = append(platforms, p.Name)
		}
	}

	extras := &media.GameExtras{
		Platforms: media.CleanStrings(platforms),
		Link:      g.URL,
	}

	var developers, publishers []string
	for _, ic := range g.InvolvedCompanies {
		if ic.Company.Name == "" {
			continue
		}
		if ic.Developer {
			developers = append(developers, ic.Company.Name)
		}
		if ic.Publisher {
			publishers = append(publishers, ic.Company.Name)
		}
	}
	if len(developers) > 0 {
		extras.Developers = media.CleanStrings(developers)
	}
	if len(publishers) > 0 {
		extras.Publishers = media.CleanStrings(publishers)
	}
	for _, s := range g.Screenshots {
		if u := imageURL(s.URL, "t_screenshot_med"); u != "" {
			extras.Screenshots = append(extras.Screenshots, u)
		}
	}
	for _, v := range g.Videos {
		if v.VideoID != "" {
			extras.Videos = append(extras.Videos, v.VideoID)
		}
	}

	var cover string
	if g.Cover != nil {
		cover = imageURL(g.Cover.URL, "t_cover_big")
	}

	return media.Record{
		MediaType:   media.TypeGame,
		ExternalID:  strconv.Itoa(g.ID),
		Title:       g.Name,
		ImageURL:    cover,
		Description: media.PlainText(g.Summary),
		ReleaseDate: media.DateFromUnix(g.FirstReleaseDate),
		ReleaseYear: media.YearFromUnix(g.FirstReleaseDate),
		Rating:      media.ConvertRating(g.TotalRating.V, media.ScaleIGDB),
		Genres:      media.CleanStrings(genres),
		Source:      media.SourceIGDB,
		Detailed:    detailed,
		Game:        extras,
	}
}
