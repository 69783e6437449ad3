package metadata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/config"
	"github.com/mediashelf/mediashelf/internal/media"
)

const maxQueryLength = 200

// Service routes catalog requests to the source for each media type and
// caches the normalized results.
type Service struct {
	sources      map[media.Type]Source
	cache        *Cache
	negativeTTL  time.Duration
	rank         bool
	popularLimit int
	logger       zerolog.Logger
}

// SourceStatus reports whether a source can serve requests.
type SourceStatus struct {
	Name       media.Source `json:"name"`
	Configured bool         `json:"configured"`
	MediaTypes []media.Type `json:"mediaTypes"`
}

// Section is one media type's slice of the discover feed. Error is set
// instead of Items when that source failed.
type Section struct {
	MediaType media.Type     `json:"mediaType"`
	Items     []media.Record `json:"items"`
	Error     string         `json:"error,omitempty"`
}

// NewService creates a catalog service. Later sources override earlier ones
// for the same media type.
func NewService(sources []Source, cfg config.MetadataConfig, logger zerolog.Logger) *Service {
	byType := make(map[media.Type]Source)
	for _, src := range sources {
		for _, t := range src.MediaTypes() {
			byType[t] = src
		}
	}

	popularLimit := cfg.PopularLimit
	if popularLimit <= 0 {
		popularLimit = 12
	}

	return &Service{
		sources: byType,
		cache: NewCache(CacheConfig{
			TTL:      cfg.CacheTTL,
			MaxItems: cfg.CacheMaxItems,
		}),
		negativeTTL:  cfg.NegativeCacheTTL,
		rank:         cfg.RankResults,
		popularLimit: popularLimit,
		logger:       logger.With().Str("component", "metadata").Logger(),
	}
}

func (s *Service) source(mediaType media.Type) (Source, error) {
	if !mediaType.Valid() {
		return nil, apperr.Validation("invalid media type %q", mediaType)
	}
	src, ok := s.sources[mediaType]
	if !ok || !src.IsConfigured() {
		return nil, apperr.New(apperr.KindUnavailable, "no catalog configured for %s", mediaType)
	}
	return src, nil
}

// Search runs a keyword search against the catalog for mediaType.
func (s *Service) Search(ctx context.Context, mediaType media.Type, query string) ([]media.Record, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("search query is required")
	}
	if utf8.RuneCountInString(query) > maxQueryLength {
		return nil, apperr.Validation("search query must be at most %d characters", maxQueryLength)
	}

	src, err := s.source(mediaType)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("search:%s:%s", mediaType, strings.ToLower(query))
	if results, ok := getTyped[[]media.Record](s.cache, cacheKey); ok {
		s.logger.Debug().Str("query", query).Str("mediaType", string(mediaType)).Msg("Search cache hit")
		return results, nil
	}

	results, err := src.Search(ctx, mediaType, query)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Str("source", string(src.Name())).Msg("Catalog search failed")
		return nil, fmt.Errorf("search failed: %w", err)
	}

	if s.rank {
		rankByTitle(results, query)
	}

	for i := range results {
		s.cache.Set(summaryKey(mediaType, results[i].ExternalID), results[i])
	}
	s.cache.Set(cacheKey, results)

	s.logger.Info().
		Str("query", query).
		Str("mediaType", string(mediaType)).
		Int("results", len(results)).
		Msg("Catalog search completed")

	return results, nil
}

// Details fetches the full record for one item. The detail response is
// merged over any summary seen earlier so fields missing from the detail
// fetch keep their search-time values. Upstream not-found answers are
// cached for the negative TTL.
func (s *Service) Details(ctx context.Context, mediaType media.Type, externalID string) (*media.Record, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperr.Validation("external id is required")
	}

	src, err := s.source(mediaType)
	if err != nil {
		return nil, err
	}

	key := detailsKey(mediaType, externalID)
	if record, ok := getTyped[media.Record](s.cache, key); ok {
		return &record, nil
	}
	if _, missing := s.cache.Get(missingKey(mediaType, externalID)); missing {
		return nil, apperr.New(apperr.KindUpstreamNotFound, "%s has no such item", src.Name())
	}

	record, err := src.Details(ctx, mediaType, externalID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUpstreamNotFound && s.negativeTTL > 0 {
			s.cache.SetWithTTL(missingKey(mediaType, externalID), true, s.negativeTTL)
		}
		s.logger.Warn().Err(err).
			Str("mediaType", string(mediaType)).
			Str("externalId", externalID).
			Msg("Catalog details failed")
		return nil, fmt.Errorf("details failed: %w", err)
	}

	merged := *record
	if summary, ok := getTyped[media.Record](s.cache, summaryKey(mediaType, externalID)); ok {
		merged = media.Merge(summary, *record)
	}
	s.cache.Set(key, merged)

	return &merged, nil
}

// Popular returns the source's popular items for mediaType.
func (s *Service) Popular(ctx context.Context, mediaType media.Type, limit int) ([]media.Record, error) {
	src, err := s.source(mediaType)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.popularLimit
	}

	cacheKey := fmt.Sprintf("popular:%s:%d", mediaType, limit)
	if results, ok := getTyped[[]media.Record](s.cache, cacheKey); ok {
		return results, nil
	}

	results, err := src.Popular(ctx, mediaType, limit)
	if err != nil {
		return nil, fmt.Errorf("popular failed: %w", err)
	}
	if len(results) > limit {
		results = results[:limit]
	}

	for i := range results {
		s.cache.Set(summaryKey(mediaType, results[i].ExternalID), results[i])
	}
	s.cache.Set(cacheKey, results)
	return results, nil
}

// Discover loads the popular feed of every requested media type
// concurrently. A failing source only affects its own section.
func (s *Service) Discover(ctx context.Context, types []media.Type, limit int) []Section {
	if len(types) == 0 {
		types = media.AllTypes
	}

	sections := make([]Section, len(types))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range types {
		sections[i].MediaType = t
		g.Go(func() error {
			items, err := s.Popular(gctx, t, limit)
			if err != nil {
				sections[i].Error = userMessage(err)
				sections[i].Items = []media.Record{}
				s.logger.Warn().Err(err).Str("mediaType", string(t)).Msg("Discover section failed")
				return nil
			}
			sections[i].Items = items
			return nil
		})
	}
	_ = g.Wait()

	return sections
}

// Status lists the registered sources.
func (s *Service) Status() []SourceStatus {
	seen := make(map[media.Source]bool)
	var out []SourceStatus
	for _, t := range media.AllTypes {
		src, ok := s.sources[t]
		if !ok || seen[src.Name()] {
			continue
		}
		seen[src.Name()] = true
		out = append(out, SourceStatus{
			Name:       src.Name(),
			Configured: src.IsConfigured(),
			MediaTypes: src.MediaTypes(),
		})
	}
	return out
}

// ClearCache drops all cached catalog results.
func (s *Service) ClearCache() {
	s.cache.Clear()
	s.logger.Info().Msg("Catalog cache cleared")
}

// rankByTitle orders records by Jaro-Winkler similarity of their title to
// the query. Ties keep the source's order.
func rankByTitle(records []media.Record, query string) {
	q := strings.ToLower(query)
	scores := make(map[string]float32, len(records))
	for _, r := range records {
		scores[r.ExternalID] = edlib.JaroWinklerSimilarity(q, strings.ToLower(r.Title))
	}
	sort.SliceStable(records, func(i, j int) bool {
		return scores[records[i].ExternalID] > scores[records[j].ExternalID]
	})
}

// userMessage hides upstream detail behind a retry hint.
func userMessage(err error) string {
	kind := apperr.KindOf(err)
	switch {
	case kind.IsUpstream():
		return "catalog temporarily unavailable, try again later"
	case errors.Is(err, apperr.ErrUnavailable):
		return "catalog not configured"
	default:
		return apperr.MessageOf(err)
	}
}

func summaryKey(t media.Type, id string) string { return fmt.Sprintf("summary:%s:%s", t, id) }
func detailsKey(t media.Type, id string) string { return fmt.Sprintf("details:%s:%s", t, id) }
func missingKey(t media.Type, id string) string { return fmt.Sprintf("missing:%s:%s", t, id) }
