// Package mock provides an offline catalog source for developer mode. It
// serves a small fixed catalog for every media type so the app can run
// without catalog credentials.
package mock

import (
	"context"
	"strings"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/media"
)

// Source is an in-memory catalog source.
type Source struct {
	records []media.Record
}

// NewSource creates a source over the built-in fixture catalog.
func NewSource() *Source {
	return &Source{records: fixtures}
}

// Name returns the source name.
func (s *Source) Name() media.Source {
	return "mock"
}

// IsConfigured is always true.
func (s *Source) IsConfigured() bool {
	return true
}

// MediaTypes returns every media type.
func (s *Source) MediaTypes() []media.Type {
	return media.AllTypes
}

// Search matches the query as a case-insensitive title substring.
func (s *Source) Search(_ context.Context, mediaType media.Type, query string) ([]media.Record, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	results := []media.Record{}
	for _, r := range s.records {
		if r.MediaType == mediaType && strings.Contains(strings.ToLower(r.Title), query) {
			results = append(results, summary(r))
		}
	}
	return results, nil
}

// Details returns the full fixture record.
func (s *Source) Details(_ context.Context, mediaType media.Type, externalID string) (*media.Record, error) {
	for _, r := range s.records {
		if r.MediaType == mediaType && r.ExternalID == externalID {
			out := r
			out.Detailed = true
			return &out, nil
		}
	}
	return nil, apperr.New(apperr.KindUpstreamNotFound, "mock catalog has no such item")
}

// Popular returns the first limit fixtures of mediaType.
func (s *Source) Popular(_ context.Context, mediaType media.Type, limit int) ([]media.Record, error) {
	results := []media.Record{}
	for _, r := range s.records {
		if r.MediaType != mediaType {
			continue
		}
		if limit > 0 && len(results) >= limit {
			break
		}
		results = append(results, summary(r))
	}
	return results, nil
}

// summary strips the detail-only extras, like a real search response.
func summary(r media.Record) media.Record {
	r.Screen, r.Book, r.Game = nil, nil, nil
	r.Detailed = false
	return r
}
