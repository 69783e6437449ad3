package metadata

import (
	"context"

	"github.com/mediashelf/mediashelf/internal/media"
)

//go:generate mockgen -destination=mocks/mock_source.go -package=mocks github.com/mediashelf/mediashelf/internal/metadata Source

// Source is one external catalog. Implementations return *apperr.Error
// values with an upstream kind when the catalog fails, and KindUnavailable
// when they are not configured.
type Source interface {
	Name() media.Source
	IsConfigured() bool
	MediaTypes() []media.Type
	Search(ctx context.Context, mediaType media.Type, query string) ([]media.Record, error)
	Details(ctx context.Context, mediaType media.Type, externalID string) (*media.Record, error)
	Popular(ctx context.Context, mediaType media.Type, limit int) ([]media.Record, error)
}
