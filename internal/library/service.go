package library

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/config"
	"github.com/mediashelf/mediashelf/internal/database"
	"github.com/mediashelf/mediashelf/internal/media"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	maxNotesLength   = 10000
)

// Visibility decides whether viewer may read owner's library.
type Visibility interface {
	CanView(ctx context.Context, viewerID, ownerID int64) (bool, error)
}

// Service provides library operations.
type Service struct {
	store      *store
	statuses   StatusTable
	ratingMax  float64
	precision  int
	visibility Visibility
	now        func() time.Time
	logger     zerolog.Logger
}

// NewService creates a new library service.
func NewService(db database.Querier, cfg config.LibraryConfig, logger zerolog.Logger) *Service {
	ratingMax := cfg.RatingMax
	if ratingMax <= 0 {
		ratingMax = 20
	}
	return &Service{
		store:     &store{db: db},
		statuses:  DefaultStatuses(),
		ratingMax: ratingMax,
		precision: cfg.RatingPrecision,
		now:       time.Now,
		logger:    logger.With().Str("component", "library").Logger(),
	}
}

// SetVisibility sets the policy used when one user reads another's library.
// Without one, only owners can read their own library.
func (s *Service) SetVisibility(v Visibility) {
	s.visibility = v
}

// SetClock replaces the time source. Used by tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Statuses returns the status vocabulary.
func (s *Service) Statuses() StatusTable {
	return s.statuses
}

// Add creates an entry for userID. The status defaults to the media
// type's not-started token.
func (s *Service) Add(ctx context.Context, userID int64, input AddInput) (*Entry, error) {
	mediaType, err := media.ParseType(input.MediaType)
	if err != nil {
		return nil, err
	}
	externalID := strings.TrimSpace(input.ExternalID)
	if externalID == "" {
		return nil, apperr.Validation("externalId is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = s.statuses.Default(mediaType)
	}
	if err := s.statuses.Validate(mediaType, status); err != nil {
		return nil, err
	}

	rating, err := s.checkRating(input.Rating)
	if err != nil {
		return nil, err
	}
	if err := checkNotes(input.Notes); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	entry := &Entry{
		UserID:      userID,
		MediaType:   mediaType,
		ExternalID:  externalID,
		Title:       title,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		ReleaseYear: input.ReleaseYear,
		Status:      status,
		Rating:      rating,
		Notes:       input.Notes,
		IsFavorite:  input.IsFavorite,
		AddedAt:     now,
		UpdatedAt:   now,
	}
	if s.statuses.IsCompleted(mediaType, status) {
		entry.CompletedAt = &now
	}

	// The unique index decides concurrent adds of the same item.
	if err := s.store.insert(ctx, entry); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("%s %s is already in your library", mediaType, externalID)
		}
		return nil, fmt.Errorf("failed to add library entry: %w", err)
	}

	s.logger.Info().
		Int64("userId", userID).
		Int64("id", entry.ID).
		Str("mediaType", string(mediaType)).
		Str("externalId", externalID).
		Str("status", status).
		Msg("Added library entry")

	return entry, nil
}

// Update applies a partial update to an entry owned by userID.
func (s *Service) Update(ctx context.Context, userID, id int64, input UpdateInput) (*Entry, error) {
	if input.IsEmpty() {
		return nil, apperr.Validation("at least one of status, rating, notes or isFavorite is required")
	}

	entry, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	wasCompleted := s.statuses.IsCompleted(entry.MediaType, entry.Status)
	if input.Status != nil {
		status := strings.TrimSpace(*input.Status)
		if err := s.statuses.Validate(entry.MediaType, status); err != nil {
			return nil, err
		}
		entry.Status = status
	}
	if input.Rating.Set {
		rating, err := s.checkRating(input.Rating.Value)
		if err != nil {
			return nil, err
		}
		entry.Rating = rating
	}
	if input.Notes.Set {
		if err := checkNotes(input.Notes.Value); err != nil {
			return nil, err
		}
		entry.Notes = input.Notes.Value
	}
	if input.IsFavorite != nil {
		entry.IsFavorite = *input.IsFavorite
	}

	now := s.now().UTC()
	isCompleted := s.statuses.IsCompleted(entry.MediaType, entry.Status)
	switch {
	case isCompleted && !wasCompleted:
		entry.CompletedAt = &now
	case !isCompleted && wasCompleted:
		entry.CompletedAt = nil
	}
	entry.UpdatedAt = now

	if err := s.store.update(ctx, entry); err != nil {
		if isNoRows(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("failed to update library entry: %w", err)
	}

	s.logger.Debug().Int64("userId", userID).Int64("id", id).Str("status", entry.Status).Msg("Updated library entry")
	return entry, nil
}

// Remove deletes an entry owned by userID. List memberships go with it.
func (s *Service) Remove(ctx context.Context, userID, id int64) error {
	if err := s.store.delete(ctx, userID, id); err != nil {
		if isNoRows(err) {
			return notFound(id)
		}
		return fmt.Errorf("failed to remove library entry: %w", err)
	}
	s.logger.Info().Int64("userId", userID).Int64("id", id).Msg("Removed library entry")
	return nil
}

// Get returns an entry owned by userID. Entries of other users are
// reported as not found.
func (s *Service) Get(ctx context.Context, userID, id int64) (*Entry, error) {
	entry, err := s.store.get(ctx, userID, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("failed to get library entry: %w", err)
	}
	return entry, nil
}

// GetByExternal finds userID's entry for a catalog item.
func (s *Service) GetByExternal(ctx context.Context, userID int64, mediaType media.Type, externalID string) (*Entry, error) {
	entry, err := s.store.getByExternal(ctx, userID, mediaType, strings.TrimSpace(externalID))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("%s %s is not in the library", mediaType, externalID)
		}
		return nil, fmt.Errorf("failed to get library entry: %w", err)
	}
	return entry, nil
}

// List returns ownerID's entries as seen by viewerID.
func (s *Service) List(ctx context.Context, viewerID, ownerID int64, opts ListOptions) ([]*Entry, error) {
	if err := s.checkVisible(ctx, viewerID, ownerID); err != nil {
		return nil, err
	}
	if err := s.normalizeListOptions(&opts); err != nil {
		return nil, err
	}

	entries, err := s.store.list(ctx, ownerID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}
	return entries, nil
}

// Stats summarizes ownerID's library as seen by viewerID.
func (s *Service) Stats(ctx context.Context, viewerID, ownerID int64) (*Stats, error) {
	if err := s.checkVisible(ctx, viewerID, ownerID); err != nil {
		return nil, err
	}

	counts, err := s.store.statusCounts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count library: %w", err)
	}

	stats := &Stats{
		ByType:     make(map[media.Type]int, len(media.AllTypes)),
		ByCategory: make(map[Category]int),
	}
	for _, t := range media.AllTypes {
		stats.ByType[t] = 0
	}
	for _, c := range counts {
		stats.Total += c.count
		stats.ByType[c.mediaType] += c.count
		if category := s.statuses.CategoryOf(c.mediaType, c.status); category != "" {
			stats.ByCategory[category] += c.count
		}
	}
	stats.CompletedCount = stats.ByCategory[CategoryCompleted]

	favorites, rated, avg, err := s.store.ratingSummary(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize ratings: %w", err)
	}
	stats.FavoriteCount = favorites
	stats.RatedCount = rated
	if avg.Valid {
		a := media.Round(avg.Float64, 1)
		stats.AverageRating = &a
	}
	return stats, nil
}

func (s *Service) checkVisible(ctx context.Context, viewerID, ownerID int64) error {
	if viewerID == ownerID {
		return nil
	}
	if s.visibility == nil {
		return apperr.New(apperr.KindForbidden, "this library is private")
	}
	ok, err := s.visibility.CanView(ctx, viewerID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.KindForbidden, "this library is private")
	}
	return nil
}

func (s *Service) normalizeListOptions(opts *ListOptions) error {
	if opts.MediaType != "" {
		t, err := media.ParseType(string(opts.MediaType))
		if err != nil {
			return err
		}
		opts.MediaType = t
	}
	if opts.Status != "" && opts.MediaType != "" {
		if err := s.statuses.Validate(opts.MediaType, opts.Status); err != nil {
			return err
		}
	}
	for _, bound := range []*float64{opts.MinRating, opts.MaxRating} {
		if bound != nil && (math.IsNaN(*bound) || *bound < 0 || *bound > s.ratingMax) {
			return apperr.Validation("rating filter must be between 0 and %g", s.ratingMax)
		}
	}
	if opts.MinRating != nil && opts.MaxRating != nil && *opts.MinRating > *opts.MaxRating {
		return apperr.Validation("minRating must not exceed maxRating")
	}

	if opts.Sort == "" {
		opts.Sort = SortUpdated
	}
	if _, ok := sortColumns[opts.Sort]; !ok {
		return apperr.Validation("invalid sort %q", opts.Sort)
	}
	switch opts.Order {
	case "asc", "desc":
	case "":
		opts.Order = "desc"
		if opts.Sort == SortTitle {
			opts.Order = "asc"
		}
	default:
		return apperr.Validation("order must be asc or desc")
	}

	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}
	opts.Limit = min(opts.Limit, maxListLimit)
	opts.Offset = max(opts.Offset, 0)
	return nil
}

// checkRating rejects out-of-range ratings and rounds valid ones to the
// configured precision.
func (s *Service) checkRating(rating *float64) (*float64, error) {
	if rating == nil {
		return nil, nil
	}
	r := *rating
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 || r > s.ratingMax {
		return nil, apperr.Validation("rating must be between 0 and %g", s.ratingMax)
	}
	r = media.Round(r, s.precision)
	return &r, nil
}

func checkNotes(notes *string) error {
	if notes != nil && len(*notes) > maxNotesLength {
		return apperr.Validation("notes must be at most %d bytes", maxNotesLength)
	}
	return nil
}

func notFound(id int64) error {
	return apperr.NotFound("library entry %d not found", id)
}
