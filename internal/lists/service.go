package lists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/database"
	"github.com/mediashelf/mediashelf/internal/media"
)

const (
	maxTitleLength   = 200
	maxCommentLength = 2000
)

// Service provides list operations.
type Service struct {
	db     *database.DB
	conn   *sql.DB
	now    func() time.Time
	logger zerolog.Logger
}

// NewService creates a new lists service.
func NewService(db *database.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		conn:   db.Conn(),
		now:    time.Now,
		logger: logger.With().Str("component", "lists").Logger(),
	}
}

// SetClock replaces the time source. Used by tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create creates a list owned by userID.
func (s *Service) Create(ctx context.Context, userID int64, input CreateInput) (*List, error) {
	title := strings.TrimSpace(input.Title)
	if err := checkTitle(title); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	list := &List{
		UserID:        userID,
		Title:         title,
		Description:   strings.TrimSpace(input.Description),
		CoverImageURL: strings.TrimSpace(input.CoverImageURL),
		IsPublic:      input.IsPublic,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO user_lists (user_id, title, description, cover_image_url, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, list.Title, nullString(list.Description), nullString(list.CoverImageURL),
		boolToInt(list.IsPublic), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	if list.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read list id: %w", err)
	}

	s.logger.Info().Int64("userId", userID).Int64("listId", list.ID).Str("title", title).Msg("Created list")
	return list, nil
}

// ListForUser returns ownerID's lists with item counts. Other viewers only
// see public lists.
func (s *Service) ListForUser(ctx context.Context, viewerID, ownerID int64) ([]*List, error) {
	query := `
		SELECT l.id, l.user_id, l.title, l.description, l.cover_image_url, l.is_public,
			l.created_at, l.updated_at, COUNT(i.id)
		FROM user_lists l
		LEFT JOIN list_items i ON i.list_id = l.id
		WHERE l.user_id = ?`
	if viewerID != ownerID {
		query += ` AND l.is_public = 1`
	}
	query += ` GROUP BY l.id ORDER BY l.updated_at DESC, l.id DESC`

	rows, err := s.conn.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	defer rows.Close()

	out := []*List{}
	for rows.Next() {
		list, err := scanList(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to read list: %w", err)
		}
		out = append(out, list)
	}
	return out, rows.Err()
}

// Get returns a list with its items in insertion order. Private lists of
// other users are reported as not found.
func (s *Service) Get(ctx context.Context, viewerID, listID int64) (*List, error) {
	list, err := s.load(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.UserID != viewerID && !list.IsPublic {
		return nil, listNotFound(listID)
	}

	items, err := s.items(ctx, listID)
	if err != nil {
		return nil, err
	}
	list.Items = items
	list.ItemCount = len(items)
	return list, nil
}

// Update applies a partial update to a list owned by userID.
func (s *Service) Update(ctx context.Context, userID, listID int64, input UpdateInput) (*List, error) {
	if input.Title == nil && input.Description == nil && input.CoverImageURL == nil && input.IsPublic == nil {
		return nil, apperr.Validation("at least one of title, description, coverImageUrl or isPublic is required")
	}

	list, err := s.owned(ctx, userID, listID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if err := checkTitle(title); err != nil {
			return nil, err
		}
		list.Title = title
	}
	if input.Description != nil {
		list.Description = strings.TrimSpace(*input.Description)
	}
	if input.CoverImageURL != nil {
		list.CoverImageURL = strings.TrimSpace(*input.CoverImageURL)
	}
	if input.IsPublic != nil {
		list.IsPublic = *input.IsPublic
	}
	list.UpdatedAt = s.now().UTC()

	_, err = s.conn.ExecContext(ctx, `
		UPDATE user_lists
		SET title = ?, description = ?, cover_image_url = ?, is_public = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		list.Title, nullString(list.Description), nullString(list.CoverImageURL), boolToInt(list.IsPublic),
		list.UpdatedAt, listID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update list: %w", err)
	}
	return list, nil
}

// Delete removes a list and its items.
func (s *Service) Delete(ctx context.Context, userID, listID int64) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM user_lists WHERE id = ? AND user_id = ?`, listID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	} else if n == 0 {
		return listNotFound(listID)
	}
	s.logger.Info().Int64("userId", userID).Int64("listId", listID).Msg("Deleted list")
	return nil
}

// AddItem appends one of the owner's library entries to the list.
func (s *Service) AddItem(ctx context.Context, userID, listID int64, input AddItemInput) (*Item, error) {
	comment := strings.TrimSpace(input.Comment)
	if err := checkComment(comment); err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, userID, listID); err != nil {
		return nil, err
	}

	var entryOwner int64
	err := s.conn.QueryRowContext(ctx, `SELECT user_id FROM library_entries WHERE id = ?`, input.LibraryEntryID).Scan(&entryOwner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && entryOwner != userID) {
		return nil, apperr.NotFound("library entry %d not found", input.LibraryEntryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load library entry: %w", err)
	}

	now := s.now().UTC()
	var itemID int64
	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO list_items (list_id, library_entry_id, comment, position, added_at)
			VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM list_items WHERE list_id = ?), ?)`,
			listID, input.LibraryEntryID, nullString(comment), listID, now,
		)
		if err != nil {
			return err
		}
		if itemID, err = res.LastInsertId(); err != nil {
			return err
		}
		return touch(ctx, tx, listID, now)
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("entry is already on this list")
		}
		return nil, fmt.Errorf("failed to add list item: %w", err)
	}

	return s.item(ctx, listID, itemID)
}

// UpdateItem changes an item's comment.
func (s *Service) UpdateItem(ctx context.Context, userID, listID, itemID int64, input UpdateItemInput) (*Item, error) {
	if input.Comment == nil {
		return nil, apperr.Validation("comment is required")
	}
	comment := strings.TrimSpace(*input.Comment)
	if err := checkComment(comment); err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, userID, listID); err != nil {
		return nil, err
	}

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE list_items SET comment = ? WHERE id = ? AND list_id = ?`,
			nullString(comment), itemID, listID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return itemNotFound(itemID)
		}
		return touch(ctx, tx, listID, s.now().UTC())
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update list item: %w", err)
	}

	return s.item(ctx, listID, itemID)
}

// RemoveItem takes an item off the list.
func (s *Service) RemoveItem(ctx context.Context, userID, listID, itemID int64) error {
	if _, err := s.owned(ctx, userID, listID); err != nil {
		return err
	}

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM list_items WHERE id = ? AND list_id = ?`, itemID, listID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return itemNotFound(itemID)
		}
		return touch(ctx, tx, listID, s.now().UTC())
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return err
		}
		return fmt.Errorf("failed to remove list item: %w", err)
	}
	return nil
}

// owned loads a list and checks it belongs to userID.
func (s *Service) owned(ctx context.Context, userID, listID int64) (*List, error) {
	list, err := s.load(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.UserID != userID {
		return nil, listNotFound(listID)
	}
	return list, nil
}

func (s *Service) load(ctx context.Context, listID int64) (*List, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, cover_image_url, is_public, created_at, updated_at
		FROM user_lists WHERE id = ?`, listID)
	list, err := scanList(row, false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, listNotFound(listID)
		}
		return nil, fmt.Errorf("failed to load list: %w", err)
	}
	return list, nil
}

const itemColumns = `
	i.id, i.list_id, i.library_entry_id, i.comment, i.position, i.added_at,
	e.media_type, e.external_id, e.title, e.image_url, e.release_year, e.status`

func (s *Service) items(ctx context.Context, listID int64) ([]*Item, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT `+itemColumns+`
		FROM list_items i
		JOIN library_entries e ON e.id = i.library_entry_id
		WHERE i.list_id = ?
		ORDER BY i.position ASC, i.id ASC`, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to load list items: %w", err)
	}
	defer rows.Close()

	items := []*Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read list item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Service) item(ctx context.Context, listID, itemID int64) (*Item, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+itemColumns+`
		FROM list_items i
		JOIN library_entries e ON e.id = i.library_entry_id
		WHERE i.id = ? AND i.list_id = ?`, itemID, listID)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, itemNotFound(itemID)
		}
		return nil, fmt.Errorf("failed to load list item: %w", err)
	}
	return item, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(row rowScanner, withCount bool) (*List, error) {
	var (
		l           List
		description sql.NullString
		cover       sql.NullString
		isPublic    int64
	)
	dest := []any{&l.ID, &l.UserID, &l.Title, &description, &cover, &isPublic, &l.CreatedAt, &l.UpdatedAt}
	if withCount {
		dest = append(dest, &l.ItemCount)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	l.Description = description.String
	l.CoverImageURL = cover.String
	l.IsPublic = isPublic != 0
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
	return &l, nil
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		it          Item
		comment     sql.NullString
		mediaType   string
		imageURL    sql.NullString
		releaseYear sql.NullInt64
	)
	err := row.Scan(&it.ID, &it.ListID, &it.LibraryEntryID, &comment, &it.Position, &it.AddedAt,
		&mediaType, &it.ExternalID, &it.Title, &imageURL, &releaseYear, &it.Status)
	if err != nil {
		return nil, err
	}
	it.Comment = comment.String
	it.AddedAt = it.AddedAt.UTC()
	it.MediaType = media.Type(mediaType)
	it.ImageURL = imageURL.String
	if releaseYear.Valid {
		y := int(releaseYear.Int64)
		it.ReleaseYear = &y
	}
	return &it, nil
}

func touch(ctx context.Context, q database.Querier, listID int64, now time.Time) error {
	_, err := q.ExecContext(ctx, `UPDATE user_lists SET updated_at = ? WHERE id = ?`, now, listID)
	return err
}

func checkTitle(title string) error {
	if title == "" {
		return apperr.Validation("title is required")
	}
	if len(title) > maxTitleLength {
		return apperr.Validation("title must be at most %d characters", maxTitleLength)
	}
	return nil
}

func checkComment(comment string) error {
	if len(comment) > maxCommentLength {
		return apperr.Validation("comment must be at most %d characters", maxCommentLength)
	}
	return nil
}

func listNotFound(id int64) error {
	return apperr.NotFound("list %d not found", id)
}

func itemNotFound(id int64) error {
	return apperr.NotFound("list item %d not found", id)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
