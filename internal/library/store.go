package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mediashelf/mediashelf/internal/database"
	"github.com/mediashelf/mediashelf/internal/media"
)

const entryColumns = `id, user_id, media_type, external_id, title, image_url, release_year,
	status, rating, notes, is_favorite, added_at, updated_at, completed_at`

// sortColumns whitelists ORDER BY expressions; user input never reaches
// the query text.
var sortColumns = map[string]string{
	SortUpdated:   "updated_at",
	SortAdded:     "added_at",
	SortCompleted: "completed_at",
	SortRating:    "rating",
	SortTitle:     "title COLLATE NOCASE",
}

// store runs the library queries.
type store struct {
	db database.Querier
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		e           Entry
		mediaType   string
		imageURL    sql.NullString
		releaseYear sql.NullInt64
		rating      sql.NullFloat64
		notes       sql.NullString
		favorite    int64
		completedAt sql.NullTime
	)
	err := row.Scan(&e.ID, &e.UserID, &mediaType, &e.ExternalID, &e.Title, &imageURL, &releaseYear,
		&e.Status, &rating, &notes, &favorite, &e.AddedAt, &e.UpdatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	e.MediaType = media.Type(mediaType)
	e.ImageURL = imageURL.String
	if releaseYear.Valid {
		y := int(releaseYear.Int64)
		e.ReleaseYear = &y
	}
	if rating.Valid {
		r := rating.Float64
		e.Rating = &r
	}
	if notes.Valid {
		n := notes.String
		e.Notes = &n
	}
	e.IsFavorite = favorite != 0
	e.AddedAt = e.AddedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		e.CompletedAt = &t
	}
	return &e, nil
}

func (s *store) insert(ctx context.Context, e *Entry) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO library_entries (user_id, media_type, external_id, title, image_url, release_year,
			status, rating, notes, is_favorite, added_at, updated_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, string(e.MediaType), e.ExternalID, e.Title, nullString(e.ImageURL), nullInt(e.ReleaseYear),
		e.Status, nullFloat(e.Rating), nullStringPtr(e.Notes), boolToInt(e.IsFavorite),
		e.AddedAt, e.UpdatedAt, nullTime(e.CompletedAt),
	)
	if err != nil {
		return err
	}
	e.ID, err = res.LastInsertId()
	return err
}

// get returns sql.ErrNoRows when the entry does not exist or belongs to
// another user.
func (s *store) get(ctx context.Context, userID, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE id = ? AND user_id = ?`, id, userID)
	return scanEntry(row)
}

func (s *store) getByExternal(ctx context.Context, userID int64, mediaType media.Type, externalID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE user_id = ? AND media_type = ? AND external_id = ?`,
		userID, string(mediaType), externalID)
	return scanEntry(row)
}

func (s *store) update(ctx context.Context, e *Entry) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE library_entries
		SET status = ?, rating = ?, notes = ?, is_favorite = ?, updated_at = ?, completed_at = ?
		WHERE id = ? AND user_id = ?`,
		e.Status, nullFloat(e.Rating), nullStringPtr(e.Notes), boolToInt(e.IsFavorite),
		e.UpdatedAt, nullTime(e.CompletedAt), e.ID, e.UserID,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (s *store) delete(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM library_entries WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (s *store) list(ctx context.Context, userID int64, opts ListOptions) ([]*Entry, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if opts.MediaType != "" {
		where = append(where, "media_type = ?")
		args = append(args, string(opts.MediaType))
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}
	if opts.Favorite != nil {
		where = append(where, "is_favorite = ?")
		args = append(args, boolToInt(*opts.Favorite))
	}
	if opts.MinRating != nil {
		where = append(where, "rating >= ?")
		args = append(args, *opts.MinRating)
	}
	if opts.MaxRating != nil {
		where = append(where, "rating <= ?")
		args = append(args, *opts.MaxRating)
	}

	column := sortColumns[opts.Sort]
	direction := "DESC"
	if opts.Order == "asc" {
		direction = "ASC"
	}
	// Unset values go last whichever way the list is sorted; id breaks ties
	// so paging is stable.
	orderBy := fmt.Sprintf("%s IS NULL, %s %s, id %s", column, column, direction, direction)

	query := `SELECT ` + entryColumns + ` FROM library_entries WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY ` + orderBy + ` LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type statusCount struct {
	mediaType media.Type
	status    string
	count     int
}

func (s *store) statusCounts(ctx context.Context, userID int64) ([]statusCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT media_type, status, COUNT(*)
		FROM library_entries
		WHERE user_id = ?
		GROUP BY media_type, status`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []statusCount
	for rows.Next() {
		var c statusCount
		var mediaType string
		if err := rows.Scan(&mediaType, &c.status, &c.count); err != nil {
			return nil, err
		}
		c.mediaType = media.Type(mediaType)
		out = append(out, c)
	}
	return out, rows.Err()
}

// ratingSummary returns the favorite count, the number of rated entries
// and their average rating.
func (s *store) ratingSummary(ctx context.Context, userID int64) (favorites, rated int, avg sql.NullFloat64, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(is_favorite), 0), COUNT(rating), AVG(rating)
		FROM library_entries
		WHERE user_id = ?`, userID).Scan(&favorites, &rated, &avg)
	return favorites, rated, avg, err
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
