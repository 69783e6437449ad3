// Package users manages accounts, passwords and profile privacy.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/auth"
	"github.com/mediashelf/mediashelf/internal/database"
	"github.com/mediashelf/mediashelf/internal/library"
)

const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"

	MinPasswordLength = 6
	maxPasswordLength = 72 // bcrypt ignores anything longer
	maxImageURLLength = 2048
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

// User is the public view of an account.
type User struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	ProfilePrivacy  string    `json:"profilePrivacy"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsPublic reports whether other users may see this profile.
func (u *User) IsPublic() bool {
	return u.ProfilePrivacy == PrivacyPublic
}

// Profile is a user together with their library summary.
type Profile struct {
	User  *User          `json:"user"`
	Stats *library.Stats `json:"stats,omitempty"`
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileInput is a partial profile update.
type UpdateProfileInput struct {
	ProfilePrivacy  *string `json:"profilePrivacy"`
	ProfileImageURL *string `json:"profileImageUrl"`
}

// StatsProvider supplies the library summary shown on profiles.
type StatsProvider interface {
	Stats(ctx context.Context, viewerID, ownerID int64) (*library.Stats, error)
}

// Service provides account operations.
type Service struct {
	db     database.Querier
	stats  StatsProvider
	now    func() time.Time
	logger zerolog.Logger
}

// NewService creates a new users service.
func NewService(db database.Querier, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		now:    time.Now,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

// SetStatsProvider enables library stats on profiles.
func (s *Service) SetStatsProvider(p StatsProvider) {
	s.stats = p
}

// Register creates an account with a private profile.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	username := strings.TrimSpace(input.Username)
	if !usernamePattern.MatchString(username) {
		return nil, apperr.Validation("username must be 3-32 letters, digits, '_', '.' or '-'")
	}
	if len(input.Password) < MinPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters", MinPasswordLength)
	}
	if len(input.Password) > maxPasswordLength {
		return nil, apperr.Validation("password must be at most %d bytes", maxPasswordLength)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, profile_privacy, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		username, hash, PrivacyPrivate, now, now,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("username %q is already taken", username)
		}
		s.logger.Error().Err(err).Str("username", username).Msg("failed to create user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}

	s.logger.Info().Int64("userId", id).Str("username", username).Msg("Registered user")
	return &User{
		ID:             id,
		Username:       username,
		ProfilePrivacy: PrivacyPrivate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords fail the same way.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, hash, err := s.getWithHash(ctx, `username = ?`, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Wrap(apperr.KindUnauthorized, auth.ErrInvalidCredentials, "invalid username or password")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := auth.CheckPassword(hash, password); err != nil {
		s.logger.Debug().Str("username", user.Username).Msg("Password mismatch")
		return nil, apperr.Wrap(apperr.KindUnauthorized, err, "invalid username or password")
	}
	return user, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	user, _, err := s.getWithHash(ctx, `id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user %d not found", id)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// GetByUsername returns a user by case-insensitive username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	user, _, err := s.getWithHash(ctx, `username = ?`, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user %q not found", username)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// CanView reports whether viewerID may see ownerID's profile and library.
// viewerID 0 is an anonymous caller.
func (s *Service) CanView(ctx context.Context, viewerID, ownerID int64) (bool, error) {
	if viewerID != 0 && viewerID == ownerID {
		return true, nil
	}
	owner, err := s.Get(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return owner.IsPublic(), nil
}

// Profile returns targetID's profile as seen by viewerID. Private profiles
// are only visible to their owner.
func (s *Service) Profile(ctx context.Context, viewerID, targetID int64) (*Profile, error) {
	user, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if viewerID != targetID && !user.IsPublic() {
		return nil, apperr.New(apperr.KindForbidden, "this profile is private")
	}

	profile := &Profile{User: user}
	if s.stats != nil {
		stats, err := s.stats.Stats(ctx, targetID, targetID)
		if err != nil {
			return nil, err
		}
		profile.Stats = stats
	}
	return profile, nil
}

// UpdateProfile changes privacy or the profile image.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*User, error) {
	if input.ProfilePrivacy == nil && input.ProfileImageURL == nil {
		return nil, apperr.Validation("at least one of profilePrivacy or profileImageUrl is required")
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.ProfilePrivacy != nil {
		privacy := strings.ToLower(strings.TrimSpace(*input.ProfilePrivacy))
		if privacy != PrivacyPublic && privacy != PrivacyPrivate {
			return nil, apperr.Validation("profilePrivacy must be public or private")
		}
		user.ProfilePrivacy = privacy
	}
	if input.ProfileImageURL != nil {
		url := strings.TrimSpace(*input.ProfileImageURL)
		if len(url) > maxImageURLLength {
			return nil, apperr.Validation("profileImageUrl is too long")
		}
		user.ProfileImageURL = url
	}
	user.UpdatedAt = s.now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE users SET profile_privacy = ?, profile_image_url = ?, updated_at = ?
		WHERE id = ?`,
		user.ProfilePrivacy, sql.NullString{String: user.ProfileImageURL, Valid: user.ProfileImageURL != ""},
		user.UpdatedAt, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info().Int64("userId", userID).Str("privacy", user.ProfilePrivacy).Msg("Updated profile")
	return user, nil
}

func (s *Service) getWithHash(ctx context.Context, where string, arg any) (*User, string, error) {
	var (
		u        User
		hash     string
		imageURL sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, profile_privacy, profile_image_url, created_at, updated_at
		FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Username, &hash, &u.ProfilePrivacy, &imageURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, "", err
	}
	u.ProfileImageURL = imageURL.String
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, hash, nil
}
