// Package auth issues and checks session tokens and protects routes with
// them. Account storage lives in the users package.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediashelf/mediashelf/internal/config"
)

const issuer = "mediashelf"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrPasswordRequired   = errors.New("password is required")
)

// Claims represents JWT claims.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service signs and validates session tokens.
type Service struct {
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewService creates a token service. The secret must already have passed
// config validation; an empty one is rejected here as well.
func NewService(cfg config.AuthConfig) (*Service, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		jwtSecret: []byte(cfg.JWTSecret),
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// SetClock replaces the time source. Used by tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// TTL returns how long issued tokens stay valid.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// GenerateToken creates a signed token for the user and returns it with
// its expiry.
func (s *Service) GenerateToken(userID int64, username string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrPasswordRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// CheckPassword compares a password with its bcrypt hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
