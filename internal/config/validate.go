package config

import (
	"fmt"
)

// MinJWTSecretLength is the shortest accepted signing secret.
const MinJWTSecretLength = 16

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true, "": true,
}

var validLogFormats = map[string]bool{
	"console": true, "json": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path: required")
	}

	if !validLogLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level: must be one of trace, debug, info, warn, error; got %q", c.Logging.Level))
	}
	if !validLogFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format: must be console or json; got %q", c.Logging.Format))
	}

	switch {
	case c.Auth.JWTSecret == "":
		errs = append(errs, "auth.jwt_secret: required (set MEDIASHELF_AUTH_JWT_SECRET)")
	case len(c.Auth.JWTSecret) < MinJWTSecretLength:
		errs = append(errs, fmt.Sprintf("auth.jwt_secret: must be at least %d characters", MinJWTSecretLength))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, "auth.token_ttl: must be positive")
	}
	if c.Auth.CookieName == "" {
		errs = append(errs, "auth.cookie_name: required")
	}

	if c.Library.RatingMax <= 0 {
		errs = append(errs, fmt.Sprintf("library.rating_max: must be positive, got %v", c.Library.RatingMax))
	}
	if c.Library.RatingPrecision < 0 || c.Library.RatingPrecision > 4 {
		errs = append(errs, fmt.Sprintf("library.rating_precision: must be between 0 and 4, got %d", c.Library.RatingPrecision))
	}

	if c.Metadata.IGDB.ClientID != "" && c.Metadata.IGDB.ClientSecret == "" {
		errs = append(errs, "metadata.igdb.client_secret: required when client_id is set")
	}

	return errs
}

// Check validates the configuration and returns a *ConfigError when
// anything is wrong.
func (c *Config) Check(path string) error {
	if errs := c.Validate(); len(errs) > 0 {
		return &ConfigError{Path: path, Errors: errs}
	}
	return nil
}

// Warnings lists non-fatal problems, such as catalogs without credentials.
// Those catalogs report themselves unavailable per request.
func (c *Config) Warnings() []string {
	var warns []string
	if c.Metadata.Offline {
		return []string{"metadata.offline enabled; serving the built-in fixture catalog"}
	}
	if c.Metadata.TMDB.APIKey == "" {
		warns = append(warns, "metadata.tmdb.api_key not set; movie and series search disabled")
	}
	if c.Metadata.IGDB.ClientID == "" || c.Metadata.IGDB.ClientSecret == "" {
		warns = append(warns, "metadata.igdb credentials not set; game search disabled")
	}
	return warns
}
