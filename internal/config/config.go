package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Metadata MetadataConfig `mapstructure:"metadata"`
	Library  LibraryConfig  `mapstructure:"library"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	CookieName   string        `mapstructure:"cookie_name"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
}

// MetadataConfig holds settings for the external catalogs.
type MetadataConfig struct {
	TMDB             TMDBConfig        `mapstructure:"tmdb"`
	GoogleBooks      GoogleBooksConfig `mapstructure:"googlebooks"`
	IGDB             IGDBConfig        `mapstructure:"igdb"`
	CacheTTL         time.Duration     `mapstructure:"cache_ttl"`
	NegativeCacheTTL time.Duration     `mapstructure:"negative_cache_ttl"`
	CacheMaxItems    int               `mapstructure:"cache_max_items"`
	RankResults      bool              `mapstructure:"rank_results"`
	PopularLimit     int               `mapstructure:"popular_limit"`

	// Offline serves a built-in fixture catalog instead of the real APIs.
	Offline bool `mapstructure:"offline"`
}

// TMDBConfig holds TMDB API configuration.
type TMDBConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	ImageBaseURL string        `mapstructure:"image_base_url"`
	Language     string        `mapstructure:"language"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// GoogleBooksConfig holds Google Books API configuration.
type GoogleBooksConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Language   string        `mapstructure:"language"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// IGDBConfig holds IGDB API configuration. Tokens come from the Twitch
// client-credentials endpoint at AuthURL.
type IGDBConfig struct {
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	BaseURL      string        `mapstructure:"base_url"`
	AuthURL      string        `mapstructure:"auth_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	TokenBuffer  time.Duration `mapstructure:"token_buffer"`
}

// LibraryConfig holds the user rating scale.
type LibraryConfig struct {
	RatingMax       float64 `mapstructure:"rating_max"`
	RatingPrecision int     `mapstructure:"rating_precision"`
}

// Default returns a Config with default values.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.mediashelf")
	}

	v.SetEnvPrefix("MEDIASHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyEmbeddedKeys()

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.path", "./data/mediashelf.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.cookie_name", "authToken")
	v.SetDefault("auth.secure_cookie", false)

	// Catalog defaults
	v.SetDefault("metadata.tmdb.api_key", "")
	v.SetDefault("metadata.tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("metadata.tmdb.image_base_url", "https://image.tmdb.org/t/p")
	v.SetDefault("metadata.tmdb.language", "en-US")
	v.SetDefault("metadata.tmdb.timeout", 10*time.Second)

	v.SetDefault("metadata.googlebooks.api_key", "")
	v.SetDefault("metadata.googlebooks.base_url", "https://www.googleapis.com/books/v1")
	v.SetDefault("metadata.googlebooks.language", "en")
	v.SetDefault("metadata.googlebooks.max_results", 20)
	v.SetDefault("metadata.googlebooks.timeout", 10*time.Second)

	v.SetDefault("metadata.igdb.client_id", "")
	v.SetDefault("metadata.igdb.client_secret", "")
	v.SetDefault("metadata.igdb.base_url", "https://api.igdb.com/v4")
	v.SetDefault("metadata.igdb.auth_url", "https://id.twitch.tv/oauth2/token")
	v.SetDefault("metadata.igdb.timeout", 10*time.Second)
	v.SetDefault("metadata.igdb.token_buffer", 60*time.Second)

	v.SetDefault("metadata.cache_ttl", time.Hour)
	v.SetDefault("metadata.negative_cache_ttl", 10*time.Minute)
	v.SetDefault("metadata.cache_max_items", 1000)
	v.SetDefault("metadata.rank_results", true)
	v.SetDefault("metadata.popular_limit", 12)
	v.SetDefault("metadata.offline", false)

	// Library defaults
	v.SetDefault("library.rating_max", 20.0)
	v.SetDefault("library.rating_precision", 2)
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// applyEmbeddedKeys fills catalog credentials from build-time values
// when neither the config file nor the environment provided them.
func (c *Config) applyEmbeddedKeys() {
	if c.Metadata.TMDB.APIKey == "" {
		c.Metadata.TMDB.APIKey = EmbeddedTMDBKey
	}
	if c.Metadata.GoogleBooks.APIKey == "" {
		c.Metadata.GoogleBooks.APIKey = EmbeddedGoogleBooksKey
	}
	if c.Metadata.IGDB.ClientID == "" {
		c.Metadata.IGDB.ClientID = EmbeddedIGDBClientID
	}
	if c.Metadata.IGDB.ClientSecret == "" {
		c.Metadata.IGDB.ClientSecret = EmbeddedIGDBClientSecret
	}
}
