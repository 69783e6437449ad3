package config

// Embedded API keys injected at build time via ldflags.
// These serve as defaults and can be overridden by environment
// variables or config file.
//
// Build with:
//   go build -ldflags "-X 'github.com/mediashelf/mediashelf/internal/config.EmbeddedTMDBKey=xxx' \
//                      -X 'github.com/mediashelf/mediashelf/internal/config.EmbeddedIGDBClientID=yyy'"
var (
	// Version is the release tag, set with -X ...config.Version=v1.2.3.
	Version = "dev"

	EmbeddedTMDBKey          string
	EmbeddedGoogleBooksKey   string
	EmbeddedIGDBClientID     string
	EmbeddedIGDBClientSecret string
)
