package library

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/media"
)

//go:embed statuses.yaml
var statusesYAML []byte

// Category groups type-specific status tokens into one lifecycle.
type Category string

const (
	CategoryNotStarted Category = "not_started"
	CategoryInProgress Category = "in_progress"
	CategoryCompleted  Category = "completed"
	CategoryPaused     Category = "paused"
	CategoryDropped    Category = "dropped"
)

var categories = map[Category]bool{
	CategoryNotStarted: true,
	CategoryInProgress: true,
	CategoryCompleted:  true,
	CategoryPaused:     true,
	CategoryDropped:    true,
}

// Status is one legal status token for a media type.
type Status struct {
	Token    string   `yaml:"token" json:"token"`
	Label    string   `yaml:"label" json:"label"`
	Category Category `yaml:"category" json:"category"`
}

// StatusSet is the ordered vocabulary of one media type.
type StatusSet struct {
	Default  string   `yaml:"default" json:"default"`
	Statuses []Status `yaml:"statuses" json:"statuses"`
}

// StatusTable maps every media type to its legal statuses. It is the only
// place status tokens are defined.
type StatusTable map[media.Type]StatusSet

var defaultStatuses = mustParseStatusTable(statusesYAML)

// DefaultStatuses returns the built-in status table.
func DefaultStatuses() StatusTable {
	return defaultStatuses
}

func mustParseStatusTable(data []byte) StatusTable {
	table, err := ParseStatusTable(data)
	if err != nil {
		panic(fmt.Sprintf("library: invalid status table: %v", err))
	}
	return table
}

// ParseStatusTable decodes and checks a YAML status table. Every media
// type needs a default token from its own set and at least one completed
// status.
func ParseStatusTable(data []byte) (StatusTable, error) {
	var raw map[string]StatusSet
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse status table: %w", err)
	}

	table := make(StatusTable, len(raw))
	for name, set := range raw {
		t := media.Type(name)
		if !t.Valid() {
			return nil, fmt.Errorf("unknown media type %q", name)
		}

		seen := make(map[string]bool, len(set.Statuses))
		hasCompleted := false
		for _, st := range set.Statuses {
			if st.Token == "" {
				return nil, fmt.Errorf("%s: empty status token", name)
			}
			if seen[st.Token] {
				return nil, fmt.Errorf("%s: duplicate status %q", name, st.Token)
			}
			if !categories[st.Category] {
				return nil, fmt.Errorf("%s: status %q has unknown category %q", name, st.Token, st.Category)
			}
			seen[st.Token] = true
			hasCompleted = hasCompleted || st.Category == CategoryCompleted
		}
		if !seen[set.Default] {
			return nil, fmt.Errorf("%s: default %q is not a legal status", name, set.Default)
		}
		if !hasCompleted {
			return nil, fmt.Errorf("%s: no completed status", name)
		}
		table[t] = set
	}

	for _, t := range media.AllTypes {
		if _, ok := table[t]; !ok {
			return nil, fmt.Errorf("missing statuses for %s", t)
		}
	}
	return table, nil
}

// Lookup finds token in the vocabulary of mediaType.
func (t StatusTable) Lookup(mediaType media.Type, token string) (Status, bool) {
	for _, st := range t[mediaType].Statuses {
		if st.Token == token {
			return st, true
		}
	}
	return Status{}, false
}

// Default returns the not-started token for mediaType.
func (t StatusTable) Default(mediaType media.Type) string {
	return t[mediaType].Default
}

// IsCompleted reports whether token is in the completed category of mediaType.
func (t StatusTable) IsCompleted(mediaType media.Type, token string) bool {
	st, ok := t.Lookup(mediaType, token)
	return ok && st.Category == CategoryCompleted
}

// CategoryOf returns the category of token, or "" for an illegal token.
func (t StatusTable) CategoryOf(mediaType media.Type, token string) Category {
	st, _ := t.Lookup(mediaType, token)
	return st.Category
}

// Validate returns a validation error unless token is legal for mediaType.
func (t StatusTable) Validate(mediaType media.Type, token string) error {
	if _, ok := t.Lookup(mediaType, token); ok {
		return nil
	}
	return apperr.Validation("invalid status %q for %s; expected one of: %s",
		token, mediaType, strings.Join(t.Tokens(mediaType), ", "))
}

// Tokens lists the legal tokens of mediaType in progression order.
func (t StatusTable) Tokens(mediaType media.Type) []string {
	set := t[mediaType].Statuses
	out := make([]string, len(set))
	for i, st := range set {
		out[i] = st.Token
	}
	return out
}
