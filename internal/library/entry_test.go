package library

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateInput_JSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		ratingSet  bool
		ratingNil  bool
		notesSet   bool
		emptyInput bool
	}{
		{"empty object", `{}`, false, true, false, true},
		{"rating value", `{"rating": 17.5}`, true, false, false, false},
		{"rating null", `{"rating": null}`, true, true, false, false},
		{"notes null", `{"notes": null}`, false, true, true, false},
		{"favorite only", `{"isFavorite": true}`, false, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in UpdateInput
			require.NoError(t, json.Unmarshal([]byte(tt.body), &in))
			assert.Equal(t, tt.ratingSet, in.Rating.Set)
			assert.Equal(t, tt.ratingNil, in.Rating.Value == nil)
			assert.Equal(t, tt.notesSet, in.Notes.Set)
			assert.Equal(t, tt.emptyInput, in.IsEmpty())
		})
	}
}

func TestUpdateInput_JSONRejectsWrongType(t *testing.T) {
	var in UpdateInput
	assert.Error(t, json.Unmarshal([]byte(`{"rating": "high"}`), &in))
}
