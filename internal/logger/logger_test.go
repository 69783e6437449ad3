package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestWithComponent_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(Config{Level: "error", Format: "json"}, &buf)

	log := l.WithComponent("library")
	log.Error().Str("status", "completed").Msg("boom")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "library", line["component"])
	assert.Equal(t, "completed", line["status"])
	assert.Equal(t, "boom", line["message"])
}

func TestNew_WritesRotatedFile(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	l := newWithWriter(Config{Level: "error", Format: "json", Path: dir}, &buf)

	l.Error().Msg("to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
