package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsesJSONOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "production", false)
	log.Info("movie added", "imdb_id", "tt0468569")
	log.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "movie added", record["msg"])
	assert.Equal(t, "tt0468569", record["imdb_id"])
}

func TestNewDebugUsesText(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "production", true)
	log.Debug("refreshing", "movie_id", 4)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "movie_id=4")
}

func TestInitSetsDefault(t *testing.T) {
	log := Init("production", false)
	t.Cleanup(func() { defaultLogger = nil })

	assert.Same(t, log, Default())
	assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))
}
