package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	h, err := Load(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)
	assert.Empty(t, h.Removed)
}

func TestRecordSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.json")
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	h, err := Load(path)
	require.NoError(t, err)

	h.Record([]string{"101", "102"}, now)
	require.NoError(t, h.Save(30*24*time.Hour, now))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, reloaded.Removed, 2)

	recent := reloaded.Recent(30*24*time.Hour, now)
	assert.True(t, recent["101"])
	assert.True(t, recent["102"])
}

func TestRecentWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	h := &History{Removed: map[string]time.Time{
		"old":    now.Add(-40 * 24 * time.Hour),
		"recent": now.Add(-2 * 24 * time.Hour),
	}}

	recent := h.Recent(30*24*time.Hour, now)
	assert.True(t, recent["recent"])
	assert.False(t, recent["old"])
}

func TestSavePrunesOldEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	h, err := Load(path)
	require.NoError(t, err)
	h.Record([]string{"old"}, now.Add(-40*24*time.Hour))
	h.Record([]string{"fresh"}, now)

	require.NoError(t, h.Save(30*24*time.Hour, now))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, reloaded.Removed, 1)
	_, ok := reloaded.Removed["fresh"]
	assert.True(t, ok)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	h, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, h)
}
