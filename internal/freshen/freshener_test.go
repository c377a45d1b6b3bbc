package freshen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/music-freshener/config"
	"github.com/jaki95/music-freshener/internal/device"
	"github.com/jaki95/music-freshener/internal/history"
	"github.com/jaki95/music-freshener/internal/progress"
)

// writeExport writes a minimal library export with count tracks whose source
// files live under srcDir, and returns the export path.
func writeExport(t *testing.T, srcDir string, count int) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<plist version="1.0"><dict><key>Tracks</key><dict>`)
	for i := 1; i <= count; i++ {
		src := filepath.Join(srcDir, fmt.Sprintf("track-%d.mp3", i))
		require.NoError(t, os.WriteFile(src, []byte("audio"), 0o644))

		fmt.Fprintf(&b, `<key>%d</key><dict>`, i)
		fmt.Fprintf(&b, `<key>Name</key><string>Track %d</string>`, i)
		fmt.Fprintf(&b, `<key>Artist</key><string>Artist %d</string>`, i)
		b.WriteString(`<key>Album</key><string>Album</string>`)
		b.WriteString(`<key>Size</key><integer>5</integer>`)
		fmt.Fprintf(&b, `<key>Location</key><string>file://localhost%s</string>`, src)
		b.WriteString(`</dict>`)
	}
	b.WriteString(`</dict><key>Playlists</key><array/></dict></plist>`)

	path := filepath.Join(srcDir, "Library.xml")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func testConfig(t *testing.T, trackCount int) *config.Config {
	t.Helper()
	srcDir := t.TempDir()
	cfg := config.Default()
	cfg.Library = writeExport(t, srcDir, trackCount)
	cfg.Target = t.TempDir()
	cfg.MinFreeMB = 0
	cfg.History.Path = filepath.Join(t.TempDir(), "history.json")
	return cfg
}

func countMusicFiles(t *testing.T, mount string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(mount, func(path string, d os.DirEntry, err error) error {
		require.NoError(t, err)
		if !d.IsDir() && strings.HasSuffix(path, ".mp3") {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func TestRunInitialFill(t *testing.T) {
	cfg := testConfig(t, 5)
	cfg.InitialFill = 3

	res, err := New(cfg, progress.NewTracker(), false).Run(context.Background())
	require.NoError(t, err)

	require.NoError(t, res.Summary.Err())
	assert.Empty(t, res.Plan.Removals)
	assert.Len(t, res.Plan.Additions, 3)
	assert.Equal(t, 3, countMusicFiles(t, cfg.Target))
}

func TestRunReplacesAndRecordsHistory(t *testing.T) {
	cfg := testConfig(t, 8)
	cfg.Ratio = 1

	// First pass fills the empty device.
	cfg.InitialFill = 4
	_, err := New(cfg, progress.NewTracker(), false).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, countMusicFiles(t, cfg.Target))

	// Second pass retires all four and copies replacements on.
	res, err := New(cfg, progress.NewTracker(), false).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, res.Summary.Err())
	assert.Len(t, res.Plan.Removals, 4)
	assert.NotEmpty(t, res.Plan.Additions)

	hist, err := history.Load(cfg.History.Path)
	require.NoError(t, err)
	assert.Len(t, hist.Removed, 4)

	// Every addition is a track that was not just retired.
	recent := hist.Recent(30*24*time.Hour, time.Now())
	for _, a := range res.Plan.Additions {
		assert.False(t, recent[a.ID], "freshly removed track %s copied back", a.ID)
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	cfg := testConfig(t, 5)
	cfg.InitialFill = 3

	res, err := New(cfg, progress.NewTracker(), true).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.Plan.Additions, 3)
	assert.Equal(t, 0, countMusicFiles(t, cfg.Target))
	assert.NoFileExists(t, cfg.History.Path)
}

func TestRunUnmountedDevice(t *testing.T) {
	cfg := testConfig(t, 2)
	cfg.Target = filepath.Join(t.TempDir(), "not-mounted")

	_, err := New(cfg, progress.NewTracker(), false).Run(context.Background())

	var nm *device.NotMountedError
	assert.ErrorAs(t, err, &nm)
}

func TestRunMalformedLibrary(t *testing.T) {
	cfg := testConfig(t, 2)
	require.NoError(t, os.WriteFile(cfg.Library, []byte("<plist><dict>"), 0o644))

	tracker := progress.NewTracker()
	_, err := New(cfg, tracker, false).Run(context.Background())

	assert.Error(t, err)
	assert.Equal(t, progress.StageError, tracker.Stage())
	assert.Equal(t, 0, countMusicFiles(t, cfg.Target))
}
