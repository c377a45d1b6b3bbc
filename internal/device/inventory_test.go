package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/music-freshener/internal/domain"
	"github.com/jaki95/music-freshener/internal/library"
)

var testExtensions = []string{".mp3", ".m4a", ".ogg"}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0o644))
}

func TestScan(t *testing.T) {
	mount := t.TempDir()
	writeFile(t, filepath.Join(mount, "Artist", "Album", "one.mp3"))
	writeFile(t, filepath.Join(mount, "Artist", "Album", "two.M4A"))
	writeFile(t, filepath.Join(mount, "Artist", "Album", "cover.jpg"))
	writeFile(t, filepath.Join(mount, "Artist", "Album", ".hidden.mp3"))
	writeFile(t, filepath.Join(mount, ".Trashes", "gone.mp3"))

	inv, err := Scan(mount, testExtensions)
	require.NoError(t, err)

	var names []string
	for _, f := range inv.Files {
		names = append(names, filepath.Base(f.Path))
	}
	assert.ElementsMatch(t, []string{"one.mp3", "two.M4A"}, names)
	assert.Equal(t, int64(10), inv.TotalBytes())
}

func TestScanNotMounted(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-mount")

	inv, err := Scan(missing, testExtensions)
	assert.Nil(t, inv)

	var notMounted *NotMountedError
	require.ErrorAs(t, err, &notMounted)
	assert.Equal(t, missing, notMounted.Path)
}

func TestScanMountIsFile(t *testing.T) {
	mount := filepath.Join(t.TempDir(), "file")
	writeFile(t, mount)

	_, err := Scan(mount, testExtensions)
	var notMounted *NotMountedError
	assert.ErrorAs(t, err, &notMounted)
}

func TestIsMusicFile(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		expected bool
	}{
		{name: "mp3", file: "song.mp3", expected: true},
		{name: "uppercase extension", file: "song.MP3", expected: true},
		{name: "image", file: "cover.jpg", expected: false},
		{name: "dotfile", file: ".song.mp3", expected: false},
		{name: "no extension", file: "song", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsMusicFile(tt.file, testExtensions))
		})
	}
}

func TestMatch(t *testing.T) {
	layout := Layout{Mount: "/mnt/phone"}

	trackOne := &domain.Track{ID: "1", Title: "One", Artist: "Abba", Album: "Arrival", Location: "/lib/one.mp3"}
	trackTwo := &domain.Track{ID: "2", Title: "Two", Artist: "Beck", Album: "Odelay", Location: "/lib/two.mp3"}
	lib := library.New("test", map[string]*domain.Track{"1": trackOne, "2": trackTwo}, nil)

	inv := &Inventory{
		Mount: "/mnt/phone",
		Files: []domain.DeviceTrack{
			// Matches by expected layout path.
			{Path: layout.TrackPath(trackOne)},
			// Path differs but the tags line up (case-insensitive).
			{Path: "/mnt/phone/misc/two.mp3", Artist: "BECK", Title: "two"},
			// No match at all.
			{Path: "/mnt/phone/misc/stray.mp3", Artist: "Nobody", Title: "Nothing"},
		},
	}

	inv.Match(lib, layout)

	assert.Equal(t, "1", inv.Files[0].TrackID)
	assert.Equal(t, "2", inv.Files[1].TrackID)
	assert.Empty(t, inv.Files[2].TrackID)
}

func TestRoundUpTo(t *testing.T) {
	tests := []struct {
		name     string
		n        int64
		block    int64
		expected int64
	}{
		{name: "exact multiple", n: 4096, block: 4096, expected: 4096},
		{name: "rounds up", n: 4097, block: 4096, expected: 8192},
		{name: "zero size", n: 0, block: 4096, expected: 0},
		{name: "block of one", n: 123, block: 1, expected: 123},
		{name: "unknown block", n: 123, block: 0, expected: 123},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RoundUpTo(tt.n, tt.block))
		})
	}
}
