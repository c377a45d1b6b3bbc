package device

import (
	"path/filepath"
	"strings"

	"github.com/jaki95/music-freshener/internal/domain"
)

// badCharacters are stripped from directory names so they are compatible
// with the target filesystem.
const badCharacters = "/~\\\"':;<>\x7f\n*"

// Layout maps catalog tracks to their paths on the device:
// <mount>/<artist>/<album>/<filename>.
type Layout struct {
	Mount string
}

// TrackPath returns the device path a track is copied to. Compilation tracks
// are grouped under a shared Compilations directory.
func (l Layout) TrackPath(t *domain.Track) string {
	artist := t.Artist
	if t.Compilation {
		artist = "Compilations"
	} else if artist == "" {
		artist = "Unknown Artist"
	}
	album := t.Album
	if album == "" {
		album = "Unknown Album"
	}
	return filepath.Join(l.Mount, sanitize(artist), sanitize(album), filepath.Base(t.Location))
}

// sanitize replaces characters that are invalid on common removable-device
// filesystems with underscores.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(badCharacters, r) {
			return '_'
		}
		return r
	}, name)
}
