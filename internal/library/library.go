// Package library reads the iTunes library export and builds the in-memory
// catalog of tracks and playlists used for one run.
package library

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/jaki95/music-freshener/internal/domain"
)

// Library is the catalog built from one scan of the library export. It is
// read-only for the remainder of the run.
type Library struct {
	Path   string
	Tracks map[string]*domain.Track

	// Missing holds tracks whose decoded source file does not exist on disk.
	// They are excluded from the catalog but surfaced so the caller can
	// report them instead of losing them silently.
	Missing []*domain.Track

	playlists map[string]*domain.Playlist
	names     []string
}

// New builds a Library from already-constructed tracks and playlists.
func New(path string, tracks map[string]*domain.Track, playlists []*domain.Playlist) *Library {
	lib := &Library{
		Path:      path,
		Tracks:    tracks,
		playlists: make(map[string]*domain.Playlist, len(playlists)),
	}
	for _, pl := range playlists {
		lib.playlists[pl.Name] = pl
		lib.names = append(lib.names, pl.Name)
	}
	sort.Strings(lib.names)
	return lib
}

// Load parses the library export at path. Malformed input fails with a
// *ParseError; the device is never touched before this succeeds.
func Load(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library export: %w", err)
	}
	defer f.Close()

	root, offset, err := parsePlist(f)
	if err != nil {
		return nil, &ParseError{Path: path, Offset: offset, Err: err}
	}

	tracks, missing := buildTracks(root)
	playlists := buildPlaylists(root)

	lib := New(path, tracks, playlists)
	lib.Missing = missing
	slog.Debug("loaded library",
		"path", path,
		"tracks", len(tracks),
		"missing", len(missing),
		"playlists", len(playlists))
	return lib, nil
}

func buildTracks(root map[string]any) (map[string]*domain.Track, []*domain.Track) {
	tracks := make(map[string]*domain.Track)
	var missing []*domain.Track

	rawTracks, _ := root["Tracks"].(map[string]any)
	for id, raw := range rawTracks {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		location := dictString(entry, "Location", "")
		if location == "" {
			slog.Debug("skipping track without location", "id", id)
			continue
		}
		path, err := DecodeLocation(location)
		if err != nil {
			slog.Debug("skipping track with undecodable location", "id", id, "error", err)
			continue
		}

		track := &domain.Track{
			ID:          id,
			Title:       dictString(entry, "Name", ""),
			Artist:      dictString(entry, "Artist", ""),
			Album:       dictString(entry, "Album", ""),
			Compilation: dictBool(entry, "Compilation"),
			Location:    path,
			SizeBytes:   dictInt(entry, "Size"),
		}

		if _, err := os.Stat(path); err != nil {
			missing = append(missing, track)
			continue
		}
		tracks[id] = track
	}

	return tracks, missing
}

func buildPlaylists(root map[string]any) []*domain.Playlist {
	var playlists []*domain.Playlist

	rawPlaylists, _ := root["Playlists"].([]any)
	for _, raw := range rawPlaylists {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name := dictString(entry, "Name", "")
		if name == "" {
			continue
		}

		pl := &domain.Playlist{Name: name}
		items, _ := entry["Playlist Items"].([]any)
		for _, item := range items {
			itemDict, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if id := dictInt(itemDict, "Track ID"); id != 0 {
				pl.TrackIDs = append(pl.TrackIDs, strconv.FormatInt(id, 10))
			}
		}
		playlists = append(playlists, pl)
	}

	return playlists
}

// Playlist returns the named playlist.
func (l *Library) Playlist(name string) (*domain.Playlist, bool) {
	pl, ok := l.playlists[name]
	return pl, ok
}

// PlaylistNames returns all playlist names in sorted order.
func (l *Library) PlaylistNames() []string {
	return l.names
}

// PlaylistTracks returns the ordered tracks of a playlist. IDs that resolve
// to no catalog track (missing files, non-music items) are skipped.
func (l *Library) PlaylistTracks(name string) ([]*domain.Track, error) {
	pl, ok := l.playlists[name]
	if !ok {
		return nil, fmt.Errorf("playlist %q not found", name)
	}
	tracks := make([]*domain.Track, 0, len(pl.TrackIDs))
	for _, id := range pl.TrackIDs {
		if t, ok := l.Tracks[id]; ok {
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}

// AllTracks returns every catalog track, ordered by ID for determinism.
func (l *Library) AllTracks() []*domain.Track {
	ids := make([]string, 0, len(l.Tracks))
	for id := range l.Tracks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	tracks := make([]*domain.Track, 0, len(ids))
	for _, id := range ids {
		tracks = append(tracks, l.Tracks[id])
	}
	return tracks
}
