// Package device enumerates and manipulates the music files on the target
// device's mount path.
package device

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/jaki95/music-freshener/internal/domain"
	"github.com/jaki95/music-freshener/internal/library"
)

// NotMountedError reports that the device path does not exist or is not a
// directory. This is a user-correctable precondition, not a transient fault.
type NotMountedError struct {
	Path string
	Err  error
}

func (e *NotMountedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("device not mounted at %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("device not mounted at %s", e.Path)
}

func (e *NotMountedError) Unwrap() error { return e.Err }

// Inventory is the snapshot of music files present on the device at scan
// time. It is rebuilt on every run and never persisted.
type Inventory struct {
	Mount string
	Files []domain.DeviceTrack
}

// IsMusicFile reports whether a filename looks like a music file. Dotfiles
// are never music files.
func IsMusicFile(name string, extensions []string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Scan enumerates the music files under mount. It fails with a
// *NotMountedError when mount is absent or not a directory.
func Scan(mount string, extensions []string) (*Inventory, error) {
	info, err := os.Stat(mount)
	if err != nil {
		return nil, &NotMountedError{Path: mount, Err: err}
	}
	if !info.IsDir() {
		return nil, &NotMountedError{Path: mount, Err: fmt.Errorf("not a directory")}
	}

	inv := &Inventory{Mount: mount}
	err = filepath.WalkDir(mount, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != mount {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsMusicFile(d.Name(), extensions) {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			return err
		}

		dt := domain.DeviceTrack{Path: path, SizeBytes: fileInfo.Size()}
		dt.Artist, dt.Title = readTags(path)
		inv.Files = append(inv.Files, dt)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan device: %w", err)
	}

	slog.Debug("scanned device", "mount", mount, "files", len(inv.Files))
	return inv, nil
}

// readTags reads the embedded artist and title of a music file, best effort.
// Files with unreadable tags are still inventoried.
func readTags(path string) (artist, title string) {
	f, err := os.Open(path)
	if err != nil {
		slog.Debug("cannot open device file for tag read", "path", path, "error", err)
		return "", ""
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		slog.Debug("cannot read tags", "path", path, "error", err)
		return "", ""
	}
	return meta.Artist(), meta.Title()
}

// Match links device files back to catalog tracks: first by the expected
// layout path, then by case-insensitive artist+title tag comparison.
func (inv *Inventory) Match(lib *library.Library, layout Layout) {
	byPath := make(map[string]string, len(lib.Tracks))
	byTag := make(map[string]string, len(lib.Tracks))
	for id, t := range lib.Tracks {
		byPath[layout.TrackPath(t)] = id
		if t.Artist != "" && t.Title != "" {
			byTag[tagKey(t.Artist, t.Title)] = id
		}
	}

	matched := 0
	for i := range inv.Files {
		f := &inv.Files[i]
		if id, ok := byPath[f.Path]; ok {
			f.TrackID = id
			matched++
			continue
		}
		if f.Artist == "" || f.Title == "" {
			continue
		}
		if id, ok := byTag[tagKey(f.Artist, f.Title)]; ok {
			f.TrackID = id
			matched++
		}
	}
	slog.Debug("matched device files to catalog", "matched", matched, "total", len(inv.Files))
}

func tagKey(artist, title string) string {
	return strings.ToLower(artist) + "\x00" + strings.ToLower(title)
}

// ContainsPath reports whether a path is present in the inventory snapshot.
func (inv *Inventory) ContainsPath(path string) bool {
	for _, f := range inv.Files {
		if f.Path == path {
			return true
		}
	}
	return false
}

// TotalBytes returns the cumulative size of all inventoried files.
func (inv *Inventory) TotalBytes() int64 {
	var total int64
	for _, f := range inv.Files {
		total += f.SizeBytes
	}
	return total
}
