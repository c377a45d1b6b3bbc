package library

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DecodeLocation converts an iTunes file:// URL into a local filesystem path.
func DecodeLocation(location string) (string, error) {
	if location == "" {
		return "", fmt.Errorf("location is empty")
	}

	location = strings.TrimPrefix(location, "file://localhost")
	location = strings.TrimPrefix(location, "file://")

	decoded, err := url.PathUnescape(location)
	if err != nil {
		return "", fmt.Errorf("failed to decode location %q: %w", location, err)
	}

	if runtime.GOOS == "windows" {
		decoded = strings.TrimPrefix(decoded, "/")
	}

	return decoded, nil
}

// DefaultLibraryPath probes the standard iTunes/Music.app export locations
// and returns the first one that exists.
func DefaultLibraryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	searchPaths := []string{
		filepath.Join(home, "Music", "Music", "Library.xml"),
		filepath.Join(home, "Music", "iTunes", "iTunes Music Library.xml"),
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("library export not found in standard locations")
}
