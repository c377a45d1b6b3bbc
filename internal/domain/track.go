package domain

// Track represents an individual track from the library export. A Track is
// immutable once built for a given scan.
type Track struct {
	ID          string
	Title       string
	Artist      string
	Album       string
	Compilation bool

	// Location is the resolved filesystem path of the source file.
	Location  string
	SizeBytes int64
}

// Playlist is a named, ordered collection of track IDs.
type Playlist struct {
	Name     string
	TrackIDs []string
}
