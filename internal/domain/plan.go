package domain

// DeviceTrack is a music file found on the device during one inventory scan.
type DeviceTrack struct {
	// Path is the absolute path of the file on the device.
	Path      string
	SizeBytes int64

	// TrackID is the matched library track ID, empty when no match was found.
	TrackID string

	// Artist and Title are read from the file's embedded tags, best effort.
	Artist string
	Title  string
}

// ReplacementPlan is the computed set of removals and additions for one
// freshening pass. It is consumed once by the executor and discarded.
type ReplacementPlan struct {
	Removals  []DeviceTrack
	Additions []*Track

	// DeviceCount is the inventory size the plan was computed from.
	DeviceCount int
}

// Empty reports whether the plan contains no work.
func (p *ReplacementPlan) Empty() bool {
	return len(p.Removals) == 0 && len(p.Additions) == 0
}

// AdditionBytes returns the total size of all planned additions.
func (p *ReplacementPlan) AdditionBytes() int64 {
	var total int64
	for _, t := range p.Additions {
		total += t.SizeBytes
	}
	return total
}
