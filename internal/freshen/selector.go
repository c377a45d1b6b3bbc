// Package freshen computes and drives replacement plans: which device tracks
// to retire and which library tracks to copy on in their place.
package freshen

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"

	"github.com/jaki95/music-freshener/internal/device"
	"github.com/jaki95/music-freshener/internal/domain"
	"github.com/jaki95/music-freshener/internal/library"
)

// Options control plan computation.
type Options struct {
	// Ratio is the fraction of device tracks to replace, in [0, 1].
	Ratio float64

	// Playlist scopes additions to one playlist. Empty means the whole
	// catalog.
	Playlist string

	// InitialFill is how many tracks to add when the device holds none.
	InitialFill int

	// Extensions filter addition candidates by source filename. Empty means
	// no filtering.
	Extensions []string

	// FreeBytes and BlockSize describe the device filesystem at plan time.
	// FreeBytes < 0 means unknown, which disables the free-space budget.
	FreeBytes int64
	BlockSize int64

	// MinFreeBytes is how much free space to leave on the device.
	MinFreeBytes int64

	// MaxBytes caps the total size of the music collection. Zero means no
	// cap.
	MaxBytes int64

	// Exclude holds track IDs that must not be added (recently removed).
	Exclude map[string]bool

	// DeleteFilter, when set, limits which device tracks may be removed.
	DeleteFilter func(domain.DeviceTrack) bool

	// Rand supplies the randomness source; nil uses the global one.
	Rand *rand.Rand
}

func (o Options) shuffle(n int, swap func(i, j int)) {
	if o.Rand != nil {
		o.Rand.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}

// Select computes a replacement plan from the catalog and the device
// inventory snapshots. It has no side effects.
func Select(lib *library.Library, inv *device.Inventory, opts Options) (*domain.ReplacementPlan, error) {
	if opts.Ratio < 0 || opts.Ratio > 1 {
		return nil, fmt.Errorf("replacement ratio must be in [0, 1], got %g", opts.Ratio)
	}

	n := len(inv.Files)
	k := int(opts.Ratio * float64(n))

	plan := &domain.ReplacementPlan{DeviceCount: n}
	plan.Removals = selectRemovals(inv, k, opts)

	wanted := k
	if n == 0 {
		// An empty device gets an initial fill instead of a zero-sized swap.
		wanted = opts.InitialFill
	}

	var err error
	plan.Additions, err = selectAdditions(lib, inv, plan.Removals, wanted, opts)
	if err != nil {
		return nil, err
	}

	slog.Debug("computed replacement plan",
		"deviceTracks", n,
		"removals", len(plan.Removals),
		"additions", len(plan.Additions))
	return plan, nil
}

// selectRemovals draws a uniform sample without replacement of k removable
// device tracks.
func selectRemovals(inv *device.Inventory, k int, opts Options) []domain.DeviceTrack {
	eligible := make([]domain.DeviceTrack, 0, len(inv.Files))
	for _, f := range inv.Files {
		if opts.DeleteFilter != nil && !opts.DeleteFilter(f) {
			continue
		}
		eligible = append(eligible, f)
	}

	opts.shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	if k > len(eligible) {
		k = len(eligible)
	}
	removals := eligible[:k:k]
	sort.Slice(removals, func(i, j int) bool { return removals[i].Path < removals[j].Path })
	return removals
}

// selectAdditions draws up to wanted catalog tracks that are not on the
// device, not excluded, and fit within the byte budget.
func selectAdditions(lib *library.Library, inv *device.Inventory, removals []domain.DeviceTrack, wanted int, opts Options) ([]*domain.Track, error) {
	if wanted <= 0 {
		return nil, nil
	}

	var scoped []*domain.Track
	if opts.Playlist != "" {
		var err error
		scoped, err = lib.PlaylistTracks(opts.Playlist)
		if err != nil {
			return nil, err
		}
	} else {
		scoped = lib.AllTracks()
	}

	layout := device.Layout{Mount: inv.Mount}
	onDevice := make(map[string]bool, len(inv.Files))
	for _, f := range inv.Files {
		onDevice[f.Path] = true
	}

	seen := make(map[string]bool, len(scoped))
	candidates := make([]*domain.Track, 0, len(scoped))
	for _, t := range scoped {
		if seen[t.ID] || opts.Exclude[t.ID] {
			continue
		}
		if len(opts.Extensions) > 0 && !device.IsMusicFile(t.Location, opts.Extensions) {
			continue
		}
		// Presence is judged against the pre-removal snapshot, so a track
		// retired this run is not immediately copied back.
		if onDevice[layout.TrackPath(t)] {
			continue
		}
		seen[t.ID] = true
		candidates = append(candidates, t)
	}

	opts.shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	budget := additionBudget(inv, removals, opts)

	var additions []*domain.Track
	var used int64
	for _, t := range candidates {
		if len(additions) == wanted {
			break
		}
		size := device.RoundUpTo(t.SizeBytes, opts.BlockSize)
		if budget >= 0 && used+size > budget {
			break
		}
		additions = append(additions, t)
		used += size
	}
	return additions, nil
}

// additionBudget computes how many bytes of new music the plan may add.
// A negative result means unlimited.
func additionBudget(inv *device.Inventory, removals []domain.DeviceTrack, opts Options) int64 {
	var freedRounded, freedRaw int64
	for _, dt := range removals {
		freedRounded += device.RoundUpTo(dt.SizeBytes, opts.BlockSize)
		freedRaw += dt.SizeBytes
	}

	budget := int64(-1)
	if opts.FreeBytes >= 0 {
		budget = opts.FreeBytes + freedRounded - opts.MinFreeBytes
	}
	if opts.MaxBytes > 0 {
		remaining := opts.MaxBytes - (inv.TotalBytes() - freedRaw)
		if budget < 0 || remaining < budget {
			budget = remaining
		}
	}
	if budget < 0 && (opts.FreeBytes >= 0 || opts.MaxBytes > 0) {
		budget = 0
	}
	return budget
}
