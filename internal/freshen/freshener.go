package freshen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaki95/music-freshener/config"
	"github.com/jaki95/music-freshener/internal/device"
	"github.com/jaki95/music-freshener/internal/domain"
	"github.com/jaki95/music-freshener/internal/executor"
	"github.com/jaki95/music-freshener/internal/history"
	"github.com/jaki95/music-freshener/internal/library"
	"github.com/jaki95/music-freshener/internal/progress"
)

const bytesPerMB = 1 << 20

// Freshener owns one freshening pass: scan the library, inventory the
// device, compute the plan, execute it, and update the removal history.
type Freshener struct {
	cfg     *config.Config
	tracker *progress.Tracker
	ops     device.FileOps
	dryRun  bool
}

// New creates a Freshener. With dryRun set, no device mutation or history
// update happens.
func New(cfg *config.Config, tracker *progress.Tracker, dryRun bool) *Freshener {
	var ops device.FileOps = device.Local{}
	if dryRun {
		ops = device.DryRun{}
	}
	return &Freshener{cfg: cfg, tracker: tracker, ops: ops, dryRun: dryRun}
}

// RunResult carries everything a frontend needs to report on a pass.
type RunResult struct {
	Plan    *domain.ReplacementPlan
	Summary *domain.Summary

	// Missing are catalog tracks whose source files were absent.
	Missing []*domain.Track
}

// Run executes one freshening pass. Fatal precondition failures (malformed
// library, unmounted device) return an error before any device mutation;
// per-file failures are carried in the summary instead.
func (f *Freshener) Run(ctx context.Context) (*RunResult, error) {
	cfg := f.cfg

	f.tracker.SetStage(progress.StageScanning, fmt.Sprintf("reading library %s", cfg.Library))
	lib, err := library.Load(cfg.Library)
	if err != nil {
		f.tracker.Fail(err)
		return nil, err
	}
	if len(lib.Missing) > 0 {
		slog.Warn("library references files that no longer exist", "count", len(lib.Missing))
	}

	f.tracker.SetStage(progress.StageInventory, fmt.Sprintf("scanning device %s", cfg.Target))
	inv, err := device.Scan(cfg.Target, cfg.Extensions)
	if err != nil {
		f.tracker.Fail(err)
		return nil, err
	}
	layout := device.Layout{Mount: cfg.Target}
	inv.Match(lib, layout)

	freeBytes, blockSize, err := device.Stats(cfg.Target)
	if err != nil {
		f.tracker.Fail(err)
		return nil, err
	}

	hist, exclude, err := f.loadHistory()
	if err != nil {
		f.tracker.Fail(err)
		return nil, err
	}

	f.tracker.SetStage(progress.StagePlanning, "computing replacement plan")
	plan, err := Select(lib, inv, Options{
		Ratio:        cfg.Ratio,
		Playlist:     cfg.Playlist,
		InitialFill:  cfg.InitialFill,
		Extensions:   cfg.Extensions,
		FreeBytes:    freeBytes,
		BlockSize:    blockSize,
		MinFreeBytes: cfg.MinFreeMB * bytesPerMB,
		MaxBytes:     cfg.MaxSizeMB * bytesPerMB,
		Exclude:      exclude,
	})
	if err != nil {
		f.tracker.Fail(err)
		return nil, err
	}

	summary := executor.Execute(ctx, plan, layout, f.ops, f.tracker)

	if hist != nil && !f.dryRun {
		f.recordRemovals(hist, plan, summary)
	}

	return &RunResult{Plan: plan, Summary: summary, Missing: lib.Missing}, nil
}

// loadHistory returns the history store and the set of recently removed
// track IDs to exclude from additions. History is optional.
func (f *Freshener) loadHistory() (*history.History, map[string]bool, error) {
	path := f.cfg.History.Path
	if path == "" {
		return nil, nil, nil
	}

	hist, err := history.Load(path)
	if err != nil {
		return nil, nil, err
	}
	window := f.window()
	return hist, hist.Recent(window, time.Now()), nil
}

// recordRemovals persists the library IDs of tracks whose deletion
// succeeded.
func (f *Freshener) recordRemovals(hist *history.History, plan *domain.ReplacementPlan, summary *domain.Summary) {
	deleted := make(map[string]bool)
	for _, r := range summary.Results {
		if r.Op == domain.OpDelete && r.OK() {
			deleted[r.Path] = true
		}
	}

	var ids []string
	for _, dt := range plan.Removals {
		if dt.TrackID != "" && deleted[dt.Path] {
			ids = append(ids, dt.TrackID)
		}
	}
	if len(ids) == 0 {
		return
	}

	hist.Record(ids, time.Now())
	if err := hist.Save(f.window(), time.Now()); err != nil {
		slog.Warn("failed to persist removal history", "error", err)
	}
}

func (f *Freshener) window() time.Duration {
	return time.Duration(f.cfg.History.WindowDays) * 24 * time.Hour
}
