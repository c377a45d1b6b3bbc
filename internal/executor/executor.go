// Package executor performs the filesystem side of a replacement plan:
// deletions first to free space, then copies.
package executor

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/jaki95/music-freshener/internal/device"
	"github.com/jaki95/music-freshener/internal/domain"
	"github.com/jaki95/music-freshener/internal/progress"
)

// Execute runs the plan against the device. A single file's failure is
// recorded and the batch continues; there is no rollback of completed
// operations. Cancellation stops before the next file operation.
func Execute(ctx context.Context, plan *domain.ReplacementPlan, layout device.Layout, ops device.FileOps, tracker *progress.Tracker) *domain.Summary {
	summary := &domain.Summary{}
	total := len(plan.Removals) + len(plan.Additions)
	index := 0

	for _, dt := range plan.Removals {
		if ctx.Err() != nil {
			summary.Canceled = true
			return summary
		}
		index++

		err := ops.Remove(dt.Path)
		if errors.Is(err, fs.ErrNotExist) {
			// Already gone is the desired state, not a failure.
			slog.Debug("planned deletion already absent", "path", dt.Path)
			err = nil
		}
		if err != nil {
			slog.Warn("delete failed", "path", dt.Path, "error", err)
		}

		summary.Add(domain.FileResult{Op: domain.OpDelete, Path: dt.Path, Err: err})
		tracker.File(progress.StageDeleting, index, total, dt.Path, err)
	}

	for _, t := range plan.Additions {
		if ctx.Err() != nil {
			summary.Canceled = true
			return summary
		}
		index++

		dst := layout.TrackPath(t)
		err := ops.Copy(t.Location, dst)
		if err != nil {
			slog.Warn("copy failed", "src", t.Location, "dst", dst, "error", err)
		}

		summary.Add(domain.FileResult{Op: domain.OpCopy, Path: dst, Err: err})
		tracker.File(progress.StageCopying, index, total, dst, err)
	}

	if err := summary.Err(); err != nil {
		tracker.Fail(err)
	} else {
		tracker.SetStage(progress.StageComplete, "done")
	}
	return summary
}
