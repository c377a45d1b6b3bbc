package device

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileOps performs the actual filesystem mutations on the device. It exists
// so the executor can run against a dry-run implementation.
type FileOps interface {
	Copy(src, dst string) error
	Remove(path string) error
}

// Local is the real filesystem implementation of FileOps.
type Local struct{}

// Copy copies src to dst, creating the destination directory if required.
// The source's modification time is preserved.
func (Local) Copy(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to flush destination: %w", err)
	}

	if info, err := in.Stat(); err == nil {
		if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
			slog.Debug("cannot preserve mtime", "path", dst, "error", err)
		}
	}
	return nil
}

// Remove deletes a file from the device.
func (Local) Remove(path string) error {
	return os.Remove(path)
}

// DryRun logs the operations that would be performed without touching the
// device.
type DryRun struct{}

func (DryRun) Copy(src, dst string) error {
	slog.Info("dry run: would copy", "src", src, "dst", dst)
	return nil
}

func (DryRun) Remove(path string) error {
	slog.Info("dry run: would delete", "path", path)
	return nil
}
