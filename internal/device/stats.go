package device

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Stats returns the free space and block size of the filesystem holding the
// mount path. The path must exist.
func Stats(mount string) (freeBytes, blockSize int64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(mount, &st); err != nil {
		return 0, 0, fmt.Errorf("failed to stat filesystem at %s: %w", mount, err)
	}
	return int64(st.Bavail) * int64(st.Bsize), int64(st.Bsize), nil
}

// RoundUpTo rounds a file size up to the next block-size multiple, the space
// the file actually occupies on the device.
func RoundUpTo(n, blockSize int64) int64 {
	if blockSize <= 1 {
		return n
	}
	blocks := n / blockSize
	if n%blockSize > 0 {
		blocks++
	}
	return blocks * blockSize
}
