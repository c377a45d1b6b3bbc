// Package partition splits an ordered track list into size-bounded chunks,
// e.g. for fitting a playlist onto fixed-capacity media.
package partition

import (
	"fmt"

	"github.com/jaki95/music-freshener/internal/device"
	"github.com/jaki95/music-freshener/internal/domain"
)

// DefaultBlockSize is a standard block size for DVD-ROM media.
const DefaultBlockSize = 2048

// Chunks splits tracks into chunks whose cumulative block-rounded size stays
// under limitBytes. Track order is preserved within and across chunks and no
// track is split. A single track larger than the limit forms its own
// oversized chunk.
func Chunks(tracks []*domain.Track, limitBytes, blockSize int64) ([][]*domain.Track, error) {
	if limitBytes <= 0 {
		return nil, fmt.Errorf("chunk size limit must be positive, got %d", limitBytes)
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	var chunks [][]*domain.Track
	var current []*domain.Track
	var total int64

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, current)
			current = nil
			total = 0
		}
	}

	for _, t := range tracks {
		size := device.RoundUpTo(t.SizeBytes, blockSize)

		if size > limitBytes {
			// Oversized tracks get a chunk of their own rather than being
			// dropped or failing the whole partition.
			flush()
			chunks = append(chunks, []*domain.Track{t})
			continue
		}

		if total+size > limitBytes {
			flush()
		}
		current = append(current, t)
		total += size
	}
	flush()

	return chunks, nil
}
