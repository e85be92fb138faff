package transfer

import (
	"time"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"
)

const (
	// Chunk size is fixed for the lifetime of a transfer and chosen by
	// sender device class: smaller chunks keep memory pressure and
	// per-chunk latency down on constrained devices.
	MobileChunkSize  = 256 * 1024
	DesktopChunkSize = 512 * 1024

	// MaxFileSize is the send-side ceiling. The relay itself stays
	// payload-agnostic.
	MaxFileSize = 150 * 1024 * 1024

	// DefaultAckTimeout bounds the wait for a chunk acknowledgement
	// before the same chunk is retransmitted.
	DefaultAckTimeout = 30 * time.Second

	// DefaultMetadataTimeout bounds the wait for transfer:metadata_sent
	// after transfer:start.
	DefaultMetadataTimeout = 30 * time.Second

	// DefaultMaxRetries is how many times a chunk is retransmitted
	// before the transfer is marked failed.
	DefaultMaxRetries = 3
)

// ChunkSizeFor returns the fixed chunk size for a device class.
func ChunkSizeFor(kind protocol.DeviceKind) int {
	if kind == protocol.DeviceMobile {
		return MobileChunkSize
	}
	return DesktopChunkSize
}

// TotalChunks returns how many chunks a payload of the given size
// splits into.
func TotalChunks(size int64, chunkSize int) int {
	if size <= 0 || chunkSize <= 0 {
		return 0
	}
	return int((size + int64(chunkSize) - 1) / int64(chunkSize))
}
