package transfer

import (
	"fmt"
	"sync"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"
)

// Assembled is a completed inbound file ready for retrieval.
type Assembled struct {
	Transfer protocol.Transfer
	Data     []byte
}

type assembly struct {
	transfer protocol.Transfer
	buf      []byte
	received int64
	complete bool
}

// Reassembler accumulates inbound chunks into per-transfer buffers.
// Chunks arrive in index order thanks to the sender's one-in-flight
// discipline, but offsets are still bounds-checked before any write.
// Buffers live only until retrieved or until the owning room/session
// is torn down.
type Reassembler struct {
	mu      sync.Mutex
	pending map[string]*assembly
}

func NewReassembler() *Reassembler {
	return &Reassembler{pending: make(map[string]*assembly)}
}

// Track registers inbound file metadata (from transfer:received) so
// later chunks can be matched to it. Tracking the same id twice is a
// no-op; the relay may deliver duplicates during reconnect races.
func (r *Reassembler) Track(t protocol.Transfer) {
	if t.Kind != protocol.TransferFile {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pending[t.ID]; ok {
		return
	}
	r.pending[t.ID] = &assembly{transfer: t}
}

// Tracked reports whether the transfer id is known.
func (r *Reassembler) Tracked(transferID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[transferID]
	return ok
}

// HandleChunk writes one chunk into its transfer's buffer. The buffer
// is allocated at exactly the declared total size when the first chunk
// arrives. A chunk that would write past the declared size fails the
// transfer and evicts it.
func (r *Reassembler) HandleChunk(p protocol.ChunkPayload) (complete bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.pending[p.TransferID]
	if !ok {
		return false, NewError("chunk", ErrUnknownTransfer)
	}

	if p.ChunkNumber == 1 {
		a.buf = make([]byte, p.Total)
		a.received = 0
	}
	if a.buf == nil {
		delete(r.pending, p.TransferID)
		return false, WrapError("chunk", ErrUnknownTransfer, "chunk before first chunk of transfer")
	}

	if p.Offset < 0 || p.Offset+int64(len(p.Chunk)) > int64(len(a.buf)) {
		a.transfer.Status = protocol.StatusFailed
		delete(r.pending, p.TransferID)
		return false, WrapError("chunk", ErrChunkOutOfBounds,
			fmt.Sprintf("offset %d + %d bytes > declared %d", p.Offset, len(p.Chunk), len(a.buf)))
	}

	copy(a.buf[p.Offset:], p.Chunk)
	a.received += int64(len(p.Chunk))
	a.transfer.Status = protocol.StatusTransferring

	if p.ChunkNumber == p.TotalChunks {
		a.transfer.Status = protocol.StatusCompleted
		a.transfer.Progress = 100
		a.complete = true
	}
	return a.complete, nil
}

// HandleFile stores an inline whole-file payload as a completed
// assembly.
func (r *Reassembler) HandleFile(p protocol.FilePayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.pending[p.TransferID]
	if !ok {
		return NewError("file", ErrUnknownTransfer)
	}

	a.buf = p.FileData
	a.received = int64(len(p.FileData))
	a.transfer.Status = protocol.StatusCompleted
	a.transfer.Progress = 100
	a.complete = true
	return nil
}

// Complete marks the transfer finished in response to a
// transfer:complete notice.
func (r *Reassembler) Complete(transferID string) (Assembled, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.pending[transferID]
	if !ok || !a.complete {
		return Assembled{}, false
	}
	return Assembled{Transfer: a.transfer, Data: a.buf}, true
}

// Take retrieves a completed assembly and discards it. The second
// return is false while the transfer is still in flight or unknown.
func (r *Reassembler) Take(transferID string) (Assembled, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.pending[transferID]
	if !ok || !a.complete {
		return Assembled{}, false
	}
	delete(r.pending, transferID)
	return Assembled{Transfer: a.transfer, Data: a.buf}, true
}

// Drop discards one transfer's state.
func (r *Reassembler) Drop(transferID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, transferID)
}

// Reset discards all state, used when the owning room or session is
// torn down.
func (r *Reassembler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = make(map[string]*assembly)
}
