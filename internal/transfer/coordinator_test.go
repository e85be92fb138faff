package transfer

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"
)

// scriptedConn records everything the coordinator sends and lets a
// test decide, per message, whether and when to answer.
type scriptedConn struct {
	mu     sync.Mutex
	sent   []*protocol.Message
	onSend func(msg *protocol.Message)
}

func (c *scriptedConn) Send(msg *protocol.Message) error {
	c.mu.Lock()
	c.sent = append(c.sent, msg)
	c.mu.Unlock()
	if c.onSend != nil {
		c.onSend(msg)
	}
	return nil
}

func (c *scriptedConn) sentByType(msgType string) []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*protocol.Message
	for _, m := range c.sent {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

func fileTransfer(size int64) protocol.Transfer {
	return protocol.Transfer{
		ID:         "t-1",
		Kind:       protocol.TransferFile,
		SenderID:   "dev-a",
		ReceiverID: "dev-b",
		FileName:   "sample.bin",
		FileSize:   size,
		FileType:   "application/octet-stream",
		CreatedAt:  time.Now(),
	}
}

func randomBytes(t *testing.T, n int64) []byte {
	t.Helper()
	data := make([]byte, n)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("rand.Read failed: %v", err)
	}
	return data
}

// ackEverything wires a conn that immediately acknowledges metadata
// and every chunk, like a healthy relay.
func ackEverything(coord **Coordinator) func(*protocol.Message) {
	return func(msg *protocol.Message) {
		switch msg.Type {
		case protocol.MessageTransferStart:
			(*coord).MetadataDelivered()
		case protocol.MessageTransferChunk:
			var p protocol.ChunkPayload
			if err := msg.DecodePayload(&p); err == nil {
				(*coord).Ack(p.ChunkNumber)
			}
		}
	}
}

func TestCoordinatorSendsChunksInOrder(t *testing.T) {
	const size = 1_200_000
	const chunkSize = 512 * 1024
	data := randomBytes(t, size)

	conn := &scriptedConn{}
	var coord *Coordinator
	conn.onSend = ackEverything(&coord)

	var progress []int
	coord = NewCoordinator(conn, fileTransfer(size), bytes.NewReader(data), Options{
		ChunkSize:  chunkSize,
		AckTimeout: time.Second,
		OnProgress: func(p int) { progress = append(progress, p) },
	})

	if err := coord.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if coord.Status() != protocol.StatusCompleted {
		t.Fatalf("status = %q, want completed", coord.Status())
	}

	chunks := conn.sentByType(protocol.MessageTransferChunk)
	if len(chunks) != 3 {
		t.Fatalf("sent %d chunks, want 3", len(chunks))
	}

	var reassembled []byte
	var offset int64
	for i, msg := range chunks {
		var p protocol.ChunkPayload
		if err := msg.DecodePayload(&p); err != nil {
			t.Fatalf("decode chunk %d: %v", i+1, err)
		}
		if p.ChunkNumber != i+1 || p.TotalChunks != 3 {
			t.Fatalf("chunk %d numbering = %d/%d", i+1, p.ChunkNumber, p.TotalChunks)
		}
		if p.Offset != offset {
			t.Fatalf("chunk %d offset = %d, want %d (contiguous)", i+1, p.Offset, offset)
		}
		offset += int64(len(p.Chunk))
		reassembled = append(reassembled, p.Chunk...)
	}

	wantSizes := []int{chunkSize, chunkSize, size - 2*chunkSize}
	for i, msg := range chunks {
		var p protocol.ChunkPayload
		msg.DecodePayload(&p)
		if len(p.Chunk) != wantSizes[i] {
			t.Fatalf("chunk %d size = %d, want %d", i+1, len(p.Chunk), wantSizes[i])
		}
	}

	if !bytes.Equal(reassembled, data) {
		t.Fatalf("chunk payloads do not reassemble to the source bytes")
	}

	if len(conn.sentByType(protocol.MessageTransferComplete)) != 1 {
		t.Fatalf("expected exactly one transfer:complete")
	}

	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Fatalf("progress decreased: %v", progress)
		}
	}
	if len(progress) == 0 || progress[len(progress)-1] != 100 {
		t.Fatalf("progress should end at 100: %v", progress)
	}
}

func TestCoordinatorInlinePathForSingleChunk(t *testing.T) {
	data := randomBytes(t, 1000)

	conn := &scriptedConn{}
	var coord *Coordinator
	conn.onSend = ackEverything(&coord)

	coord = NewCoordinator(conn, fileTransfer(1000), bytes.NewReader(data), Options{
		ChunkSize: 4096,
	})

	if err := coord.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := conn.sentByType(protocol.MessageTransferChunk); len(got) != 0 {
		t.Fatalf("inline path sent %d chunks, want 0", len(got))
	}
	inline := conn.sentByType(protocol.MessageTransferFile)
	if len(inline) != 1 {
		t.Fatalf("expected one transfer:file, got %d", len(inline))
	}

	var p protocol.FilePayload
	if err := inline[0].DecodePayload(&p); err != nil {
		t.Fatalf("decode file payload: %v", err)
	}
	if !bytes.Equal(p.FileData, data) {
		t.Fatalf("inline payload differs from source")
	}
}

func TestCoordinatorRetransmitsSameChunkOnTimeout(t *testing.T) {
	const size = 10_000
	const chunkSize = 4096
	data := randomBytes(t, size)

	conn := &scriptedConn{}
	var coord *Coordinator
	attempts := make(map[int]int)
	var mu sync.Mutex

	// Withhold the first ack for chunk 2, acknowledge the retry.
	conn.onSend = func(msg *protocol.Message) {
		switch msg.Type {
		case protocol.MessageTransferStart:
			coord.MetadataDelivered()
		case protocol.MessageTransferChunk:
			var p protocol.ChunkPayload
			if err := msg.DecodePayload(&p); err != nil {
				return
			}
			mu.Lock()
			attempts[p.ChunkNumber]++
			n := attempts[p.ChunkNumber]
			mu.Unlock()
			if p.ChunkNumber == 2 && n == 1 {
				return // simulated drop
			}
			coord.Ack(p.ChunkNumber)
		}
	}

	coord = NewCoordinator(conn, fileTransfer(size), bytes.NewReader(data), Options{
		ChunkSize:  chunkSize,
		AckTimeout: 30 * time.Millisecond,
		MaxRetries: 3,
	})

	if err := coord.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts[2] != 2 {
		t.Fatalf("chunk 2 transmitted %d times, want 2", attempts[2])
	}
	if attempts[1] != 1 || attempts[3] != 1 {
		t.Fatalf("unaffected chunks retransmitted: %v", attempts)
	}

	// The retransmission must carry identical bytes.
	chunks := conn.sentByType(protocol.MessageTransferChunk)
	var first, retry protocol.ChunkPayload
	var seen int
	for _, msg := range chunks {
		var p protocol.ChunkPayload
		msg.DecodePayload(&p)
		if p.ChunkNumber == 2 {
			seen++
			if seen == 1 {
				first = p
			} else {
				retry = p
			}
		}
	}
	if !bytes.Equal(first.Chunk, retry.Chunk) || first.Offset != retry.Offset {
		t.Fatalf("retransmitted chunk differs from the original")
	}
}

func TestCoordinatorFailsAfterRetriesExhausted(t *testing.T) {
	const size = 10_000
	data := randomBytes(t, size)

	conn := &scriptedConn{}
	var coord *Coordinator
	conn.onSend = func(msg *protocol.Message) {
		if msg.Type == protocol.MessageTransferStart {
			coord.MetadataDelivered()
		}
		// Never acknowledge any chunk.
	}

	coord = NewCoordinator(conn, fileTransfer(size), bytes.NewReader(data), Options{
		ChunkSize:  4096,
		AckTimeout: 15 * time.Millisecond,
		MaxRetries: 2,
	})

	err := coord.Run(context.Background())
	if !errors.Is(err, ErrAckTimeout) {
		t.Fatalf("expected ErrAckTimeout, got %v", err)
	}
	if coord.Status() != protocol.StatusFailed {
		t.Fatalf("status = %q, want failed", coord.Status())
	}

	// Initial transmission plus two retries of chunk 1, then stop.
	chunks := conn.sentByType(protocol.MessageTransferChunk)
	if len(chunks) != 3 {
		t.Fatalf("transmitted %d chunk messages, want 3", len(chunks))
	}
	for _, msg := range chunks {
		var p protocol.ChunkPayload
		msg.DecodePayload(&p)
		if p.ChunkNumber != 1 {
			t.Fatalf("coordinator advanced past an unacknowledged chunk: %d", p.ChunkNumber)
		}
	}
	if len(conn.sentByType(protocol.MessageTransferComplete)) != 0 {
		t.Fatalf("failed transfer must not send transfer:complete")
	}
}

func TestCoordinatorMetadataTimeout(t *testing.T) {
	conn := &scriptedConn{}
	coord := NewCoordinator(conn, fileTransfer(10_000), bytes.NewReader(randomBytes(t, 10_000)), Options{
		ChunkSize:       4096,
		MetadataTimeout: 15 * time.Millisecond,
	})

	err := coord.Run(context.Background())
	if !errors.Is(err, ErrMetadataTimeout) {
		t.Fatalf("expected ErrMetadataTimeout, got %v", err)
	}
	if coord.Status() != protocol.StatusFailed {
		t.Fatalf("status = %q, want failed", coord.Status())
	}
}

func TestCoordinatorCancellation(t *testing.T) {
	conn := &scriptedConn{}
	var coord *Coordinator
	ctx, cancel := context.WithCancel(context.Background())

	conn.onSend = func(msg *protocol.Message) {
		switch msg.Type {
		case protocol.MessageTransferStart:
			coord.MetadataDelivered()
		case protocol.MessageTransferChunk:
			// Abort mid-transfer instead of acknowledging.
			cancel()
		}
	}

	coord = NewCoordinator(conn, fileTransfer(10_000), bytes.NewReader(randomBytes(t, 10_000)), Options{
		ChunkSize:  4096,
		AckTimeout: time.Second,
	})

	err := coord.Run(ctx)
	if !errors.Is(err, ErrTransferCancelled) {
		t.Fatalf("expected ErrTransferCancelled, got %v", err)
	}
	if coord.Status() != protocol.StatusFailed {
		t.Fatalf("status = %q, want failed", coord.Status())
	}
}

func TestTotalChunks(t *testing.T) {
	cases := []struct {
		size      int64
		chunkSize int
		want      int
	}{
		{1_200_000, 512 * 1024, 3},
		{512, 512, 1},
		{513, 512, 2},
		{0, 512, 0},
		{1024, 512, 2},
	}
	for _, c := range cases {
		if got := TotalChunks(c.size, c.chunkSize); got != c.want {
			t.Errorf("TotalChunks(%d, %d) = %d, want %d", c.size, c.chunkSize, got, c.want)
		}
	}
}

func TestChunkSizeFor(t *testing.T) {
	if got := ChunkSizeFor(protocol.DeviceMobile); got != MobileChunkSize {
		t.Fatalf("mobile chunk size = %d, want %d", got, MobileChunkSize)
	}
	if got := ChunkSizeFor(protocol.DeviceDesktop); got != DesktopChunkSize {
		t.Fatalf("desktop chunk size = %d, want %d", got, DesktopChunkSize)
	}
}
