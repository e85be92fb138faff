// Package transfer implements both ends of the chunked file protocol:
// the sender-side coordinator driving one-in-flight acknowledged
// chunks, and the receiver-side reassembler.
package transfer

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"
)

// Conn is the outbound half the coordinator writes to.
type Conn interface {
	Send(msg *protocol.Message) error
}

// Options tune a coordinator. Zero values fall back to the defaults in
// constants.go.
type Options struct {
	ChunkSize       int
	AckTimeout      time.Duration
	MetadataTimeout time.Duration
	MaxRetries      int

	// OnProgress is invoked with the sender-side progress after every
	// acknowledged chunk. May be nil.
	OnProgress func(progress int)
}

// Coordinator drives one outbound file transfer as a strict state
// machine: send chunk N, suspend until the relay's ack or a timeout,
// then either advance, retransmit the same chunk, or fail. Exactly one
// chunk is outstanding at any time, which is what makes receiver-side
// reassembly order-free and progress monotonic.
type Coordinator struct {
	conn     Conn
	transfer protocol.Transfer
	source   io.Reader
	opts     Options

	acks     chan int
	metadata chan struct{}
	metaOnce sync.Once

	mu     sync.Mutex
	status protocol.TransferStatus
}

// NewCoordinator prepares a coordinator for one transfer. The source
// must yield exactly transfer.FileSize bytes.
func NewCoordinator(conn Conn, t protocol.Transfer, source io.Reader, opts Options) *Coordinator {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DesktopChunkSize
	}
	if opts.AckTimeout <= 0 {
		opts.AckTimeout = DefaultAckTimeout
	}
	if opts.MetadataTimeout <= 0 {
		opts.MetadataTimeout = DefaultMetadataTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	t.Status = protocol.StatusPending

	return &Coordinator{
		conn:     conn,
		transfer: t,
		source:   source,
		opts:     opts,
		acks:     make(chan int, 4),
		metadata: make(chan struct{}),
		status:   protocol.StatusPending,
	}
}

// TransferID returns the id acks are routed by.
func (c *Coordinator) TransferID() string {
	return c.transfer.ID
}

// Status returns the transfer's current lifecycle state.
func (c *Coordinator) Status() protocol.TransferStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Ack delivers a chunk acknowledgement from the relay. Safe to call
// from the connection's read goroutine; stale duplicates are dropped.
func (c *Coordinator) Ack(chunkNumber int) {
	select {
	case c.acks <- chunkNumber:
	default:
	}
}

// MetadataDelivered signals that transfer:metadata_sent arrived.
func (c *Coordinator) MetadataDelivered() {
	c.metaOnce.Do(func() { close(c.metadata) })
}

// Run executes the transfer until completion or failure. Cancelling
// ctx aborts at the next suspension point without notifying the
// receiver; room teardown is expected to clean up the far side.
func (c *Coordinator) Run(ctx context.Context) error {
	if err := c.run(ctx); err != nil {
		c.setStatus(protocol.StatusFailed)
		return err
	}
	c.setStatus(protocol.StatusCompleted)
	return nil
}

func (c *Coordinator) run(ctx context.Context) error {
	start, err := protocol.NewMessage(protocol.MessageTransferStart, protocol.TransferSendPayload{
		Transfer:   c.transfer,
		ReceiverID: c.transfer.ReceiverID,
	})
	if err != nil {
		return NewError("encode metadata", err)
	}
	if err := c.conn.Send(start); err != nil {
		return NewFileError("send metadata", c.transfer.FileName, err)
	}

	if err := c.waitMetadata(ctx); err != nil {
		return err
	}
	c.setStatus(protocol.StatusTransferring)

	// Payloads that fit in a single chunk take the inline path: one
	// transfer:file message, no per-chunk flow control.
	if c.transfer.FileSize <= int64(c.opts.ChunkSize) {
		return c.sendInline()
	}
	return c.sendChunks(ctx)
}

func (c *Coordinator) waitMetadata(ctx context.Context) error {
	timer := time.NewTimer(c.opts.MetadataTimeout)
	defer timer.Stop()

	select {
	case <-c.metadata:
		return nil
	case <-timer.C:
		return NewFileError("send metadata", c.transfer.FileName, ErrMetadataTimeout)
	case <-ctx.Done():
		return NewError("transfer", ErrTransferCancelled)
	}
}

func (c *Coordinator) sendInline() error {
	data := make([]byte, c.transfer.FileSize)
	if _, err := io.ReadFull(c.source, data); err != nil {
		return NewFileError("read", c.transfer.FileName, err)
	}

	msg, err := protocol.NewMessage(protocol.MessageTransferFile, protocol.FilePayload{
		TransferID: c.transfer.ID,
		ReceiverID: c.transfer.ReceiverID,
		FileData:   data,
		FileName:   c.transfer.FileName,
		FileType:   c.transfer.FileType,
	})
	if err != nil {
		return NewError("encode file", err)
	}
	if err := c.conn.Send(msg); err != nil {
		return NewFileError("send file", c.transfer.FileName, err)
	}

	c.reportProgress(100)
	return nil
}

func (c *Coordinator) sendChunks(ctx context.Context) error {
	totalChunks := TotalChunks(c.transfer.FileSize, c.opts.ChunkSize)
	buf := make([]byte, c.opts.ChunkSize)

	var offset int64
	for chunkNumber := 1; chunkNumber <= totalChunks; chunkNumber++ {
		n := int64(c.opts.ChunkSize)
		if remaining := c.transfer.FileSize - offset; remaining < n {
			n = remaining
		}
		if _, err := io.ReadFull(c.source, buf[:n]); err != nil {
			return NewFileError("read", c.transfer.FileName, err)
		}

		msg, err := protocol.NewMessage(protocol.MessageTransferChunk, protocol.ChunkPayload{
			TransferID:  c.transfer.ID,
			ReceiverID:  c.transfer.ReceiverID,
			Chunk:       buf[:n],
			Offset:      offset,
			Total:       c.transfer.FileSize,
			ChunkNumber: chunkNumber,
			TotalChunks: totalChunks,
		})
		if err != nil {
			return NewError("encode chunk", err)
		}

		if err := c.transmit(ctx, msg, chunkNumber); err != nil {
			return err
		}

		offset += n
		c.reportProgress(int(math.Round(float64(offset) / float64(c.transfer.FileSize) * 100)))
	}

	complete, err := protocol.NewMessage(protocol.MessageTransferComplete, protocol.CompletePayload{
		TransferID: c.transfer.ID,
		ReceiverID: c.transfer.ReceiverID,
	})
	if err != nil {
		return NewError("encode complete", err)
	}
	if err := c.conn.Send(complete); err != nil {
		return NewFileError("send complete", c.transfer.FileName, err)
	}
	return nil
}

// transmit sends one chunk and suspends until it is acknowledged,
// retransmitting the identical message on each timeout. The retry
// counter is per chunk; an ack resets it by construction.
func (c *Coordinator) transmit(ctx context.Context, msg *protocol.Message, chunkNumber int) error {
	for attempt := 0; ; attempt++ {
		if attempt > c.opts.MaxRetries {
			return WrapError("send chunk", ErrAckTimeout,
				fmt.Sprintf("chunk %d unacknowledged after %d retries", chunkNumber, c.opts.MaxRetries))
		}

		if err := c.conn.Send(msg); err != nil {
			return NewFileError("send chunk", c.transfer.FileName, err)
		}

		acked, err := c.awaitAck(ctx, chunkNumber)
		if err != nil {
			return err
		}
		if acked {
			return nil
		}
	}
}

// awaitAck waits one ack-timeout window for the given chunk's ack.
// Acks for other chunk numbers are stale retransmission echoes and are
// ignored without resetting the window.
func (c *Coordinator) awaitAck(ctx context.Context, chunkNumber int) (bool, error) {
	timer := time.NewTimer(c.opts.AckTimeout)
	defer timer.Stop()

	for {
		select {
		case acked := <-c.acks:
			if acked == chunkNumber {
				return true, nil
			}
		case <-timer.C:
			return false, nil
		case <-ctx.Done():
			return false, NewError("transfer", ErrTransferCancelled)
		}
	}
}

func (c *Coordinator) setStatus(s protocol.TransferStatus) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

func (c *Coordinator) reportProgress(p int) {
	if c.opts.OnProgress != nil {
		c.opts.OnProgress(p)
	}
}
