package client

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/transfer"
)

// SendText relays a text payload to the device with receiverID in the
// current room. Fire-and-forget: there is no delivery confirmation.
func (c *Client) SendText(content, receiverID string) (string, error) {
	return c.sendTextKind(content, receiverID, protocol.TransferText)
}

// SendLink relays a link payload to the device with receiverID.
func (c *Client) SendLink(content, receiverID string) (string, error) {
	return c.sendTextKind(content, receiverID, protocol.TransferLink)
}

func (c *Client) sendTextKind(content, receiverID string, kind protocol.TransferKind) (string, error) {
	if _, ok := c.Room(); !ok {
		return "", transfer.ErrNotConnected
	}

	t := protocol.Transfer{
		ID:         uuid.NewString(),
		Kind:       kind,
		SenderID:   c.device.ID,
		ReceiverID: receiverID,
		Content:    content,
		Status:     protocol.StatusCompleted,
		Progress:   100,
		CreatedAt:  time.Now(),
	}

	msg, err := protocol.NewMessage(protocol.MessageTransferText, protocol.TransferSendPayload{
		Transfer:   t,
		ReceiverID: receiverID,
	})
	if err != nil {
		return "", err
	}
	if err := c.Send(msg); err != nil {
		return "", err
	}
	return t.ID, nil
}

// SendFile streams size bytes from source to receiverID through the
// chunked protocol, blocking until completion or failure. The chunk
// size is fixed for the whole transfer by this device's class. The
// caller is expected to have validated the file (including the size
// ceiling) beforehand.
func (c *Client) SendFile(ctx context.Context, source io.Reader, name, mimeType string, size int64, receiverID string) (string, error) {
	if _, ok := c.Room(); !ok {
		return "", transfer.ErrNotConnected
	}
	if size > transfer.MaxFileSize {
		return "", transfer.NewFileError("send", name, transfer.ErrFileTooLarge)
	}

	t := protocol.Transfer{
		ID:         uuid.NewString(),
		Kind:       protocol.TransferFile,
		SenderID:   c.device.ID,
		ReceiverID: receiverID,
		FileName:   name,
		FileSize:   size,
		FileType:   mimeType,
		Status:     protocol.StatusPending,
		CreatedAt:  time.Now(),
	}

	coord := transfer.NewCoordinator(c, t, source, transfer.Options{
		ChunkSize:  transfer.ChunkSizeFor(c.device.Kind),
		AckTimeout: c.opts.AckTimeout,
		MaxRetries: c.opts.MaxRetries,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	c.coordinators[t.ID] = coord
	c.cancels[t.ID] = cancel
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.coordinators, t.ID)
		delete(c.cancels, t.ID)
		c.mu.Unlock()
	}()

	if err := coord.Run(ctx); err != nil {
		return t.ID, err
	}
	return t.ID, nil
}

// TakeFile retrieves a completed inbound file and discards its buffer.
// The second return is false while the transfer is still in flight or
// already taken.
func (c *Client) TakeFile(transferID string) (transfer.Assembled, bool) {
	return c.reassembler.Take(transferID)
}
