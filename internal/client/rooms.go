package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/protocol"
)

var (
	ErrRequestPending = errors.New("another room request is pending")
	ErrReplyTimeout   = errors.New("no reply from server")
)

// CreateRoom generates a fresh code and creates a room with this
// device as sole member and host. The returned room carries the code
// to share with the peer.
func (c *Client) CreateRoom(ctx context.Context) (protocol.Room, error) {
	code := protocol.GenerateRoomCode()
	return c.roomRequest(ctx, protocol.MessageRoomCreate, code)
}

// JoinRoom joins the room with the given code.
func (c *Client) JoinRoom(ctx context.Context, code string) (protocol.Room, error) {
	if !protocol.ValidRoomCode(code) {
		return protocol.Room{}, fmt.Errorf("invalid room code %q: want 6 uppercase letters or digits", code)
	}
	return c.roomRequest(ctx, protocol.MessageRoomJoin, code)
}

// LeaveRoom leaves the current room. The connection stays usable for a
// later create or join.
func (c *Client) LeaveRoom(ctx context.Context) error {
	reply, err := c.awaitReply(ctx, &protocol.Message{Type: protocol.MessageRoomLeave})
	if err != nil {
		return err
	}
	if !reply.left {
		return fmt.Errorf("room leave: %s", reply.errMsg)
	}
	return nil
}

func (c *Client) roomRequest(ctx context.Context, msgType, code string) (protocol.Room, error) {
	msg, err := protocol.NewMessage(msgType, protocol.RoomRequest{
		Code:   code,
		Device: c.device,
	})
	if err != nil {
		return protocol.Room{}, err
	}

	reply, err := c.awaitReply(ctx, msg)
	if err != nil {
		return protocol.Room{}, err
	}
	if reply.errMsg != "" {
		return protocol.Room{}, fmt.Errorf("room request: %s", reply.errMsg)
	}
	return reply.room, nil
}

// awaitReply sends one room operation and blocks for the server's
// answer. Only one room operation may be outstanding per connection.
func (c *Client) awaitReply(ctx context.Context, msg *protocol.Message) (roomReply, error) {
	replyCh := make(chan roomReply, 1)

	c.mu.Lock()
	if c.pendingReply != nil {
		c.mu.Unlock()
		return roomReply{}, ErrRequestPending
	}
	c.pendingReply = replyCh
	c.mu.Unlock()

	clear := func() {
		c.mu.Lock()
		if c.pendingReply == replyCh {
			c.pendingReply = nil
		}
		c.mu.Unlock()
	}

	if err := c.Send(msg); err != nil {
		clear()
		return roomReply{}, err
	}

	timer := time.NewTimer(replyTimeout)
	defer timer.Stop()

	select {
	case reply := <-replyCh:
		return reply, nil
	case <-timer.C:
		clear()
		return roomReply{}, ErrReplyTimeout
	case <-ctx.Done():
		clear()
		return roomReply{}, ctx.Err()
	case <-c.done:
		clear()
		return roomReply{}, ErrReplyTimeout
	}
}
