package protocol

import (
	"bytes"
	"testing"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	chunk := ChunkPayload{
		TransferID:  "t-1",
		ReceiverID:  "dev-b",
		Chunk:       []byte{0x00, 0x01, 0xFF, 0xFE},
		Offset:      512,
		Total:       1024,
		ChunkNumber: 2,
		TotalChunks: 2,
	}

	msg, err := NewMessage(MessageTransferChunk, chunk)
	if err != nil {
		t.Fatalf("NewMessage failed: %v", err)
	}

	frame, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Type != MessageTransferChunk {
		t.Fatalf("type = %q, want %q", decoded.Type, MessageTransferChunk)
	}

	var got ChunkPayload
	if err := decoded.DecodePayload(&got); err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	if !bytes.Equal(got.Chunk, chunk.Chunk) {
		t.Fatalf("chunk bytes mismatch: got %v want %v", got.Chunk, chunk.Chunk)
	}
	if got.ChunkNumber != 2 || got.TotalChunks != 2 || got.Offset != 512 || got.Total != 1024 {
		t.Fatalf("chunk fields mismatch: %+v", got)
	}
}

func TestTransferKindIsCarriedExplicitly(t *testing.T) {
	msg, err := NewMessage(MessageTransferText, TransferSendPayload{
		Transfer: Transfer{
			ID:      "t-2",
			Kind:    TransferLink,
			Content: "https://example.com",
		},
		ReceiverID: "dev-b",
	})
	if err != nil {
		t.Fatalf("NewMessage failed: %v", err)
	}

	var p TransferSendPayload
	if err := msg.DecodePayload(&p); err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	if p.Transfer.Kind != TransferLink {
		t.Fatalf("kind = %q, want %q", p.Transfer.Kind, TransferLink)
	}
}

func TestMessageWithoutPayload(t *testing.T) {
	msg, err := NewMessage(MessageRoomLeave, nil)
	if err != nil {
		t.Fatalf("NewMessage failed: %v", err)
	}

	frame, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Type != MessageRoomLeave {
		t.Fatalf("type = %q, want %q", decoded.Type, MessageRoomLeave)
	}
	if len(decoded.Payload) != 0 {
		t.Fatalf("expected empty payload, got %d bytes", len(decoded.Payload))
	}
}
