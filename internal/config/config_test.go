package config

import (
	"testing"
	"time"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/room"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/transfer"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"WINDDROP_SERVER", "WINDDROP_PORT", "WINDDROP_ACK_TIMEOUT", "WINDDROP_ROOM_CAPACITY", "WINDDROP_MAX_RETRIES"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerAddr != DefaultServerAddr {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, DefaultServerAddr)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %q, want %q", cfg.Port, DefaultPort)
	}
	if cfg.RoomCapacity != room.DefaultCapacity {
		t.Errorf("RoomCapacity = %d, want %d", cfg.RoomCapacity, room.DefaultCapacity)
	}
	if cfg.AckTimeout != transfer.DefaultAckTimeout {
		t.Errorf("AckTimeout = %v, want %v", cfg.AckTimeout, transfer.DefaultAckTimeout)
	}
	if cfg.MaxRetries != transfer.DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", cfg.MaxRetries, transfer.DefaultMaxRetries)
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("WINDDROP_SERVER", "relay.example.com:9000")
	t.Setenv("WINDDROP_PORT", "9000")
	t.Setenv("WINDDROP_ACK_TIMEOUT", "5")
	t.Setenv("WINDDROP_MAX_RETRIES", "7")

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerAddr != "relay.example.com:9000" {
		t.Errorf("ServerAddr = %q", cfg.ServerAddr)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.AckTimeout != 5*time.Second {
		t.Errorf("AckTimeout = %v, want 5s", cfg.AckTimeout)
	}
	if cfg.MaxRetries != 7 {
		t.Errorf("MaxRetries = %d, want 7", cfg.MaxRetries)
	}
}

func TestLoadFlagsBeatEnv(t *testing.T) {
	t.Setenv("WINDDROP_SERVER", "env.example.com:9000")
	t.Setenv("WINDDROP_PORT", "9000")

	cfg, err := Load(Options{ServerAddr: "flag.example.com:8080", Port: "8080"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerAddr != "flag.example.com:8080" {
		t.Errorf("ServerAddr = %q, flags must win over env", cfg.ServerAddr)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, flags must win over env", cfg.Port)
	}
}

func TestLoadRejectsNonPositiveAckTimeout(t *testing.T) {
	t.Setenv("WINDDROP_ACK_TIMEOUT", "0")
	if _, err := Load(Options{}); err == nil {
		t.Fatalf("expected error for zero ack timeout")
	}
}

func TestLoadIgnoresMalformedInts(t *testing.T) {
	t.Setenv("WINDDROP_MAX_RETRIES", "lots")
	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxRetries != transfer.DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want default %d", cfg.MaxRetries, transfer.DefaultMaxRetries)
	}
}

func TestWebSocketURL(t *testing.T) {
	cfg := &Config{ServerAddr: "relay.example.com:9000"}
	if got := cfg.WebSocketURL(); got != "ws://relay.example.com:9000/ws" {
		t.Fatalf("WebSocketURL = %q", got)
	}
}
