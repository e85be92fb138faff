// Package config loads settings with flag > environment > default
// priority.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Naman-Goel-iitm/Device-connectivity/internal/room"
	"github.com/Naman-Goel-iitm/Device-connectivity/internal/transfer"
)

// Default configuration values.
const (
	DefaultServerAddr = "localhost:3000"
	DefaultPort       = "3000"
)

// Config holds application configuration for both the relay server
// and the endpoint commands.
type Config struct {
	// ServerAddr is the relay host:port an endpoint connects to.
	ServerAddr string

	// Port is the listen port for the serve command.
	Port string

	// RoomCapacity is the enforced member limit per room.
	RoomCapacity int

	// AckTimeout bounds the wait for a chunk acknowledgement.
	AckTimeout time.Duration

	// MaxRetries is the retransmission limit per chunk.
	MaxRetries int
}

// Options carries CLI flag overrides, which take priority over
// environment variables.
type Options struct {
	ServerAddr string
	Port       string
}

// Load reads configuration with the following priority:
// 1. CLI flags (via Options) - highest
// 2. Environment variables
// 3. Defaults - lowest
func Load(opts Options) (*Config, error) {
	serverAddr := opts.ServerAddr
	if serverAddr == "" {
		serverAddr = os.Getenv("WINDDROP_SERVER")
	}
	if serverAddr == "" {
		serverAddr = DefaultServerAddr
	}

	port := opts.Port
	if port == "" {
		port = os.Getenv("WINDDROP_PORT")
	}
	if port == "" {
		port = DefaultPort
	}

	ackSeconds := getEnvAsInt("WINDDROP_ACK_TIMEOUT", int(transfer.DefaultAckTimeout/time.Second))
	if ackSeconds <= 0 {
		return nil, fmt.Errorf("ack timeout must be positive, got %d", ackSeconds)
	}

	return &Config{
		ServerAddr:   serverAddr,
		Port:         port,
		RoomCapacity: getEnvAsInt("WINDDROP_ROOM_CAPACITY", room.DefaultCapacity),
		AckTimeout:   time.Duration(ackSeconds) * time.Second,
		MaxRetries:   getEnvAsInt("WINDDROP_MAX_RETRIES", transfer.DefaultMaxRetries),
	}, nil
}

// WebSocketURL is the relay endpoint URL for this config.
func (c *Config) WebSocketURL() string {
	return fmt.Sprintf("ws://%s/ws", c.ServerAddr)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
