package protocol

import (
	"crypto/rand"
	"log"
	"math/big"
	"regexp"
	"strings"
)

const (
	// RoomCodeLength is the fixed length of a room code.
	RoomCodeLength = 6

	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var roomCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// GenerateRoomCode returns a random 6-character uppercase alphanumeric
// room code. Codes are generated client-side; uniqueness among live
// rooms is enforced by the registry at create time.
func GenerateRoomCode() string {
	var b strings.Builder
	b.Grow(RoomCodeLength)
	for i := 0; i < RoomCodeLength; i++ {
		b.WriteByte(roomCodeAlphabet[randomIndex(len(roomCodeAlphabet))])
	}
	return b.String()
}

// ValidRoomCode reports whether code matches the room code format.
func ValidRoomCode(code string) bool {
	return roomCodePattern.MatchString(code)
}

// FormatRoomCode inserts a space for readability: "ABC123" -> "ABC 123".
func FormatRoomCode(code string) string {
	if len(code) != RoomCodeLength {
		return code
	}
	return code[:3] + " " + code[3:]
}

// randomIndex returns a cryptographically secure random index for a
// slice of the given length.
func randomIndex(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		log.Panic("failed to generate random index:", err)
	}
	return int(n.Int64())
}
