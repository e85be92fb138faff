package protocol

import "testing"

func TestGenerateRoomCodeFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateRoomCode()
		if !ValidRoomCode(code) {
			t.Fatalf("generated code %q does not match the room code format", code)
		}
	}
}

func TestValidRoomCode(t *testing.T) {
	cases := []struct {
		code  string
		valid bool
	}{
		{"ABC123", true},
		{"ZZZZZZ", true},
		{"000000", true},
		{"abc123", false},
		{"ABC12", false},
		{"ABC1234", false},
		{"ABC 12", false},
		{"ABC-12", false},
		{"", false},
	}

	for _, c := range cases {
		if got := ValidRoomCode(c.code); got != c.valid {
			t.Errorf("ValidRoomCode(%q) = %v, want %v", c.code, got, c.valid)
		}
	}
}

func TestFormatRoomCode(t *testing.T) {
	if got := FormatRoomCode("ABC123"); got != "ABC 123" {
		t.Fatalf("FormatRoomCode = %q, want %q", got, "ABC 123")
	}
	if got := FormatRoomCode("AB"); got != "AB" {
		t.Fatalf("FormatRoomCode should leave short input untouched, got %q", got)
	}
}
