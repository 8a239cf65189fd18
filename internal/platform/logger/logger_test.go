package logger

import (
	"strings"
	"testing"
)

func TestSanitizeValueRedactsSecrets(t *testing.T) {
	cases := []struct {
		key  string
		val  interface{}
		want interface{}
	}{
		{key: "password", val: "hunter2", want: "[REDACTED]"},
		{key: "access_token", val: "abc", want: "[REDACTED]"},
		{key: "email", val: "a@b.c", want: "[REDACTED]"},
		{key: "tool_name", val: "Metronome", want: "Metronome"},
		{key: "duration", val: 15, want: 15},
	}
	for _, tc := range cases {
		if got := sanitizeValue(tc.key, tc.val); got != tc.want {
			t.Fatalf("sanitizeValue(%q): want=%v got=%v", tc.key, tc.want, got)
		}
	}
}

func TestSanitizeValueHashesIdentifiers(t *testing.T) {
	got, ok := sanitizeValue("user_id", "8b1b2c4e-0000-4000-8000-000000000001").(string)
	if !ok {
		t.Fatalf("expected string hash")
	}
	if !strings.HasPrefix(got, "hash:") || len(got) != len("hash:")+12 {
		t.Fatalf("unexpected hash format: %q", got)
	}
	again := sanitizeValue("user_id", "8b1b2c4e-0000-4000-8000-000000000001")
	if again != got {
		t.Fatalf("hash should be stable: %v vs %v", again, got)
	}
}

func TestSanitizeValueRedactsJWTLookingStrings(t *testing.T) {
	jwtish := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.signature"
	if got := sanitizeValue("detail", jwtish); got != "[REDACTED]" {
		t.Fatalf("expected jwt-like value to be redacted, got=%v", got)
	}
}

func TestNewTestModeIsQuiet(t *testing.T) {
	log, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("should be discarded", "user_id", "x")
	log.With("service", "X").Warn("also discarded")
	log.Sync()
}
