package idgen

import (
	"strings"
	"testing"
)

func TestGenerateSecureID(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		length     int
		wantPrefix string
	}{
		{
			name:       "generate session ID",
			prefix:     "sess",
			length:     24,
			wantPrefix: "sess_",
		},
		{
			name:       "generate conversation ID",
			prefix:     "conv",
			length:     16,
			wantPrefix: "conv_",
		},
		{
			name:       "generate message ID",
			prefix:     "msg",
			length:     16,
			wantPrefix: "msg_",
		},
		{
			name:       "generate short ID",
			prefix:     "exp",
			length:     8,
			wantPrefix: "exp_",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateSecureID(tt.prefix, tt.length)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasPrefix(id, tt.wantPrefix) {
				t.Fatalf("expected prefix %q, got %q", tt.wantPrefix, id)
			}
			if len(id) != len(tt.wantPrefix)+tt.length {
				t.Fatalf("expected length %d, got %d", len(tt.wantPrefix)+tt.length, len(id))
			}
			for _, r := range id[len(tt.wantPrefix):] {
				if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z') {
					t.Fatalf("unexpected character %q in %q", r, id)
				}
			}
		})
	}
}

func TestGenerateSecureIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := GenerateSecureID("sess", 24)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}
