// Package idgen mints the public identifiers exposed on API resources.
package idgen

import (
	"crypto/rand"
	"fmt"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateSecureID returns "<prefix>_<id>" where id is length random
// characters drawn from a lowercase base36 alphabet. Randomness comes from
// crypto/rand so the IDs are safe to hand out as unguessable handles.
func GenerateSecureID(prefix string, length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return fmt.Sprintf("%s_%s", prefix, buf), nil
}
