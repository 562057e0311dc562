package auth

import "hash/fnv"

// NumericUserID derives a stable numeric key from a token subject. The
// gateway has no user table of its own, so persisted rows are keyed by this
// hash of the identity provider's subject claim.
func NumericUserID(subject string) uint {
	h := fnv.New32a()
	h.Write([]byte(subject))
	return uint(h.Sum32())
}
