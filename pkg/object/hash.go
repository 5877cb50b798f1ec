package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Digest is a 40-character lowercase hex-encoded SHA-1 digest.
type Digest string

// Empty reports whether d carries no digest at all (distinct from a
// valid all-zero digest, which this package never produces).
func (d Digest) Empty() bool {
	return d == ""
}

// Valid reports whether d has the shape of a digest this package could
// have produced: exactly 40 lowercase hex characters.
func (d Digest) Valid() bool {
	if len(d) != 40 {
		return false
	}
	for _, c := range string(d) {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

// HashBytes computes the raw SHA-1 digest of data and returns it as a
// lowercase hex-encoded Digest.
func HashBytes(data []byte) Digest {
	sum := sha1.Sum(data)
	return Digest(hex.EncodeToString(sum[:]))
}

// blobHeader formats the "type len\0" envelope prepended to blob
// contents before hashing and storing, matching git's own
// hash-object convention.
func blobHeader(kind string, length int) []byte {
	return []byte(fmt.Sprintf("%s %d\x00", kind, length))
}
