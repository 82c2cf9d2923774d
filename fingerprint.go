package notepack

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/pierrec/xxHash/xxHash32"
)

// A Fingerprint is the fixed-width hex digest identifying a chunk's bytes.
// It is a dedup key, not a security primitive; distinct chunks are assumed
// not to collide.
type Fingerprint string

// A Fingerprinter maps chunk bytes to a Fingerprint. Implementations must
// be deterministic and side-effect free: equal bytes always yield equal
// digests, for any input size including the empty chunk.
type Fingerprinter interface {
	Fingerprint(chunk []byte) Fingerprint
}

// SHA256 is the default Fingerprinter: a SHA-256 digest truncated to
// 12 hex characters. Templates and dictionaries written by other
// implementations use this digest, so it is the interoperable choice.
type SHA256 struct{}

func (SHA256) Fingerprint(chunk []byte) Fingerprint {
	sum := sha256.Sum256(chunk)
	return Fingerprint(hex.EncodeToString(sum[:6]))
}

// XXH32 fingerprints chunks with xxHash32 (8 hex characters). It is much
// faster than SHA256 but not interoperable with it: a template or global
// dictionary produced with one fingerprinter cannot be combined with one
// produced with the other.
type XXH32 struct{}

func (XXH32) Fingerprint(chunk []byte) Fingerprint {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], xxHash32.Checksum(chunk, 0))
	return Fingerprint(hex.EncodeToString(b[:]))
}
