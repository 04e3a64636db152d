package randomid

import (
	"crypto/rand"
	"math/big"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// New generates an opaque public identifier of the given length. Public ids
// are decoupled from internal storage keys and never change once assigned.
func New(length int) string {
	if length <= 0 {
		length = 12
	}
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform entropy source is
			// broken; there is no useful recovery at this level.
			panic(err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b)
}

// NewShort returns an id suitable for public video, playlist and subtitle ids.
func NewShort() string { return New(12) }

// NewLong returns an id suitable for thumbnail and poster-frame ids, which
// require a minimum length of 20.
func NewLong() string { return New(20) }
