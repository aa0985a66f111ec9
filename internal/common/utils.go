package common

import (
	"crypto/rand"
	"fmt"
)

// GenerateRandBytes returns n bytes from the cryptographic random source.
// A failing source is reported as ErrEnvironment.
func GenerateRandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("%w: random source: %v", ErrEnvironment, err)
	}
	return b, nil
}

// WipeByteArray overwrites b with zeros. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
