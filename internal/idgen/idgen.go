// Package idgen produces identifiers for accounts, reports and report entries.
package idgen

import (
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/gopkg/lang/fastrand"
	"github.com/google/uuid"
)

// Generator returns a new identifier on every call.
type Generator func() string

// newRandom is swapped in tests to exercise the fallback path.
var newRandom = uuid.NewRandom

// NewID returns a random UUID. When the random source is unavailable it falls
// back to a base-36 string built from the clock and a fast PRNG. It never
// returns an empty string.
func NewID() string {
	id, err := newRandom()
	if err != nil {
		return fallbackID()
	}
	return id.String()
}

func fallbackID() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(time.Now().UnixNano(), 36))
	for b.Len() < 24 {
		b.WriteString(strconv.FormatUint(uint64(fastrand.Uint32()), 36))
	}
	return b.String()
}
