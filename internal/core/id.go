package core

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// NewID generates an opaque record identifier: millisecond timestamp in
// base 36 plus a short random suffix. Sorts roughly by creation time.
func NewID() string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		// Fall back to a time-only ID; collisions are acceptable at
		// single-user entry rates.
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + hex.EncodeToString(buf)
}
