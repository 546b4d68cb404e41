// Package roomcode generates the short codes that identify meetings.
// Codes carry no uniqueness guarantee on their own; callers resolve
// collisions against the store.
package roomcode

import (
	"crypto/rand"
	"io"
)

const Length = 6

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// New returns a code of Length characters drawn uniformly from A-Z0-9.
func New() string {
	// Rejection sampling keeps each character uniform: 252 is the largest
	// multiple of len(alphabet) below 256.
	const limit = 252

	code := make([]byte, 0, Length)
	buf := make([]byte, Length)
	for len(code) < Length {
		if _, err := io.ReadFull(rand.Reader, buf); err != nil {
			panic("roomcode: crypto/rand unavailable: " + err.Error())
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			code = append(code, alphabet[int(b)%len(alphabet)])
			if len(code) == Length {
				break
			}
		}
	}
	return string(code)
}
