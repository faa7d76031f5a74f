// Package uuid wraps github.com/google/uuid and makes time-ordered
// UUIDv7 the default for all identifiers minted by the service.
package uuid

import (
	"time"

	"github.com/google/uuid"
)

// UUID is an alias for github.com/google/uuid.UUID.
type UUID = uuid.UUID

// Nil is the zero-valued UUID.
var Nil = uuid.Nil

// New returns a new UUIDv7. Panics if generation fails.
func New() UUID {
	u, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return u
}

// NewRandom returns a new UUIDv7 together with any generation error.
func NewRandom() (UUID, error) {
	return uuid.NewV7()
}

// Parse parses a UUID from its string form.
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// MustParse parses a UUID string and panics on malformed input.
func MustParse(s string) UUID {
	return uuid.MustParse(s)
}

// Timestamp extracts the embedded creation time from a UUIDv7.
// Returns the zero time for UUIDs of any other version.
func Timestamp(u UUID) time.Time {
	if u.Version() != uuid.Version(7) {
		return time.Time{}
	}
	ms := int64(u[0])<<40 | int64(u[1])<<32 | int64(u[2])<<24 |
		int64(u[3])<<16 | int64(u[4])<<8 | int64(u[5])
	return time.UnixMilli(ms)
}
