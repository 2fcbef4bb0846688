package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string for customers, jobs and users. ULIDs sort
// by creation time and carry 80 random bits, so ids do not collide within a
// store's lifetime.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
