package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a user id. ULIDs sort by creation time and spread evenly
// across DynamoDB partitions.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
