// Package wire defines the cross-cutting wire types shared by every
// component that crosses a process boundary: job identifiers, the check
// result/batch payloads, the status enum, and the compact binary encoding
// used on the socket sink, the broker RPC, and the durable-log values.
//
// The encoding is hand-assembled protobuf wire format (see encoding.go) —
// there is no protoc step in this repository, but the bytes on the wire are
// indistinguishable from what a generated CheckBatchRequest would produce
// for the schema declared in the wire schema comment in types.go.
package wire

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// JobId is a 128-bit lexicographically time-sortable identifier, rendered
// as a 26-character Crockford base32 string. Ordering on the durable log
// depends on this property — do not substitute a random UUID.
type JobId struct {
	ulid ulid.ULID
}

// NewJobId generates a fresh JobId from the current time.
func NewJobId() JobId {
	return JobId{ulid: ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)}
}

// ParseJobId parses a 26-character Crockford base32 string into a JobId.
func ParseJobId(s string) (JobId, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return JobId{}, err
	}
	return JobId{ulid: id}, nil
}

// String renders the JobId as its canonical 26-character form.
func (j JobId) String() string {
	return j.ulid.String()
}

// IsZero reports whether j is the zero-value JobId.
func (j JobId) IsZero() bool {
	return j.ulid.Compare(ulid.ULID{}) == 0
}
