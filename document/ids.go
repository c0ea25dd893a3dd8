package document

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces block identifiers. Ids only need to be unique within
// one editing session; they are never used as foreign keys.
type IDGenerator func() string

// NewID is the generator used by AddBlock and by the decoder when a stored
// block is missing a usable id.
func NewID() string {
	return "block-" + uuid.NewString()
}

// SequentialIDs returns a generator yielding prefix-1, prefix-2, ...
// It is safe for concurrent use.
func SequentialIDs(prefix string) IDGenerator {
	var n atomic.Int64
	return func() string {
		return prefix + "-" + strconv.FormatInt(n.Add(1), 10)
	}
}
