package griddb

import (
	"github.com/khklau/gridstore/common/go/griderr"
)

// MaxKeyLength bounds a Key's length: a 32-byte NUL-terminated buffer
// leaves 31 bytes for content. It is checked once, at construction,
// rather than again on every Write — a Key value is a proof that its
// length was validated, so operations that accept a Key never need to
// re-check it.
const MaxKeyLength = 31

// Key is an immutable, length-validated lookup key.
type Key struct {
	data string
}

// NewKey validates and wraps s as a Key. It is the only way to produce a
// Key, so every function accepting one can assume MaxKeyLength holds.
func NewKey(s string) (Key, error) {
	if len(s) == 0 {
		return Key{}, griderr.New(griderr.InvalidArgument, "key must not be empty")
	}
	if len(s) > MaxKeyLength {
		return Key{}, griderr.Newf(griderr.KeyTooLong, "key length %d exceeds max %d", len(s), MaxKeyLength)
	}
	return Key{data: s}, nil
}

func (k Key) String() string { return k.data }
