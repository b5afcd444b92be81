package streamtest

import (
	"crypto/rand"
	"encoding/binary"

	yieldstream "github.com/streamvault/yieldstream"
	"github.com/streamvault/yieldstream/store"
)

// Store returns a fresh in-memory store to run tests against.
func Store() yieldstream.CacheableKVStore {
	return store.MemStore()
}

// NewCondition returns a random condition. Every call returns a different
// one.
func NewCondition() yieldstream.Condition {
	data := make([]byte, 16)
	if _, err := rand.Read(data); err != nil {
		panic(err)
	}
	return yieldstream.NewCondition("strmtest", "rnd", data)
}

// NewAddress returns a random address. Every call returns a different one.
func NewAddress() yieldstream.Address {
	return NewCondition().Address()
}

// SequenceID returns an 8-byte identifier as produced by an orm.Sequence
// for the given counter value.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
