package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSavepointCommits(t *testing.T) {
	db := MemStore()
	err := WithSavepoint(db, func(kv KVStore) error {
		return kv.Set([]byte("key"), []byte("value"))
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), mustGet(t, db, []byte("key")))
}

func TestWithSavepointRollsBack(t *testing.T) {
	db := MemStore()
	mustSet(t, db, []byte("keep"), []byte("original"))

	fail := fmt.Errorf("deliberate failure")
	err := WithSavepoint(db, func(kv KVStore) error {
		if err := kv.Set([]byte("keep"), []byte("changed")); err != nil {
			return err
		}
		if err := kv.Set([]byte("new"), []byte("data")); err != nil {
			return err
		}
		return fail
	})
	if err != fail {
		t.Fatalf("want the inner error back, got %+v", err)
	}

	// none of the writes may leak out
	assert.Equal(t, []byte("original"), mustGet(t, db, []byte("keep")))
	assert.Nil(t, mustGet(t, db, []byte("new")))
}
