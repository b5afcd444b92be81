package store

import "github.com/streamvault/yieldstream"

// Move references for all storage types into this package for shorter names
// everywhere.

type ReadOnlyKVStore = yieldstream.ReadOnlyKVStore
type KVStore = yieldstream.KVStore
type Iterator = yieldstream.Iterator
type Batch = yieldstream.Batch
type SetDeleter = yieldstream.SetDeleter
type CacheableKVStore = yieldstream.CacheableKVStore
type KVCacheWrap = yieldstream.KVCacheWrap
type Model = yieldstream.Model
