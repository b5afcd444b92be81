package store

// WithSavepoint runs fn against a cache wrap of db. If fn returns an error,
// all writes it made are discarded, otherwise they are flushed to db as one
// unit.
func WithSavepoint(db CacheableKVStore, fn func(KVStore) error) error {
	cache := db.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	return cache.Write()
}
