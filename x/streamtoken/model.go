package streamtoken

import (
	yieldstream "github.com/streamvault/yieldstream"
	"github.com/streamvault/yieldstream/errors"
	"github.com/streamvault/yieldstream/orm"
)

// BucketName is where the stream tokens are stored.
const BucketName = "strmtoken"

var _ orm.CloneableData = (*StreamToken)(nil)

// Validate ensures the token is sane.
func (m *StreamToken) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := m.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	return nil
}

// Copy produces a new token with the same data.
func (m *StreamToken) Copy() orm.CloneableData {
	return &StreamToken{
		Metadata: m.Metadata.Copy(),
		Owner:    m.Owner.Clone(),
	}
}

// Bucket stores the stream tokens keyed by sequence id.
type Bucket struct {
	orm.Bucket
	idSeq orm.Sequence
}

// NewBucket initializes a streamtoken bucket with the default name.
func NewBucket() Bucket {
	b := orm.NewBucket(BucketName, orm.NewSimpleObj(nil, &StreamToken{}))
	return Bucket{
		Bucket: b,
		idSeq:  b.Sequence("id"),
	}
}

// Get returns the token stored under the id, or nil if absent.
func (b Bucket) Get(db yieldstream.ReadOnlyKVStore, id []byte) (*StreamToken, error) {
	obj, err := b.Bucket.Get(db, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	return obj.Value().(*StreamToken), nil
}

// Create stores the token under a freshly issued id.
func (b Bucket) Create(db yieldstream.KVStore, tok *StreamToken) ([]byte, error) {
	id, err := b.idSeq.NextVal(db)
	if err != nil {
		return nil, err
	}
	if err := b.Bucket.Save(db, orm.NewSimpleObj(id, tok)); err != nil {
		return nil, err
	}
	return id, nil
}

// Save persists an existing token.
func (b Bucket) Save(db yieldstream.KVStore, id []byte, tok *StreamToken) error {
	return b.Bucket.Save(db, orm.NewSimpleObj(id, tok))
}
