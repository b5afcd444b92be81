package streamtoken

import (
	yieldstream "github.com/streamvault/yieldstream"
	"github.com/streamvault/yieldstream/errors"
	"github.com/streamvault/yieldstream/orm"
)

// Registry manages stream ownership. Ids are issued in increasing order
// and never reused.
type Registry struct {
	bucket Bucket
}

// NewRegistry returns a registry over the default bucket.
func NewRegistry() Registry {
	return Registry{bucket: NewBucket()}
}

// Mint issues a new id owned by the given address.
func (r Registry) Mint(db yieldstream.KVStore, owner yieldstream.Address) ([]byte, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	tok := &StreamToken{
		Metadata: &yieldstream.Metadata{Schema: 1},
		Owner:    owner,
	}
	return r.bucket.Create(db, tok)
}

// OwnerOf returns the current owner of the id. It fails with ErrNotFound
// for ids that were never minted or were burned.
func (r Registry) OwnerOf(db yieldstream.ReadOnlyKVStore, id []byte) (yieldstream.Address, error) {
	if err := orm.ValidateSequence(id); err != nil {
		return nil, err
	}
	tok, err := r.bucket.Get(db, id)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "token %x", id)
	}
	return tok.Owner, nil
}

// Burn removes the token. The id is retired, it will never be issued
// again.
func (r Registry) Burn(db yieldstream.KVStore, id []byte) error {
	tok, err := r.bucket.Get(db, id)
	if err != nil {
		return err
	}
	if tok == nil {
		return errors.Wrapf(errors.ErrNotFound, "token %x", id)
	}
	return r.bucket.Delete(db, id)
}

// Transfer moves ownership of the id from from to to. Only the current
// owner may transfer.
func (r Registry) Transfer(db yieldstream.KVStore, id []byte, from, to yieldstream.Address) error {
	if err := to.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	tok, err := r.bucket.Get(db, id)
	if err != nil {
		return err
	}
	if tok == nil {
		return errors.Wrapf(errors.ErrNotFound, "token %x", id)
	}
	if !tok.Owner.Equals(from) {
		return errors.Wrap(errors.ErrUnauthorized, "not the token owner")
	}
	tok.Owner = to
	return r.bucket.Save(db, id, tok)
}
