package yieldstream

import (
	"github.com/streamvault/yieldstream/errors"
)

// Validate ensures that the metadata is correct. Nil metadata is not a
// valid metadata.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrEmpty, "metadata")
	}
	if m.Schema < 1 {
		return errors.Wrap(errors.ErrModel, "schema version must be greater than zero")
	}
	return nil
}

// Copy returns a copy of this object. This method is helpful when
// implementing orm.CloneableData interface to make a copy of the header.
func (m *Metadata) Copy() *Metadata {
	if m == nil {
		return nil
	}
	cpy := *m
	return &cpy
}
