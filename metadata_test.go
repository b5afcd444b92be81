package yieldstream

import (
	"testing"

	"github.com/streamvault/yieldstream/errors"
	"github.com/streamvault/yieldstream/streamtest/assert"
)

func TestMetadataValidate(t *testing.T) {
	var m *Metadata
	assert.IsErr(t, errors.ErrEmpty, m.Validate())
	assert.IsErr(t, errors.ErrModel, (&Metadata{}).Validate())
	assert.Nil(t, (&Metadata{Schema: 1}).Validate())
}

func TestMetadataCopy(t *testing.T) {
	m := &Metadata{Schema: 4}
	cpy := m.Copy()
	cpy.Schema = 9
	assert.Equal(t, uint32(4), m.Schema)
	assert.Equal(t, uint32(9), cpy.Schema)

	var nilMeta *Metadata
	if nilMeta.Copy() != nil {
		t.Fatal("copy of nil must be nil")
	}
}
