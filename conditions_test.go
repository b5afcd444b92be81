package yieldstream

import (
	"encoding/json"
	"testing"

	"github.com/streamvault/yieldstream/errors"
	"github.com/streamvault/yieldstream/streamtest/assert"
)

func TestConditionParse(t *testing.T) {
	cond := NewCondition("vault", "pool", []byte("rate"))
	ext, typ, data, err := cond.Parse()
	assert.Nil(t, err)
	assert.Equal(t, "vault", ext)
	assert.Equal(t, "pool", typ)
	assert.Equal(t, []byte("rate"), data)

	// binary data survives, newlines included
	cond = NewCondition("stream", "pool", []byte{0x20, 0x0a, 0xff})
	assert.Nil(t, cond.Validate())
	_, _, data, err = cond.Parse()
	assert.Nil(t, err)
	assert.Equal(t, []byte{0x20, 0x0a, 0xff}, data)

	garbage := Condition("bad")
	assert.IsErr(t, errors.ErrInput, garbage.Validate())
	_, _, _, err = garbage.Parse()
	assert.IsErr(t, errors.ErrInput, err)
}

func TestConditionAddress(t *testing.T) {
	a := NewCondition("vault", "pool", []byte("rate")).Address()
	b := NewCondition("stream", "pool", []byte("shares")).Address()

	assert.Nil(t, a.Validate())
	assert.Nil(t, b.Validate())
	assert.Equal(t, false, a.Equals(b))

	// derivation is deterministic
	again := NewCondition("vault", "pool", []byte("rate")).Address()
	assert.Equal(t, true, a.Equals(again))
}

func TestAddressValidate(t *testing.T) {
	var empty Address
	assert.IsErr(t, errors.ErrInput, empty.Validate())
	assert.IsErr(t, errors.ErrInput, Address("too short").Validate())
	assert.Nil(t, Address(make([]byte, AddressLength)).Validate())
}

func TestAddressJSON(t *testing.T) {
	addr := NewCondition("vault", "pool", []byte("rate")).Address()

	raw, err := json.Marshal(addr)
	assert.Nil(t, err)

	var got Address
	assert.Nil(t, json.Unmarshal(raw, &got))
	assert.Equal(t, true, addr.Equals(got))

	// empty string decodes to a zero address
	assert.Nil(t, json.Unmarshal([]byte(`""`), &got))
	assert.Equal(t, true, got.Equals(nil))

	err = json.Unmarshal([]byte(`"abc"`), &got)
	if err == nil {
		t.Fatal("want an error for odd length hex")
	}
}

func TestAddressClone(t *testing.T) {
	addr := NewCondition("vault", "pool", []byte("rate")).Address()
	clone := addr.Clone()
	assert.Equal(t, true, addr.Equals(clone))
	clone[0]++
	assert.Equal(t, false, addr.Equals(clone))

	var empty Address
	assert.Equal(t, true, empty.Clone().Equals(nil))
}
