package token

import (
	yieldstream "github.com/streamvault/yieldstream"
	"github.com/streamvault/yieldstream/errors"
	"github.com/streamvault/yieldstream/orm"
)

var _ orm.CloneableData = (*Account)(nil)

// Validate ensures the account is sane.
func (m *Account) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Balance < 0 {
		return errors.Wrap(errors.ErrState, "negative balance")
	}
	return nil
}

// Copy produces a new account with the same data.
func (m *Account) Copy() orm.CloneableData {
	return &Account{
		Metadata: m.Metadata.Copy(),
		Balance:  m.Balance,
	}
}

var _ orm.CloneableData = (*Allowance)(nil)

// Validate ensures the allowance is sane.
func (m *Allowance) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Amount < 0 {
		return errors.Wrap(errors.ErrState, "negative allowance")
	}
	return nil
}

// Copy produces a new allowance with the same data.
func (m *Allowance) Copy() orm.CloneableData {
	return &Allowance{
		Metadata: m.Metadata.Copy(),
		Amount:   m.Amount,
	}
}

// AccountBucket stores accounts keyed by address.
type AccountBucket struct {
	orm.Bucket
}

// NewAccountBucket returns a bucket for keeping track of balances under
// the given name. Distinct names give fully independent ledgers.
func NewAccountBucket(name string) AccountBucket {
	return AccountBucket{
		Bucket: orm.NewBucket(name, orm.NewSimpleObj(nil, &Account{})),
	}
}

// Get returns the account of the given address, or nil if never funded.
func (b AccountBucket) Get(db yieldstream.ReadOnlyKVStore, addr yieldstream.Address) (*Account, error) {
	obj, err := b.Bucket.Get(db, addr)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	return obj.Value().(*Account), nil
}

// GetOrCreate returns the account of the given address, falling back to
// an empty account.
func (b AccountBucket) GetOrCreate(db yieldstream.ReadOnlyKVStore, addr yieldstream.Address) (*Account, error) {
	acct, err := b.Get(db, addr)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		acct = &Account{Metadata: &yieldstream.Metadata{Schema: 1}}
	}
	return acct, nil
}

// Save persists an account under the given address.
func (b AccountBucket) Save(db yieldstream.KVStore, addr yieldstream.Address, acct *Account) error {
	return b.Bucket.Save(db, orm.NewSimpleObj(addr, acct))
}

// AllowanceBucket stores allowances keyed by owner|spender.
type AllowanceBucket struct {
	orm.Bucket
}

// NewAllowanceBucket returns a bucket for keeping track of allowances
// under the given name.
func NewAllowanceBucket(name string) AllowanceBucket {
	return AllowanceBucket{
		Bucket: orm.NewBucket(name, orm.NewSimpleObj(nil, &Allowance{})),
	}
}

// allowanceKey builds the composite owner|spender key.
func allowanceKey(owner, spender yieldstream.Address) []byte {
	key := make([]byte, 0, len(owner)+len(spender))
	key = append(key, owner...)
	return append(key, spender...)
}

// Get returns the allowance granted by owner to spender, or nil when none
// was ever granted.
func (b AllowanceBucket) Get(db yieldstream.ReadOnlyKVStore, owner, spender yieldstream.Address) (*Allowance, error) {
	obj, err := b.Bucket.Get(db, allowanceKey(owner, spender))
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	return obj.Value().(*Allowance), nil
}

// Save persists the allowance granted by owner to spender.
func (b AllowanceBucket) Save(db yieldstream.KVStore, owner, spender yieldstream.Address, a *Allowance) error {
	return b.Bucket.Save(db, orm.NewSimpleObj(allowanceKey(owner, spender), a))
}

// Delete removes the allowance record.
func (b AllowanceBucket) Delete(db yieldstream.KVStore, owner, spender yieldstream.Address) error {
	return b.Bucket.Delete(db, allowanceKey(owner, spender))
}
