package token

import (
	yieldstream "github.com/streamvault/yieldstream"
	"github.com/streamvault/yieldstream/errors"
)

// Controller is a ledger for a single denomination. Amounts are expressed
// in int64 base units and are never negative in storage.
type Controller struct {
	accounts   AccountBucket
	allowances AllowanceBucket
}

// NewController returns a ledger storing its data under the given bucket
// name. The allowance table lives in a derived bucket.
func NewController(name string) Controller {
	return Controller{
		accounts:   NewAccountBucket(name),
		allowances: NewAllowanceBucket(name + "alw"),
	}
}

// Balance returns the current balance of the given address. Addresses
// that were never funded have a zero balance.
func (c Controller) Balance(db yieldstream.ReadOnlyKVStore, addr yieldstream.Address) (int64, error) {
	if err := addr.Validate(); err != nil {
		return 0, errors.Wrap(err, "address")
	}
	acct, err := c.accounts.Get(db, addr)
	if err != nil {
		return 0, err
	}
	if acct == nil {
		return 0, nil
	}
	return acct.Balance, nil
}

// Move transfers amount from src to dst. It fails with
// ErrInsufficientAmount when src holds less than amount.
func (c Controller) Move(db yieldstream.KVStore, src, dst yieldstream.Address, amount int64) error {
	if amount <= 0 {
		return errors.Wrapf(errors.ErrAmount, "non-positive: %d", amount)
	}
	if err := dst.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}

	sender, err := c.accounts.Get(db, src)
	if err != nil {
		return err
	}
	if sender == nil || sender.Balance < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "move %d", amount)
	}

	recipient, err := c.accounts.GetOrCreate(db, dst)
	if err != nil {
		return err
	}
	newBalance, err := add64(recipient.Balance, amount)
	if err != nil {
		return err
	}

	sender.Balance -= amount
	recipient.Balance = newBalance

	if err := c.accounts.Save(db, src, sender); err != nil {
		return err
	}
	return c.accounts.Save(db, dst, recipient)
}

// Issue mints amount new units onto the dst account.
func (c Controller) Issue(db yieldstream.KVStore, dst yieldstream.Address, amount int64) error {
	if amount <= 0 {
		return errors.Wrapf(errors.ErrAmount, "non-positive: %d", amount)
	}
	if err := dst.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	recipient, err := c.accounts.GetOrCreate(db, dst)
	if err != nil {
		return err
	}
	newBalance, err := add64(recipient.Balance, amount)
	if err != nil {
		return err
	}
	recipient.Balance = newBalance
	return c.accounts.Save(db, dst, recipient)
}

// Burn destroys amount units held by src.
func (c Controller) Burn(db yieldstream.KVStore, src yieldstream.Address, amount int64) error {
	if amount <= 0 {
		return errors.Wrapf(errors.ErrAmount, "non-positive: %d", amount)
	}
	acct, err := c.accounts.Get(db, src)
	if err != nil {
		return err
	}
	if acct == nil || acct.Balance < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "burn %d", amount)
	}
	acct.Balance -= amount
	return c.accounts.Save(db, src, acct)
}

// Approve grants spender the right to move up to amount units out of the
// owner account. A zero amount clears the grant.
func (c Controller) Approve(db yieldstream.KVStore, owner, spender yieldstream.Address, amount int64) error {
	if amount < 0 {
		return errors.Wrapf(errors.ErrAmount, "negative: %d", amount)
	}
	if err := spender.Validate(); err != nil {
		return errors.Wrap(err, "spender")
	}
	if amount == 0 {
		return c.allowances.Delete(db, owner, spender)
	}
	a := &Allowance{
		Metadata: &yieldstream.Metadata{Schema: 1},
		Amount:   amount,
	}
	return c.allowances.Save(db, owner, spender, a)
}

// Allowance returns the amount spender may still move out of the owner
// account.
func (c Controller) Allowance(db yieldstream.ReadOnlyKVStore, owner, spender yieldstream.Address) (int64, error) {
	a, err := c.allowances.Get(db, owner, spender)
	if err != nil {
		return 0, err
	}
	if a == nil {
		return 0, nil
	}
	return a.Amount, nil
}

// MoveFrom lets spender transfer amount from src to dst within the
// granted allowance. The allowance is reduced by the moved amount.
func (c Controller) MoveFrom(db yieldstream.KVStore, spender, src, dst yieldstream.Address, amount int64) error {
	if amount <= 0 {
		return errors.Wrapf(errors.ErrAmount, "non-positive: %d", amount)
	}
	a, err := c.allowances.Get(db, src, spender)
	if err != nil {
		return err
	}
	if a == nil || a.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "allowance %d", amount)
	}
	if err := c.Move(db, src, dst, amount); err != nil {
		return err
	}
	a.Amount -= amount
	if a.Amount == 0 {
		return c.allowances.Delete(db, src, spender)
	}
	return c.allowances.Save(db, src, spender, a)
}

// add64 adds two int64 values, failing with ErrOverflow instead of
// wrapping around.
func add64(a, b int64) (int64, error) {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d", a, b)
	}
	return c, nil
}
