package token

import (
	"testing"

	"github.com/streamvault/yieldstream/errors"
	"github.com/streamvault/yieldstream/streamtest"
	"github.com/streamvault/yieldstream/streamtest/assert"
)

func TestIssueAndBalance(t *testing.T) {
	db := streamtest.Store()
	ctrl := NewController("asset")
	alice := streamtest.NewAddress()

	// a never funded address has a zero balance
	balance, err := ctrl.Balance(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), balance)

	assert.Nil(t, ctrl.Issue(db, alice, 500))
	assert.Nil(t, ctrl.Issue(db, alice, 250))

	balance, err = ctrl.Balance(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, int64(750), balance)
}

func TestIssueRejectsNonPositive(t *testing.T) {
	db := streamtest.Store()
	ctrl := NewController("asset")
	alice := streamtest.NewAddress()

	assert.IsErr(t, errors.ErrAmount, ctrl.Issue(db, alice, 0))
	assert.IsErr(t, errors.ErrAmount, ctrl.Issue(db, alice, -4))
}

func TestMove(t *testing.T) {
	db := streamtest.Store()
	ctrl := NewController("asset")
	alice := streamtest.NewAddress()
	bob := streamtest.NewAddress()

	assert.Nil(t, ctrl.Issue(db, alice, 100))

	cases := map[string]struct {
		amount  int64
		wantErr *errors.Error
	}{
		"all good":           {amount: 40, wantErr: nil},
		"zero amount":        {amount: 0, wantErr: errors.ErrAmount},
		"negative amount":    {amount: -2, wantErr: errors.ErrAmount},
		"more than balance":  {amount: 1000, wantErr: errors.ErrInsufficientAmount},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := ctrl.Move(db, alice, bob, tc.amount)
			if tc.wantErr == nil {
				assert.Nil(t, err)
			} else {
				assert.IsErr(t, tc.wantErr, err)
			}
		})
	}

	balance, err := ctrl.Balance(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, int64(60), balance)
	balance, err = ctrl.Balance(db, bob)
	assert.Nil(t, err)
	assert.Equal(t, int64(40), balance)
}

func TestMoveFromEmptyAccount(t *testing.T) {
	db := streamtest.Store()
	ctrl := NewController("asset")

	err := ctrl.Move(db, streamtest.NewAddress(), streamtest.NewAddress(), 10)
	assert.IsErr(t, errors.ErrInsufficientAmount, err)
}

func TestBurn(t *testing.T) {
	db := streamtest.Store()
	ctrl := NewController("asset")
	alice := streamtest.NewAddress()

	assert.Nil(t, ctrl.Issue(db, alice, 100))
	assert.Nil(t, ctrl.Burn(db, alice, 30))

	balance, err := ctrl.Balance(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, int64(70), balance)

	assert.IsErr(t, errors.ErrInsufficientAmount, ctrl.Burn(db, alice, 71))
	assert.IsErr(t, errors.ErrAmount, ctrl.Burn(db, alice, 0))
}

func TestAllowanceLifecycle(t *testing.T) {
	db := streamtest.Store()
	ctrl := NewController("asset")
	owner := streamtest.NewAddress()
	spender := streamtest.NewAddress()
	dest := streamtest.NewAddress()

	assert.Nil(t, ctrl.Issue(db, owner, 100))

	// no grant, no move
	err := ctrl.MoveFrom(db, spender, owner, dest, 10)
	assert.IsErr(t, errors.ErrInsufficientAmount, err)

	assert.Nil(t, ctrl.Approve(db, owner, spender, 50))
	granted, err := ctrl.Allowance(db, owner, spender)
	assert.Nil(t, err)
	assert.Equal(t, int64(50), granted)

	// spending reduces the allowance
	assert.Nil(t, ctrl.MoveFrom(db, spender, owner, dest, 30))
	granted, err = ctrl.Allowance(db, owner, spender)
	assert.Nil(t, err)
	assert.Equal(t, int64(20), granted)

	// cannot exceed the remaining grant, even with enough balance
	err = ctrl.MoveFrom(db, spender, owner, dest, 21)
	assert.IsErr(t, errors.ErrInsufficientAmount, err)

	// spending the rest removes the record
	assert.Nil(t, ctrl.MoveFrom(db, spender, owner, dest, 20))
	granted, err = ctrl.Allowance(db, owner, spender)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), granted)

	balance, err := ctrl.Balance(db, dest)
	assert.Nil(t, err)
	assert.Equal(t, int64(50), balance)
}

func TestApproveReset(t *testing.T) {
	db := streamtest.Store()
	ctrl := NewController("asset")
	owner := streamtest.NewAddress()
	spender := streamtest.NewAddress()

	assert.Nil(t, ctrl.Approve(db, owner, spender, 10))
	// zero amount clears the grant
	assert.Nil(t, ctrl.Approve(db, owner, spender, 0))
	granted, err := ctrl.Allowance(db, owner, spender)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), granted)

	assert.IsErr(t, errors.ErrAmount, ctrl.Approve(db, owner, spender, -1))
}

func TestLedgersAreIndependent(t *testing.T) {
	db := streamtest.Store()
	asset := NewController("asset")
	share := NewController("share")
	alice := streamtest.NewAddress()

	assert.Nil(t, asset.Issue(db, alice, 100))

	balance, err := share.Balance(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), balance)
}
