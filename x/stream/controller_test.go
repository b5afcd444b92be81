package stream

import (
	"bytes"
	"testing"

	yieldstream "github.com/streamvault/yieldstream"
	"github.com/streamvault/yieldstream/errors"
	"github.com/streamvault/yieldstream/streamtest"
	"github.com/streamvault/yieldstream/streamtest/assert"
)

func TestOpenAndCloseRoundTrip(t *testing.T) {
	f := newFixture(t, 1, 1)
	owner := streamtest.NewAddress()
	receiver := streamtest.NewAddress()
	assert.Nil(t, f.shares.Issue(f.db, owner, 500))

	id, err := f.ctrl.Open(f.db, owner, receiver, 100, anyLoss)
	assert.Nil(t, err)

	gotOwner, err := f.registry.OwnerOf(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, owner, gotOwner)

	s, err := f.ledger.Stream(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, int64(100), s.Shares)
	assert.Equal(t, int64(100), s.Principal)

	balance, err := f.shares.Balance(f.db, owner)
	assert.Nil(t, err)
	assert.Equal(t, int64(400), balance)
	balance, err = f.shares.Balance(f.db, PoolAddress())
	assert.Nil(t, err)
	assert.Equal(t, int64(100), balance)

	// closing without appreciation returns every share
	sharesReturned, err := f.ctrl.Close(f.db, owner, id)
	assert.Nil(t, err)
	assert.Equal(t, int64(100), sharesReturned)

	balance, err = f.shares.Balance(f.db, owner)
	assert.Nil(t, err)
	assert.Equal(t, int64(500), balance)
	balance, err = f.shares.Balance(f.db, PoolAddress())
	assert.Nil(t, err)
	assert.Equal(t, int64(0), balance)

	_, err = f.registry.OwnerOf(f.db, id)
	assert.IsErr(t, errors.ErrNotFound, err)
	_, err = f.ledger.Stream(f.db, id)
	assert.IsErr(t, errors.ErrNotFound, err)
	acct, err := f.ledger.Account(f.db, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), acct.TotalShares)
	assert.Equal(t, int64(0), acct.TotalPrincipal)
}

func TestOpenRejects(t *testing.T) {
	f := newFixture(t, 1, 1)
	owner := streamtest.NewAddress()
	receiver := streamtest.NewAddress()

	_, err := f.ctrl.Open(f.db, owner, owner, 100, anyLoss)
	assert.IsErr(t, ErrSelfStream, err)

	_, err = f.ctrl.Open(f.db, owner, receiver, 0, anyLoss)
	assert.IsErr(t, errors.ErrAmount, err)

	// owner holds no shares
	_, err = f.ctrl.Open(f.db, owner, receiver, 100, anyLoss)
	assert.IsErr(t, errors.ErrInsufficientAmount, err)
}

func TestTopUpOwnerGated(t *testing.T) {
	f := newFixture(t, 1, 1)
	owner := streamtest.NewAddress()
	receiver := streamtest.NewAddress()
	buyer := streamtest.NewAddress()
	assert.Nil(t, f.shares.Issue(f.db, owner, 500))
	assert.Nil(t, f.shares.Issue(f.db, buyer, 500))

	id, err := f.ctrl.Open(f.db, owner, receiver, 100, anyLoss)
	assert.Nil(t, err)

	err = f.ctrl.TopUp(f.db, buyer, id, 50)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	assert.Nil(t, f.ctrl.TopUp(f.db, owner, id, 50))
	s, err := f.ledger.Stream(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, int64(150), s.Shares)
	assert.Equal(t, int64(150), s.Principal)

	// ownership transfer moves the top-up and close rights, the
	// accounting is untouched
	assert.Nil(t, f.registry.Transfer(f.db, id, owner, buyer))
	err = f.ctrl.TopUp(f.db, owner, id, 50)
	assert.IsErr(t, errors.ErrUnauthorized, err)
	assert.Nil(t, f.ctrl.TopUp(f.db, buyer, id, 50))

	_, err = f.ctrl.Close(f.db, owner, id)
	assert.IsErr(t, errors.ErrUnauthorized, err)
	sharesReturned, err := f.ctrl.Close(f.db, buyer, id)
	assert.Nil(t, err)
	assert.Equal(t, int64(200), sharesReturned)
}

func TestCloseAfterClaimConserves(t *testing.T) {
	f := newFixture(t, 1, 1)
	owner := streamtest.NewAddress()
	receiver := streamtest.NewAddress()
	assert.Nil(t, f.shares.Issue(f.db, owner, 100))

	id, err := f.ctrl.Open(f.db, owner, receiver, 100, anyLoss)
	assert.Nil(t, err)

	// shares double in value: 100 shares back 100 principal, half of
	// them is claimable yield
	f.setRate(t, 2, 1)
	got, err := f.engine.ClaimYieldInShares(f.db, receiver, receiver, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(50), got)

	sharesReturned, err := f.ctrl.Close(f.db, owner, id)
	assert.Nil(t, err)
	assert.Equal(t, int64(50), sharesReturned)

	// every share is accounted for and the pool is drained
	ownerBalance, err := f.shares.Balance(f.db, owner)
	assert.Nil(t, err)
	assert.Equal(t, int64(50), ownerBalance)
	receiverBalance, err := f.shares.Balance(f.db, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(50), receiverBalance)
	poolBalance, err := f.shares.Balance(f.db, PoolAddress())
	assert.Nil(t, err)
	assert.Equal(t, int64(0), poolBalance)
}

func TestDepositAndOpen(t *testing.T) {
	f := newFixture(t, 1, 1)
	owner := streamtest.NewAddress()
	receiver := streamtest.NewAddress()
	assert.Nil(t, f.asset.Issue(f.db, owner, 100))

	id, err := f.ctrl.DepositAndOpen(f.db, owner, receiver, 100, anyLoss)
	assert.Nil(t, err)

	balance, err := f.asset.Balance(f.db, owner)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), balance)
	balance, err = f.shares.Balance(f.db, PoolAddress())
	assert.Nil(t, err)
	assert.Equal(t, int64(100), balance)

	s, err := f.ledger.Stream(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, int64(100), s.Shares)
	assert.Equal(t, int64(100), s.Principal)
}

func TestLossTolerance(t *testing.T) {
	f := newFixture(t, 1, 1)
	owner := streamtest.NewAddress()
	receiver := streamtest.NewAddress()
	assert.Nil(t, f.shares.Issue(f.db, owner, 500))

	// the receiver aggregate is under water: 100 shares worth 100 assets
	// against 200 recorded principal
	assert.Nil(t, f.ledger.RecordOpen(f.db, streamtest.SequenceID(99), receiver, 100, 200))

	// prospective loss on a 100 principal open is 100*100/300, rounded
	// up to 34
	_, err := f.ctrl.Open(f.db, owner, receiver, 100, yieldstream.Fraction{Numerator: 0, Denominator: 1})
	assert.IsErr(t, ErrLossTolerance, err)
	_, err = f.ctrl.Open(f.db, owner, receiver, 100, yieldstream.Fraction{Numerator: 1, Denominator: 4})
	assert.IsErr(t, ErrLossTolerance, err)

	// the failed opens left no trace
	balance, err := f.shares.Balance(f.db, owner)
	assert.Nil(t, err)
	assert.Equal(t, int64(500), balance)

	// tolerating up to half the principal admits the loss
	_, err = f.ctrl.Open(f.db, owner, receiver, 100, yieldstream.Fraction{Numerator: 1, Denominator: 2})
	assert.Nil(t, err)

	// a receiver without debt opens fine at zero tolerance
	clean := streamtest.NewAddress()
	_, err = f.ctrl.Open(f.db, owner, clean, 100, yieldstream.Fraction{Numerator: 0, Denominator: 1})
	assert.Nil(t, err)
}

func TestLossToleranceSmallDebt(t *testing.T) {
	f := newFixture(t, 1, 1)
	owner := streamtest.NewAddress()
	receiver := streamtest.NewAddress()
	assert.Nil(t, f.shares.Issue(f.db, owner, 500))

	// a single unit of debt: 100 shares worth 100 assets against 101
	// recorded principal
	assert.Nil(t, f.ledger.RecordOpen(f.db, streamtest.SequenceID(99), receiver, 100, 101))

	// the prorated loss rounds up to one unit, zero tolerance rejects it
	_, err := f.ctrl.Open(f.db, owner, receiver, 100, yieldstream.Fraction{Numerator: 0, Denominator: 1})
	assert.IsErr(t, ErrLossTolerance, err)

	// one percent of the 100 principal covers the one unit loss
	_, err = f.ctrl.Open(f.db, owner, receiver, 100, yieldstream.Fraction{Numerator: 1, Denominator: 100})
	assert.Nil(t, err)
}

func TestOpenMultiple(t *testing.T) {
	f := newFixture(t, 1, 1)
	owner := streamtest.NewAddress()
	r1 := streamtest.NewAddress()
	r2 := streamtest.NewAddress()
	r3 := streamtest.NewAddress()
	assert.Nil(t, f.shares.Issue(f.db, owner, 1000))

	receivers := []yieldstream.Address{r1, r2, r3}
	ids, err := f.ctrl.OpenMultiple(f.db, owner, 100, receivers, []uint32{1, 1, 2}, anyLoss)
	assert.Nil(t, err)
	assert.Equal(t, 3, len(ids))

	want := []int64{25, 25, 50}
	for i, id := range ids {
		s, err := f.ledger.Stream(f.db, id)
		assert.Nil(t, err)
		assert.Equal(t, want[i], s.Shares)
		if !s.Receiver.Equals(receivers[i]) {
			t.Fatalf("stream %d booked to %s", i, s.Receiver)
		}
	}
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			if bytes.Equal(ids[i], ids[j]) {
				t.Fatalf("duplicate id %x", ids[i])
			}
		}
	}
	balance, err := f.shares.Balance(f.db, PoolAddress())
	assert.Nil(t, err)
	assert.Equal(t, int64(100), balance)
}

func TestOpenMultipleDust(t *testing.T) {
	f := newFixture(t, 1, 1)
	owner := streamtest.NewAddress()
	receivers := []yieldstream.Address{
		streamtest.NewAddress(),
		streamtest.NewAddress(),
		streamtest.NewAddress(),
	}
	assert.Nil(t, f.shares.Issue(f.db, owner, 100))

	// 100 does not divide by three, the last receiver absorbs the dust
	ids, err := f.ctrl.OpenMultiple(f.db, owner, 100, receivers, []uint32{1, 1, 1}, anyLoss)
	assert.Nil(t, err)

	var total int64
	want := []int64{33, 33, 34}
	for i, id := range ids {
		s, err := f.ledger.Stream(f.db, id)
		assert.Nil(t, err)
		assert.Equal(t, want[i], s.Shares)
		total += s.Shares
	}
	assert.Equal(t, int64(100), total)
}

func TestOpenMultipleRejects(t *testing.T) {
	f := newFixture(t, 1, 1)
	owner := streamtest.NewAddress()
	r1 := streamtest.NewAddress()
	r2 := streamtest.NewAddress()
	assert.Nil(t, f.shares.Issue(f.db, owner, 1000))

	_, err := f.ctrl.OpenMultiple(f.db, owner, 100, nil, nil, anyLoss)
	assert.IsErr(t, errors.ErrInput, err)

	_, err = f.ctrl.OpenMultiple(f.db, owner, 100, []yieldstream.Address{r1, r2}, []uint32{1}, anyLoss)
	assert.IsErr(t, errors.ErrInput, err)

	_, err = f.ctrl.OpenMultiple(f.db, owner, 100, []yieldstream.Address{r1, r2}, []uint32{1, 0}, anyLoss)
	assert.IsErr(t, errors.ErrAmount, err)
}

func TestOpenMultipleIsAtomic(t *testing.T) {
	f := newFixture(t, 1, 1)
	owner := streamtest.NewAddress()
	r1 := streamtest.NewAddress()
	assert.Nil(t, f.shares.Issue(f.db, owner, 1000))

	// the second open fails, the first must not stick
	receivers := []yieldstream.Address{r1, owner}
	_, err := f.ctrl.OpenMultiple(f.db, owner, 100, receivers, []uint32{1, 1}, anyLoss)
	assert.IsErr(t, ErrSelfStream, err)

	balance, err := f.shares.Balance(f.db, owner)
	assert.Nil(t, err)
	assert.Equal(t, int64(1000), balance)
	acct, err := f.ledger.Account(f.db, r1)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), acct.TotalShares)
}
