package stream

import (
	"testing"

	yieldstream "github.com/streamvault/yieldstream"
	"github.com/streamvault/yieldstream/errors"
	"github.com/streamvault/yieldstream/streamtest"
	"github.com/streamvault/yieldstream/streamtest/assert"
	"github.com/streamvault/yieldstream/x/streamtoken"
	"github.com/streamvault/yieldstream/x/token"
	"github.com/streamvault/yieldstream/x/vault"
)

type fixture struct {
	db       yieldstream.CacheableKVStore
	admin    yieldstream.Address
	asset    token.Controller
	shares   token.Controller
	vault    vault.RateVault
	registry streamtoken.Registry
	ledger   *Ledger
	engine   *Engine
	ctrl     *Controller
}

func newFixture(t *testing.T, num, den uint32) *fixture {
	t.Helper()
	db := streamtest.Store()
	admin := streamtest.NewAddress()
	conf := &vault.Config{
		Metadata: &yieldstream.Metadata{Schema: 1},
		Admin:    admin,
		Rate:     &yieldstream.Fraction{Numerator: num, Denominator: den},
	}
	assert.Nil(t, vault.Configure(db, conf))

	asset := token.NewController("asset")
	shares := token.NewController("share")
	v := vault.NewRateVault(asset, shares)
	registry := streamtoken.NewRegistry()
	ledger := NewLedger()
	return &fixture{
		db:       db,
		admin:    admin,
		asset:    asset,
		shares:   shares,
		vault:    v,
		registry: registry,
		ledger:   ledger,
		engine:   NewEngine(ledger, v, shares),
		ctrl:     NewController(ledger, registry, v, shares),
	}
}

func (f *fixture) setRate(t *testing.T, num, den uint32) {
	t.Helper()
	assert.Nil(t, vault.SetRate(f.db, f.admin, yieldstream.Fraction{Numerator: num, Denominator: den}))
}

// anyLoss accepts any socialized loss, for tests not about the tolerance.
var anyLoss = yieldstream.Fraction{Numerator: 1, Denominator: 1}

func TestYieldAccruesWithRate(t *testing.T) {
	f := newFixture(t, 1, 1)
	owner := streamtest.NewAddress()
	receiver := streamtest.NewAddress()
	assert.Nil(t, f.shares.Issue(f.db, owner, 1000))

	_, err := f.ctrl.Open(f.db, owner, receiver, 100, anyLoss)
	assert.Nil(t, err)

	// no appreciation yet, nothing to claim
	yShares, err := f.engine.PreviewClaimYieldInShares(f.db, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), yShares)
	_, err = f.engine.ClaimYieldInShares(f.db, receiver, receiver, receiver)
	assert.IsErr(t, ErrNoYield, err)

	// 10% appreciation: 100 shares are worth 110, 10 above the principal
	f.setRate(t, 11, 10)

	yShares, err = f.engine.PreviewClaimYieldInShares(f.db, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(9), yShares) // 10 assets * 10/11 floored

	yAssets, err := f.engine.PreviewClaimYield(f.db, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(9), yAssets)

	got, err := f.engine.ClaimYieldInShares(f.db, receiver, receiver, receiver)
	assert.Nil(t, err)
	assert.Equal(t, yShares, got)

	balance, err := f.shares.Balance(f.db, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(9), balance)
	balance, err = f.shares.Balance(f.db, PoolAddress())
	assert.Nil(t, err)
	assert.Equal(t, int64(91), balance)

	acct, err := f.ledger.Account(f.db, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(91), acct.TotalShares)
	assert.Equal(t, int64(100), acct.TotalPrincipal)

	// the claim drained the surplus
	_, err = f.engine.ClaimYieldInShares(f.db, receiver, receiver, receiver)
	assert.IsErr(t, ErrNoYield, err)
}

func TestClaimYieldRedeemsThroughVault(t *testing.T) {
	f := newFixture(t, 1, 1)
	alice := streamtest.NewAddress()
	bob := streamtest.NewAddress()
	assert.Nil(t, f.asset.Issue(f.db, alice, 1000))

	// 100 assets in, 100 shares streamed to bob
	_, err := f.ctrl.DepositAndOpen(f.db, alice, bob, 100, anyLoss)
	assert.Nil(t, err)

	f.setRate(t, 11, 10)

	// 10 assets of yield accrued; the share round trip pays 9, one base
	// unit is lost to flooring and stays in the vault
	assets, err := f.engine.ClaimYield(f.db, bob, bob, bob)
	assert.Nil(t, err)
	assert.Equal(t, int64(9), assets)

	balance, err := f.asset.Balance(f.db, bob)
	assert.Nil(t, err)
	assert.Equal(t, int64(9), balance)
	balance, err = f.asset.Balance(f.db, vault.Address())
	assert.Nil(t, err)
	assert.Equal(t, int64(91), balance)
}

func TestClaimAuthorization(t *testing.T) {
	f := newFixture(t, 1, 1)
	owner := streamtest.NewAddress()
	receiver := streamtest.NewAddress()
	stranger := streamtest.NewAddress()
	assert.Nil(t, f.shares.Issue(f.db, owner, 1000))
	_, err := f.ctrl.Open(f.db, owner, receiver, 100, anyLoss)
	assert.Nil(t, err)
	f.setRate(t, 2, 1)

	_, err = f.engine.ClaimYieldInShares(f.db, stranger, receiver, stranger)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	err = f.engine.ApproveClaimer(f.db, receiver, nil)
	assert.IsErr(t, errors.ErrInput, err)

	assert.Nil(t, f.engine.ApproveClaimer(f.db, receiver, stranger))
	ok, err := f.engine.IsApprovedClaimer(f.db, receiver, stranger)
	assert.Nil(t, err)
	assert.Equal(t, true, ok)

	got, err := f.engine.ClaimYieldInShares(f.db, stranger, receiver, stranger)
	assert.Nil(t, err)
	assert.Equal(t, int64(50), got)
	balance, err := f.shares.Balance(f.db, stranger)
	assert.Nil(t, err)
	assert.Equal(t, int64(50), balance)

	assert.Nil(t, f.engine.RevokeClaimer(f.db, receiver, stranger))
	// revoking again is a no-op
	assert.Nil(t, f.engine.RevokeClaimer(f.db, receiver, stranger))

	f.setRate(t, 3, 1)
	_, err = f.engine.ClaimYieldInShares(f.db, stranger, receiver, stranger)
	assert.IsErr(t, errors.ErrUnauthorized, err)
}

func TestFailedClaimLeavesLedgerUntouched(t *testing.T) {
	f := newFixture(t, 1, 1)
	receiver := streamtest.NewAddress()

	// the aggregate is booked without funding the pool, so the share
	// move inside the claim must fail
	assert.Nil(t, f.ledger.RecordOpen(f.db, streamtest.SequenceID(99), receiver, 100, 90))

	_, err := f.engine.ClaimYieldInShares(f.db, receiver, receiver, receiver)
	assert.IsErr(t, errors.ErrInsufficientAmount, err)

	acct, err := f.ledger.Account(f.db, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(100), acct.TotalShares)
	assert.Equal(t, int64(90), acct.TotalPrincipal)
}

func TestClaimYieldWorthlessShares(t *testing.T) {
	f := newFixture(t, 2, 3)
	owner := streamtest.NewAddress()
	receiver := streamtest.NewAddress()
	assert.Nil(t, f.shares.Issue(f.db, owner, 100))
	_, err := f.ctrl.Open(f.db, owner, receiver, 100, anyLoss)
	assert.Nil(t, err)

	// a sliver of appreciation: one share of yield worth zero assets
	f.setRate(t, 67, 100)

	_, err = f.engine.ClaimYield(f.db, receiver, receiver, receiver)
	assert.IsErr(t, ErrNoYield, err)

	// the refused claim left the aggregate alone
	acct, err := f.ledger.Account(f.db, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(100), acct.TotalShares)

	// the share denominated claim still pays out the single share
	got, err := f.engine.ClaimYieldInShares(f.db, receiver, receiver, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), got)
}

func TestYieldAndDebtNeverNegative(t *testing.T) {
	f := newFixture(t, 1, 1)
	receiver := streamtest.NewAddress()

	// book a stream under water: 100 shares are worth 100 assets but the
	// recorded principal is 200
	assert.Nil(t, f.ledger.RecordOpen(f.db, streamtest.SequenceID(99), receiver, 100, 200))

	y, err := f.engine.YieldFor(f.db, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), y)
	d, err := f.engine.DebtFor(f.db, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(100), d)

	_, err = f.engine.ClaimYieldInShares(f.db, receiver, receiver, receiver)
	assert.IsErr(t, ErrNoYield, err)

	// appreciation pays the debt down first
	f.setRate(t, 3, 2)
	d, err = f.engine.DebtFor(f.db, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(50), d)
	y, err = f.engine.YieldFor(f.db, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), y)

	f.setRate(t, 3, 1)
	y, err = f.engine.YieldFor(f.db, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(100), y)
	d, err = f.engine.DebtFor(f.db, receiver)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), d)
}
