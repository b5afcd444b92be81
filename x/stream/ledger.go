package stream

import (
	"math/big"

	yieldstream "github.com/streamvault/yieldstream"
	"github.com/streamvault/yieldstream/errors"
)

// Ledger is the sole mutator of the stream and receiver account tables.
// It maintains the booking invariant that the receiver aggregates are
// always the sum over the open streams pointing at that receiver.
type Ledger struct {
	streams  StreamBucket
	accounts AccountBucket
}

// NewLedger returns a ledger over the default buckets.
func NewLedger() *Ledger {
	return &Ledger{
		streams:  NewStreamBucket(),
		accounts: NewAccountBucket(),
	}
}

// Stream returns the stream stored under the id.
func (l *Ledger) Stream(db yieldstream.ReadOnlyKVStore, id []byte) (*Stream, error) {
	s, err := l.streams.Get(db, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "stream %x", id)
	}
	return s, nil
}

// Account returns the aggregate of a receiver. A receiver with no open
// streams has a zero aggregate.
func (l *Ledger) Account(db yieldstream.ReadOnlyKVStore, receiver yieldstream.Address) (*ReceiverAccount, error) {
	return l.accounts.GetOrCreate(db, receiver)
}

// RecordOpen books a new stream of the given shares and principal under
// the id and adds both to the receiver aggregate.
func (l *Ledger) RecordOpen(db yieldstream.KVStore, id []byte, receiver yieldstream.Address, shares, principal int64) error {
	if shares <= 0 {
		return errors.Wrap(errors.ErrAmount, "shares must be positive")
	}
	if principal < 0 {
		return errors.Wrap(errors.ErrAmount, "negative principal")
	}
	if err := receiver.Validate(); err != nil {
		return errors.Wrap(err, "receiver")
	}
	switch existing, err := l.streams.Get(db, id); {
	case err != nil:
		return err
	case existing != nil:
		return errors.Wrapf(errors.ErrDuplicate, "stream %x", id)
	}
	s := &Stream{
		Metadata:  &yieldstream.Metadata{Schema: 1},
		Receiver:  receiver,
		Shares:    shares,
		Principal: principal,
	}
	if err := l.streams.Save(db, id, s); err != nil {
		return errors.Wrap(err, "save stream")
	}
	acct, err := l.accounts.GetOrCreate(db, receiver)
	if err != nil {
		return err
	}
	if acct.TotalShares, err = add64(acct.TotalShares, shares); err != nil {
		return errors.Wrap(err, "total shares")
	}
	if acct.TotalPrincipal, err = add64(acct.TotalPrincipal, principal); err != nil {
		return errors.Wrap(err, "total principal")
	}
	return l.accounts.Save(db, receiver, acct)
}

// RecordTopUp adds shares and principal to an existing stream and to its
// receiver aggregate.
func (l *Ledger) RecordTopUp(db yieldstream.KVStore, id []byte, shares, principal int64) error {
	if shares <= 0 {
		return errors.Wrap(errors.ErrAmount, "shares must be positive")
	}
	if principal < 0 {
		return errors.Wrap(errors.ErrAmount, "negative principal")
	}
	s, err := l.Stream(db, id)
	if err != nil {
		return err
	}
	if s.Shares, err = add64(s.Shares, shares); err != nil {
		return errors.Wrap(err, "shares")
	}
	if s.Principal, err = add64(s.Principal, principal); err != nil {
		return errors.Wrap(err, "principal")
	}
	if err := l.streams.Save(db, id, s); err != nil {
		return errors.Wrap(err, "save stream")
	}
	acct, err := l.accounts.GetOrCreate(db, s.Receiver)
	if err != nil {
		return err
	}
	if acct.TotalShares, err = add64(acct.TotalShares, shares); err != nil {
		return errors.Wrap(err, "total shares")
	}
	if acct.TotalPrincipal, err = add64(acct.TotalPrincipal, principal); err != nil {
		return errors.Wrap(err, "total principal")
	}
	return l.accounts.Save(db, s.Receiver, acct)
}

// RecordClose removes a stream and its contribution from the receiver
// aggregate. It returns the shares backing the stream principal at the
// current aggregate ratio, floored, and the stream principal itself. Any
// share surplus above the returned amount stays with the receiver as
// unclaimed yield.
func (l *Ledger) RecordClose(db yieldstream.KVStore, id []byte) (sharesOut int64, principalOut int64, err error) {
	s, err := l.Stream(db, id)
	if err != nil {
		return 0, 0, err
	}
	acct, err := l.accounts.GetOrCreate(db, s.Receiver)
	if err != nil {
		return 0, 0, err
	}
	// The principal share of the pooled shares, floored. With yield
	// accrued TotalShares backs more than TotalPrincipal, so the owner
	// leaves the surplus behind.
	if acct.TotalPrincipal > 0 {
		sharesOut, err = mulDiv64(s.Principal, acct.TotalShares, acct.TotalPrincipal)
		if err != nil {
			return 0, 0, err
		}
	}
	if sharesOut > acct.TotalShares {
		sharesOut = acct.TotalShares
	}
	if err := l.streams.Delete(db, id); err != nil {
		return 0, 0, errors.Wrap(err, "delete stream")
	}
	acct.TotalShares -= sharesOut
	acct.TotalPrincipal -= s.Principal
	if acct.TotalPrincipal < 0 {
		return 0, 0, errors.Wrap(errors.ErrState, "total principal underflow")
	}
	if err := l.accounts.Save(db, s.Receiver, acct); err != nil {
		return 0, 0, err
	}
	return sharesOut, s.Principal, nil
}

// RecordYieldDebit removes claimed yield shares from the receiver
// aggregate without touching the principal.
func (l *Ledger) RecordYieldDebit(db yieldstream.KVStore, receiver yieldstream.Address, shares int64) error {
	if shares <= 0 {
		return errors.Wrap(errors.ErrAmount, "shares must be positive")
	}
	acct, err := l.accounts.GetOrCreate(db, receiver)
	if err != nil {
		return err
	}
	if acct.TotalShares < shares {
		return errors.Wrapf(errors.ErrInsufficientAmount, "only %d shares booked", acct.TotalShares)
	}
	acct.TotalShares -= shares
	return l.accounts.Save(db, receiver, acct)
}

// add64 returns a+b or ErrOverflow.
func add64(a, b int64) (int64, error) {
	if b > 0 && a > maxInt64-b {
		return 0, errors.Wrap(errors.ErrOverflow, "int64 addition")
	}
	if b < 0 && a < minInt64-b {
		return 0, errors.Wrap(errors.ErrOverflow, "int64 addition")
	}
	return a + b, nil
}

const (
	maxInt64 = int64(^uint64(0) >> 1)
	minInt64 = -maxInt64 - 1
)

// mulDiv64 returns a*b/c floored, computed without intermediate overflow.
func mulDiv64(a, b, c int64) (int64, error) {
	if c == 0 {
		return 0, errors.Wrap(errors.ErrAmount, "division by zero")
	}
	res := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	res.Quo(res, big.NewInt(c))
	if !res.IsInt64() {
		return 0, errors.Wrap(errors.ErrOverflow, "int64 multiplication")
	}
	return res.Int64(), nil
}

// mulDivCeil64 returns a*b/c rounded up, computed without intermediate
// overflow. All arguments must be non-negative.
func mulDivCeil64(a, b, c int64) (int64, error) {
	if c == 0 {
		return 0, errors.Wrap(errors.ErrAmount, "division by zero")
	}
	res, rem := new(big.Int).QuoRem(
		new(big.Int).Mul(big.NewInt(a), big.NewInt(b)),
		big.NewInt(c),
		new(big.Int),
	)
	if rem.Sign() != 0 {
		res.Add(res, big.NewInt(1))
	}
	if !res.IsInt64() {
		return 0, errors.Wrap(errors.ErrOverflow, "int64 multiplication")
	}
	return res.Int64(), nil
}
