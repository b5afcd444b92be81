package stream

import (
	yieldstream "github.com/streamvault/yieldstream"
	"github.com/streamvault/yieldstream/errors"
	"github.com/streamvault/yieldstream/x/token"
	"github.com/streamvault/yieldstream/x/vault"
)

var poolCondition = yieldstream.NewCondition("stream", "pool", []byte("shares"))

// PoolAddress is the module account holding the shares of all open
// streams.
func PoolAddress() yieldstream.Address {
	return poolCondition.Address()
}

// Engine derives claimable yield from the receiver aggregates and moves
// it out of the pool.
type Engine struct {
	ledger    *Ledger
	approvals ApprovalBucket
	vault     vault.Vault
	shares    token.Controller
}

// NewEngine returns an engine claiming through the given vault and share
// ledger.
func NewEngine(ledger *Ledger, v vault.Vault, shares token.Controller) *Engine {
	return &Engine{
		ledger:    ledger,
		approvals: NewApprovalBucket(),
		vault:     v,
		shares:    shares,
	}
}

// PreviewClaimYieldInShares returns the shares a receiver could claim
// right now. That is the share equivalent of the asset value of the
// aggregate above its principal, floored.
func (e *Engine) PreviewClaimYieldInShares(db yieldstream.ReadOnlyKVStore, receiver yieldstream.Address) (int64, error) {
	acct, err := e.ledger.Account(db, receiver)
	if err != nil {
		return 0, err
	}
	if acct.TotalShares == 0 {
		return 0, nil
	}
	value, err := e.vault.ConvertToAssets(db, acct.TotalShares)
	if err != nil {
		return 0, err
	}
	if value <= acct.TotalPrincipal {
		return 0, nil
	}
	return e.vault.ConvertToShares(db, value-acct.TotalPrincipal)
}

// PreviewClaimYield returns the asset value of the claimable yield,
// floored.
func (e *Engine) PreviewClaimYield(db yieldstream.ReadOnlyKVStore, receiver yieldstream.Address) (int64, error) {
	yShares, err := e.PreviewClaimYieldInShares(db, receiver)
	if err != nil {
		return 0, err
	}
	if yShares == 0 {
		return 0, nil
	}
	return e.vault.ConvertToAssets(db, yShares)
}

// ClaimYieldInShares moves the claimable yield shares from the pool to
// sendTo. The claimer must be the receiver or an approved claimer.
func (e *Engine) ClaimYieldInShares(db yieldstream.KVStore, claimer, receiver, sendTo yieldstream.Address) (yShares int64, err error) {
	err = atomic(db, func(kv yieldstream.KVStore) error {
		if err := e.authorize(kv, claimer, receiver); err != nil {
			return err
		}
		yShares, err = e.PreviewClaimYieldInShares(kv, receiver)
		if err != nil {
			return err
		}
		if yShares == 0 {
			return errors.Wrapf(ErrNoYield, "receiver %s", receiver)
		}
		if err := e.ledger.RecordYieldDebit(kv, receiver, yShares); err != nil {
			return err
		}
		if err := e.shares.Move(kv, PoolAddress(), sendTo, yShares); err != nil {
			return errors.Wrap(err, "move shares")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return yShares, nil
}

// ClaimYield claims the yield shares and redeems them through the vault,
// sending the resulting assets to sendTo. It returns the asset amount.
// A claim whose asset value floors to zero fails with ErrNoYield, in line
// with PreviewClaimYield reporting nothing to claim.
func (e *Engine) ClaimYield(db yieldstream.KVStore, claimer, receiver, sendTo yieldstream.Address) (assets int64, err error) {
	err = atomic(db, func(kv yieldstream.KVStore) error {
		if err := e.authorize(kv, claimer, receiver); err != nil {
			return err
		}
		yShares, err := e.PreviewClaimYieldInShares(kv, receiver)
		if err != nil {
			return err
		}
		if yShares == 0 {
			return errors.Wrapf(ErrNoYield, "receiver %s", receiver)
		}
		value, err := e.vault.ConvertToAssets(kv, yShares)
		if err != nil {
			return err
		}
		if value == 0 {
			return errors.Wrapf(ErrNoYield, "%d yield shares redeem to no assets", yShares)
		}
		if err := e.ledger.RecordYieldDebit(kv, receiver, yShares); err != nil {
			return err
		}
		assets, err = e.vault.Redeem(kv, yShares, PoolAddress(), sendTo)
		if err != nil {
			return errors.Wrap(err, "redeem")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return assets, nil
}

// ApproveClaimer allows the claimer to claim yield on behalf of the
// receiver.
func (e *Engine) ApproveClaimer(db yieldstream.KVStore, receiver, claimer yieldstream.Address) error {
	if err := claimer.Validate(); err != nil {
		return errors.Wrap(err, "claimer")
	}
	return atomic(db, func(kv yieldstream.KVStore) error {
		return e.approvals.Grant(kv, receiver, claimer)
	})
}

// RevokeClaimer withdraws an approval. Revoking a claimer that was never
// approved is a no-op.
func (e *Engine) RevokeClaimer(db yieldstream.KVStore, receiver, claimer yieldstream.Address) error {
	return atomic(db, func(kv yieldstream.KVStore) error {
		return e.approvals.Revoke(kv, receiver, claimer)
	})
}

// IsApprovedClaimer returns true when the claimer may claim on behalf of
// the receiver.
func (e *Engine) IsApprovedClaimer(db yieldstream.ReadOnlyKVStore, receiver, claimer yieldstream.Address) (bool, error) {
	return e.approvals.Has(db, receiver, claimer)
}

func (e *Engine) authorize(db yieldstream.ReadOnlyKVStore, claimer, receiver yieldstream.Address) error {
	if claimer.Equals(receiver) {
		return nil
	}
	ok, err := e.approvals.Has(db, receiver, claimer)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrUnauthorized, "%s cannot claim for %s", claimer, receiver)
	}
	return nil
}

// YieldFor returns the current yield of a receiver in asset units. A
// receiver below water reports zero.
func (e *Engine) YieldFor(db yieldstream.ReadOnlyKVStore, receiver yieldstream.Address) (int64, error) {
	acct, err := e.ledger.Account(db, receiver)
	if err != nil {
		return 0, err
	}
	value, err := e.vault.ConvertToAssets(db, acct.TotalShares)
	if err != nil {
		return 0, err
	}
	if value <= acct.TotalPrincipal {
		return 0, nil
	}
	return value - acct.TotalPrincipal, nil
}

// DebtFor returns how far the asset value of the aggregate is below its
// principal. A receiver with yield reports zero.
func (e *Engine) DebtFor(db yieldstream.ReadOnlyKVStore, receiver yieldstream.Address) (int64, error) {
	acct, err := e.ledger.Account(db, receiver)
	if err != nil {
		return 0, err
	}
	value, err := e.vault.ConvertToAssets(db, acct.TotalShares)
	if err != nil {
		return 0, err
	}
	if value >= acct.TotalPrincipal {
		return 0, nil
	}
	return acct.TotalPrincipal - value, nil
}
