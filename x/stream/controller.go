package stream

import (
	"math/big"

	yieldstream "github.com/streamvault/yieldstream"
	"github.com/streamvault/yieldstream/errors"
	"github.com/streamvault/yieldstream/store"
	"github.com/streamvault/yieldstream/x/streamtoken"
	"github.com/streamvault/yieldstream/x/token"
	"github.com/streamvault/yieldstream/x/vault"
)

// Controller orchestrates stream lifecycle against the ownership
// registry. It is the only caller of the vault conversions and holds the
// loss tolerance check.
type Controller struct {
	ledger   *Ledger
	registry streamtoken.Registry
	vault    vault.Vault
	shares   token.Controller
}

// NewController wires the lifecycle orchestration.
func NewController(ledger *Ledger, registry streamtoken.Registry, v vault.Vault, shares token.Controller) *Controller {
	return &Controller{
		ledger:   ledger,
		registry: registry,
		vault:    v,
		shares:   shares,
	}
}

// Open pulls shares from the owner into the pool and books a stream to
// the receiver. The principal is the asset value of the shares at the
// current rate. If the receiver aggregate carries debt, the share of that
// debt socialized onto the new principal must stay within maxLoss or the
// operation fails with ErrLossTolerance.
func (c *Controller) Open(db yieldstream.KVStore, owner, receiver yieldstream.Address, shares int64, maxLoss yieldstream.Fraction) (id []byte, err error) {
	err = atomic(db, func(kv yieldstream.KVStore) error {
		id, err = c.open(kv, owner, receiver, shares, maxLoss)
		return err
	})
	if err != nil {
		return nil, err
	}
	return id, nil
}

// DepositAndOpen deposits assets into the vault and opens a stream with
// the resulting shares in one atomic step.
func (c *Controller) DepositAndOpen(db yieldstream.KVStore, owner, receiver yieldstream.Address, assets int64, maxLoss yieldstream.Fraction) (id []byte, err error) {
	err = atomic(db, func(kv yieldstream.KVStore) error {
		shares, err := c.vault.Deposit(kv, assets, owner, owner)
		if err != nil {
			return errors.Wrap(err, "deposit")
		}
		id, err = c.open(kv, owner, receiver, shares, maxLoss)
		return err
	})
	if err != nil {
		return nil, err
	}
	return id, nil
}

// OpenMultiple splits shares over several receivers pro rata by weight
// and opens one stream per receiver. Weights are relative and the last
// receiver absorbs the rounding remainder, so exactly the given share
// amount is allocated. Any single failed open fails the whole batch.
func (c *Controller) OpenMultiple(db yieldstream.KVStore, owner yieldstream.Address, shares int64, receivers []yieldstream.Address, weights []uint32, maxLoss yieldstream.Fraction) (ids [][]byte, err error) {
	if len(receivers) == 0 {
		return nil, errors.Wrap(errors.ErrInput, "no receivers")
	}
	if len(receivers) != len(weights) {
		return nil, errors.Wrapf(errors.ErrInput, "%d receivers but %d weights", len(receivers), len(weights))
	}
	var totalWeight int64
	for _, w := range weights {
		if w == 0 {
			return nil, errors.Wrap(errors.ErrAmount, "zero weight")
		}
		totalWeight += int64(w)
	}
	err = atomic(db, func(kv yieldstream.KVStore) error {
		ids = make([][]byte, len(receivers))
		rest := shares
		for i, receiver := range receivers {
			alloc := rest
			if i < len(receivers)-1 {
				var err error
				alloc, err = mulDiv64(shares, int64(weights[i]), totalWeight)
				if err != nil {
					return err
				}
			}
			id, err := c.open(kv, owner, receiver, alloc, maxLoss)
			if err != nil {
				return errors.Wrapf(err, "receiver %s", receiver)
			}
			ids[i] = id
			rest -= alloc
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// TopUp pulls additional shares from the caller into the pool and adds
// them to an existing stream. Only the registry owner of the id may top
// up.
func (c *Controller) TopUp(db yieldstream.KVStore, caller yieldstream.Address, id []byte, shares int64) error {
	return atomic(db, func(kv yieldstream.KVStore) error {
		owner, err := c.registry.OwnerOf(kv, id)
		if err != nil {
			return err
		}
		if !owner.Equals(caller) {
			return errors.Wrap(errors.ErrUnauthorized, "not the stream owner")
		}
		principal, err := c.vault.ConvertToAssets(kv, shares)
		if err != nil {
			return err
		}
		if err := c.shares.Move(kv, caller, PoolAddress(), shares); err != nil {
			return errors.Wrap(err, "pull shares")
		}
		return c.ledger.RecordTopUp(kv, id, shares, principal)
	})
}

// Close removes a stream, burns its registry id and returns the shares
// backing the principal to the caller. Only the registry owner may close.
// Any yield surplus stays with the receiver.
func (c *Controller) Close(db yieldstream.KVStore, caller yieldstream.Address, id []byte) (sharesReturned int64, err error) {
	err = atomic(db, func(kv yieldstream.KVStore) error {
		owner, err := c.registry.OwnerOf(kv, id)
		if err != nil {
			return err
		}
		if !owner.Equals(caller) {
			return errors.Wrap(errors.ErrUnauthorized, "not the stream owner")
		}
		sharesReturned, _, err = c.ledger.RecordClose(kv, id)
		if err != nil {
			return err
		}
		if err := c.registry.Burn(kv, id); err != nil {
			return errors.Wrap(err, "burn id")
		}
		if sharesReturned > 0 {
			if err := c.shares.Move(kv, PoolAddress(), caller, sharesReturned); err != nil {
				return errors.Wrap(err, "return shares")
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return sharesReturned, nil
}

func (c *Controller) open(db yieldstream.KVStore, owner, receiver yieldstream.Address, shares int64, maxLoss yieldstream.Fraction) ([]byte, error) {
	if owner.Equals(receiver) {
		return nil, errors.Wrapf(ErrSelfStream, "owner %s", owner)
	}
	if shares <= 0 {
		return nil, errors.Wrap(errors.ErrAmount, "shares must be positive")
	}
	if err := maxLoss.Validate(); err != nil {
		return nil, errors.Wrap(err, "loss tolerance")
	}
	principal, err := c.vault.ConvertToAssets(db, shares)
	if err != nil {
		return nil, err
	}
	if err := c.checkLossTolerance(db, receiver, principal, maxLoss); err != nil {
		return nil, err
	}
	if err := c.shares.Move(db, owner, PoolAddress(), shares); err != nil {
		return nil, errors.Wrap(err, "pull shares")
	}
	id, err := c.registry.Mint(db, owner)
	if err != nil {
		return nil, errors.Wrap(err, "mint id")
	}
	if err := c.ledger.RecordOpen(db, id, receiver, shares, principal); err != nil {
		return nil, err
	}
	return id, nil
}

// checkLossTolerance bounds the existing receiver debt that would be
// socialized onto the new principal: the prospective loss is the debt
// prorated over the grown aggregate, rounded up so a small debt cannot
// vanish in the division, and loss/principal must not exceed maxLoss.
func (c *Controller) checkLossTolerance(db yieldstream.ReadOnlyKVStore, receiver yieldstream.Address, principal int64, maxLoss yieldstream.Fraction) error {
	if principal == 0 {
		return nil
	}
	acct, err := c.ledger.Account(db, receiver)
	if err != nil {
		return err
	}
	value, err := c.vault.ConvertToAssets(db, acct.TotalShares)
	if err != nil {
		return err
	}
	debt := acct.TotalPrincipal - value
	if debt <= 0 {
		return nil
	}
	grown, err := add64(acct.TotalPrincipal, principal)
	if err != nil {
		return err
	}
	loss, err := mulDivCeil64(debt, principal, grown)
	if err != nil {
		return err
	}
	den := int64(maxLoss.Denominator)
	if den == 0 {
		den = 1
	}
	lhs := new(big.Int).Mul(big.NewInt(loss), big.NewInt(den))
	rhs := new(big.Int).Mul(big.NewInt(principal), big.NewInt(int64(maxLoss.Numerator)))
	if lhs.Cmp(rhs) > 0 {
		return errors.Wrapf(ErrLossTolerance, "prospective loss %d on principal %d exceeds %s", loss, principal, &maxLoss)
	}
	return nil
}

// atomic runs fn inside a savepoint when the store supports cache
// wrapping, so a failed operation leaves no partial mutation.
func atomic(db yieldstream.KVStore, fn func(yieldstream.KVStore) error) error {
	if cache, ok := db.(yieldstream.CacheableKVStore); ok {
		return store.WithSavepoint(cache, fn)
	}
	return fn(db)
}
