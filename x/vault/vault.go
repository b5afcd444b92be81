package vault

import (
	"math/big"

	yieldstream "github.com/streamvault/yieldstream"
	"github.com/streamvault/yieldstream/errors"
	"github.com/streamvault/yieldstream/gconf"
	"github.com/streamvault/yieldstream/x/token"
)

const (
	// configPkg is the gconf namespace the configuration is stored under.
	configPkg = "vault"
)

// vaultCondition guards the asset pool of the reference vault.
var vaultCondition = yieldstream.NewCondition("vault", "pool", []byte("rate"))

// Vault converts between asset and share amounts and executes deposits
// and redemptions. This is the only pricing surface the stream engine
// consumes.
type Vault interface {
	// ConvertToShares returns how many shares the given asset amount
	// buys at the current price.
	ConvertToShares(db yieldstream.ReadOnlyKVStore, assets int64) (int64, error)

	// ConvertToAssets returns the asset value of the given share amount
	// at the current price.
	ConvertToAssets(db yieldstream.ReadOnlyKVStore, shares int64) (int64, error)

	// Deposit pulls assets from the from account and issues the
	// corresponding shares to the to account.
	Deposit(db yieldstream.KVStore, assets int64, from, to yieldstream.Address) (int64, error)

	// Redeem burns shares held by owner and pays the corresponding
	// assets to the to account.
	Redeem(db yieldstream.KVStore, shares int64, owner, to yieldstream.Address) (int64, error)

	// ShareBalance returns how many shares the address holds.
	ShareBalance(db yieldstream.ReadOnlyKVStore, addr yieldstream.Address) (int64, error)
}

// RateVault prices shares by a configured exchange rate:
// assets = shares * rate. The rate may only grow.
type RateVault struct {
	assets token.Controller
	shares token.Controller
}

var _ Vault = RateVault{}

// NewRateVault returns a vault wiring the given asset and share ledgers.
func NewRateVault(assets, shares token.Controller) RateVault {
	return RateVault{
		assets: assets,
		shares: shares,
	}
}

// Address returns the address holding the vault asset pool.
func Address() yieldstream.Address {
	return vaultCondition.Address()
}

// Configure writes the vault configuration. It fails if the
// configuration does not validate.
func Configure(db yieldstream.KVStore, conf *Config) error {
	return gconf.Save(db, configPkg, conf)
}

// loadConf returns the current configuration.
func loadConf(db gconf.ReadStore) (*Config, error) {
	var conf Config
	if err := gconf.Load(db, configPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}

// SetRate updates the exchange rate. Only the configured admin may do
// this and the new rate must not be lower than the current one, so the
// asset value of a share never declines.
func SetRate(db yieldstream.KVStore, admin yieldstream.Address, rate yieldstream.Fraction) error {
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	if !conf.Admin.Equals(admin) {
		return errors.Wrap(errors.ErrUnauthorized, "not the vault admin")
	}
	if err := rate.Validate(); err != nil {
		return errors.Wrap(err, "rate")
	}
	if rate.Numerator == 0 || rate.Denominator == 0 {
		return errors.Wrap(errors.ErrAmount, "rate must be positive")
	}
	if rate.Compare(*conf.Rate) < 0 {
		return errors.Wrapf(errors.ErrState, "rate cannot decrease: %s -> %s", conf.Rate, &rate)
	}
	conf.Rate = &rate
	return Configure(db, conf)
}

// Rate returns the current exchange rate.
func Rate(db yieldstream.ReadOnlyKVStore) (yieldstream.Fraction, error) {
	conf, err := loadConf(db)
	if err != nil {
		return yieldstream.Fraction{}, err
	}
	return *conf.Rate, nil
}

// ConvertToShares floors assets * denominator / numerator.
func (v RateVault) ConvertToShares(db yieldstream.ReadOnlyKVStore, assets int64) (int64, error) {
	if assets < 0 {
		return 0, errors.Wrapf(errors.ErrAmount, "negative: %d", assets)
	}
	conf, err := loadConf(db)
	if err != nil {
		return 0, err
	}
	return mulDiv(assets, conf.Rate.Denominator, conf.Rate.Numerator)
}

// ConvertToAssets floors shares * numerator / denominator.
func (v RateVault) ConvertToAssets(db yieldstream.ReadOnlyKVStore, shares int64) (int64, error) {
	if shares < 0 {
		return 0, errors.Wrapf(errors.ErrAmount, "negative: %d", shares)
	}
	conf, err := loadConf(db)
	if err != nil {
		return 0, err
	}
	return mulDiv(shares, conf.Rate.Numerator, conf.Rate.Denominator)
}

// Deposit pulls assets into the vault pool and issues shares to the
// receiving account.
func (v RateVault) Deposit(db yieldstream.KVStore, assets int64, from, to yieldstream.Address) (int64, error) {
	shares, err := v.ConvertToShares(db, assets)
	if err != nil {
		return 0, err
	}
	if shares == 0 {
		return 0, errors.Wrapf(errors.ErrAmount, "deposit of %d buys no shares", assets)
	}
	if err := v.assets.Move(db, from, Address(), assets); err != nil {
		return 0, errors.Wrap(err, "pull assets")
	}
	if err := v.shares.Issue(db, to, shares); err != nil {
		return 0, errors.Wrap(err, "issue shares")
	}
	return shares, nil
}

// Redeem burns shares and pays assets out of the vault pool.
func (v RateVault) Redeem(db yieldstream.KVStore, shares int64, owner, to yieldstream.Address) (int64, error) {
	assets, err := v.ConvertToAssets(db, shares)
	if err != nil {
		return 0, err
	}
	if assets == 0 {
		return 0, errors.Wrapf(errors.ErrAmount, "redemption of %d shares pays no assets", shares)
	}
	if err := v.shares.Burn(db, owner, shares); err != nil {
		return 0, errors.Wrap(err, "burn shares")
	}
	if err := v.assets.Move(db, Address(), to, assets); err != nil {
		return 0, errors.Wrap(err, "pay assets")
	}
	return assets, nil
}

// ShareBalance returns the share holdings of the given address.
func (v RateVault) ShareBalance(db yieldstream.ReadOnlyKVStore, addr yieldstream.Address) (int64, error) {
	return v.shares.Balance(db, addr)
}

// mulDiv computes a * num / den with a 128-bit intermediate product,
// flooring the result.
func mulDiv(a int64, num, den uint32) (int64, error) {
	if den == 0 {
		return 0, errors.Wrap(errors.ErrState, "zero division")
	}
	res := new(big.Int).Mul(big.NewInt(a), big.NewInt(int64(num)))
	res.Quo(res, big.NewInt(int64(den)))
	if !res.IsInt64() {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d * %d / %d", a, num, den)
	}
	return res.Int64(), nil
}
