package vault

import (
	"testing"

	yieldstream "github.com/streamvault/yieldstream"
	"github.com/streamvault/yieldstream/errors"
	"github.com/streamvault/yieldstream/streamtest"
	"github.com/streamvault/yieldstream/streamtest/assert"
	"github.com/streamvault/yieldstream/x/token"
)

func newTestVault(t *testing.T, db yieldstream.KVStore, admin yieldstream.Address, num, den uint32) RateVault {
	t.Helper()
	conf := &Config{
		Metadata: &yieldstream.Metadata{Schema: 1},
		Admin:    admin,
		Rate:     &yieldstream.Fraction{Numerator: num, Denominator: den},
	}
	assert.Nil(t, Configure(db, conf))
	return NewRateVault(token.NewController("asset"), token.NewController("share"))
}

func TestConversions(t *testing.T) {
	db := streamtest.Store()
	admin := streamtest.NewAddress()
	// 1 share = 11/10 assets
	v := newTestVault(t, db, admin, 11, 10)

	shares, err := v.ConvertToShares(db, 110)
	assert.Nil(t, err)
	assert.Equal(t, int64(100), shares)

	assets, err := v.ConvertToAssets(db, 100)
	assert.Nil(t, err)
	assert.Equal(t, int64(110), assets)

	// floor division
	assets, err = v.ConvertToAssets(db, 1)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), assets)

	shares, err = v.ConvertToShares(db, 1)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), shares)

	_, err = v.ConvertToShares(db, -1)
	assert.IsErr(t, errors.ErrAmount, err)
	_, err = v.ConvertToAssets(db, -1)
	assert.IsErr(t, errors.ErrAmount, err)
}

func TestDepositAndRedeem(t *testing.T) {
	db := streamtest.Store()
	admin := streamtest.NewAddress()
	alice := streamtest.NewAddress()
	v := newTestVault(t, db, admin, 1, 1)

	assert.Nil(t, v.assets.Issue(db, alice, 1000))

	shares, err := v.Deposit(db, 100, alice, alice)
	assert.Nil(t, err)
	assert.Equal(t, int64(100), shares)

	balance, err := v.assets.Balance(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, int64(900), balance)
	balance, err = v.assets.Balance(db, Address())
	assert.Nil(t, err)
	assert.Equal(t, int64(100), balance)
	balance, err = v.ShareBalance(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, int64(100), balance)

	assets, err := v.Redeem(db, 40, alice, alice)
	assert.Nil(t, err)
	assert.Equal(t, int64(40), assets)

	balance, err = v.assets.Balance(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, int64(940), balance)
	balance, err = v.ShareBalance(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, int64(60), balance)
}

func TestDepositRequiresFunds(t *testing.T) {
	db := streamtest.Store()
	admin := streamtest.NewAddress()
	alice := streamtest.NewAddress()
	v := newTestVault(t, db, admin, 1, 1)

	_, err := v.Deposit(db, 10, alice, alice)
	assert.IsErr(t, errors.ErrInsufficientAmount, err)
}

func TestRedeemRequiresShares(t *testing.T) {
	db := streamtest.Store()
	admin := streamtest.NewAddress()
	alice := streamtest.NewAddress()
	v := newTestVault(t, db, admin, 1, 1)

	_, err := v.Redeem(db, 10, alice, alice)
	assert.IsErr(t, errors.ErrInsufficientAmount, err)
}

func TestSetRate(t *testing.T) {
	db := streamtest.Store()
	admin := streamtest.NewAddress()
	stranger := streamtest.NewAddress()
	v := newTestVault(t, db, admin, 1, 1)

	// only the admin may change the rate
	err := SetRate(db, stranger, yieldstream.Fraction{Numerator: 2, Denominator: 1})
	assert.IsErr(t, errors.ErrUnauthorized, err)

	// the rate cannot decrease
	err = SetRate(db, admin, yieldstream.Fraction{Numerator: 9, Denominator: 10})
	assert.IsErr(t, errors.ErrState, err)

	// the rate cannot be zero
	err = SetRate(db, admin, yieldstream.Fraction{Numerator: 0, Denominator: 1})
	assert.IsErr(t, errors.ErrAmount, err)

	// appreciation is fine, an equal rate is fine too
	assert.Nil(t, SetRate(db, admin, yieldstream.Fraction{Numerator: 1, Denominator: 1}))
	assert.Nil(t, SetRate(db, admin, yieldstream.Fraction{Numerator: 11, Denominator: 10}))

	assets, err := v.ConvertToAssets(db, 10)
	assert.Nil(t, err)
	assert.Equal(t, int64(11), assets)

	rate, err := Rate(db)
	assert.Nil(t, err)
	assert.Equal(t, yieldstream.Fraction{Numerator: 11, Denominator: 10}, rate)
}

func TestConfigValidation(t *testing.T) {
	db := streamtest.Store()
	admin := streamtest.NewAddress()

	cases := map[string]struct {
		conf    *Config
		wantErr *errors.Error
	}{
		"missing metadata": {
			conf: &Config{
				Admin: admin,
				Rate:  &yieldstream.Fraction{Numerator: 1, Denominator: 1},
			},
			wantErr: errors.ErrEmpty,
		},
		"missing admin": {
			conf: &Config{
				Metadata: &yieldstream.Metadata{Schema: 1},
				Rate:     &yieldstream.Fraction{Numerator: 1, Denominator: 1},
			},
			wantErr: errors.ErrInput,
		},
		"missing rate": {
			conf: &Config{
				Metadata: &yieldstream.Metadata{Schema: 1},
				Admin:    admin,
			},
			wantErr: errors.ErrEmpty,
		},
		"zero rate": {
			conf: &Config{
				Metadata: &yieldstream.Metadata{Schema: 1},
				Admin:    admin,
				Rate:     &yieldstream.Fraction{Numerator: 0, Denominator: 1},
			},
			wantErr: errors.ErrAmount,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.IsErr(t, tc.wantErr, Configure(db, tc.conf))
		})
	}
}

func TestMulDiv(t *testing.T) {
	// values far above the naive int64 multiplication range
	const huge = int64(1) << 60
	res, err := mulDiv(huge, 1000, 1000)
	assert.Nil(t, err)
	assert.Equal(t, huge, res)

	_, err = mulDiv(huge, 1000, 1)
	assert.IsErr(t, errors.ErrOverflow, err)
}
