package yieldstream

import (
	"fmt"
	"math/big"

	"github.com/streamvault/yieldstream/errors"
)

// String returns a human readable fraction representation.
func (f *Fraction) String() string {
	if f == nil {
		return "nil"
	}
	if f.Numerator == 0 {
		return "0"
	}
	if f.Denominator == 1 {
		return fmt.Sprint(f.Numerator)
	}
	return fmt.Sprintf("%d/%d", f.Numerator, f.Denominator)
}

// Validate returns an error if this fraction represents an invalid value.
func (f Fraction) Validate() error {
	if f.Denominator == 0 && f.Numerator != 0 {
		return errors.Wrap(errors.ErrState, "zero division")
	}
	return nil
}

// IsZero returns true for a fraction with a zero value.
func (f Fraction) IsZero() bool {
	return f.Numerator == 0
}

// Normalize returns a new fraction instance that has its numerator and
// denominator reduced to the smallest possible representation.
func (f Fraction) Normalize() Fraction {
	div := uintGcd(f.Numerator, f.Denominator)
	return Fraction{
		Numerator:   f.Numerator / div,
		Denominator: f.Denominator / div,
	}
}

// Compare returns -1, 0 or 1 if the value of this fraction is accordingly
// less than, equal to or greater than the value of the other one. Both
// fractions must be valid.
func (f Fraction) Compare(other Fraction) int {
	left := new(big.Int).Mul(
		big.NewInt(int64(f.Numerator)),
		big.NewInt(int64(other.Denominator)),
	)
	right := new(big.Int).Mul(
		big.NewInt(int64(other.Numerator)),
		big.NewInt(int64(f.Denominator)),
	)
	return left.Cmp(right)
}

func uintGcd(a, b uint32) uint32 {
	for b != 0 {
		t := b
		b = a % b
		a = t
	}
	return a
}
