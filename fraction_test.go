package yieldstream

import (
	"testing"

	"github.com/streamvault/yieldstream/errors"
	"github.com/streamvault/yieldstream/streamtest/assert"
)

func TestFractionValidate(t *testing.T) {
	cases := map[string]struct {
		f       Fraction
		wantErr *errors.Error
	}{
		"valid":                {f: Fraction{Numerator: 1, Denominator: 2}},
		"zero value":           {f: Fraction{Numerator: 0, Denominator: 1}},
		"zero over zero":       {f: Fraction{}},
		"zero division":        {f: Fraction{Numerator: 1, Denominator: 0}, wantErr: errors.ErrState},
		"improper is allowed":  {f: Fraction{Numerator: 7, Denominator: 2}},
		"not normalized is ok": {f: Fraction{Numerator: 4, Denominator: 8}},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if tc.wantErr == nil {
				assert.Nil(t, tc.f.Validate())
			} else {
				assert.IsErr(t, tc.wantErr, tc.f.Validate())
			}
		})
	}
}

func TestFractionNormalize(t *testing.T) {
	cases := map[string]struct {
		f    Fraction
		want Fraction
	}{
		"already normalized": {
			f:    Fraction{Numerator: 1, Denominator: 2},
			want: Fraction{Numerator: 1, Denominator: 2},
		},
		"reducible": {
			f:    Fraction{Numerator: 4, Denominator: 8},
			want: Fraction{Numerator: 1, Denominator: 2},
		},
		"whole": {
			f:    Fraction{Numerator: 9, Denominator: 3},
			want: Fraction{Numerator: 3, Denominator: 1},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.f.Normalize())
		})
	}
}

func TestFractionCompare(t *testing.T) {
	half := Fraction{Numerator: 1, Denominator: 2}
	twoQuarters := Fraction{Numerator: 2, Denominator: 4}
	third := Fraction{Numerator: 1, Denominator: 3}

	assert.Equal(t, 0, half.Compare(twoQuarters))
	assert.Equal(t, 1, half.Compare(third))
	assert.Equal(t, -1, third.Compare(half))
}

func TestFractionString(t *testing.T) {
	cases := map[string]struct {
		f    *Fraction
		want string
	}{
		"nil":      {f: nil, want: "nil"},
		"zero":     {f: &Fraction{Numerator: 0, Denominator: 5}, want: "0"},
		"whole":    {f: &Fraction{Numerator: 3, Denominator: 1}, want: "3"},
		"fraction": {f: &Fraction{Numerator: 11, Denominator: 10}, want: "11/10"},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.f.String())
		})
	}
}
