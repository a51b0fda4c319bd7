package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{" 2.50 ", "2.5", true},
		{"0", "0", true},
		{"-1", "", false},
		{"+1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.out)), "input %q got %s", tc.in, got)
	}
}

func TestCentsConversion(t *testing.T) {
	assert.Equal(t, int64(1234), ToCents(decimal.RequireFromString("12.34")))
	assert.Equal(t, int64(101), ToCents(decimal.RequireFromString("1.005")))
	assert.Equal(t, int64(10000), ToCents(decimal.NewFromInt(100)))
	assert.True(t, FromCents(10500).Equal(decimal.NewFromInt(105)))
	assert.Equal(t, "99.99", FromCents(9999).String())
}

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"0", true},
		{"10", true},
		{"10.5", true},
		{"10.05", true},
		{"10.050", true},
		{"10.005", false},
		{"0.001", false},
		{"-0.01", false},
	}
	for _, tc := range cases {
		err := ValidateAmount(decimal.RequireFromString(tc.in))
		if tc.ok {
			assert.NoError(t, err, "input %q", tc.in)
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", tc.in)
		assert.ErrorIs(t, err, ErrValidation, "input %q", tc.in)
	}
}
