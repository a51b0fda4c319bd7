// Package core provides the domain types shared by the query, write and
// alert paths.
//
// This file contains helpers for parsing monetary amounts from strings and
// converting between decimals and the integer cents used by storage.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a decimal amount from user input.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs are
// rejected; the value is not rounded.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// AmountScale is the number of fractional digits a stored amount may carry.
const AmountScale = 2

// ValidateAmount rejects negative amounts and amounts finer than a cent, so
// every backend stores exactly the value it was given.
func ValidateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidAmount)
	}
	if !d.Equal(d.Truncate(AmountScale)) {
		return fmt.Errorf("%w: amount %s has more than %d decimal places", ErrInvalidAmount, d.String(), AmountScale)
	}
	return nil
}

// ToCents converts an amount to integer cents with half-up rounding.
func ToCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// FromCents converts integer cents back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
