// Package core provides money parsing and handling utilities.
//
// This file contains the decimal Money type used for transaction amounts and
// the parser for amounts typed by a user.
package core

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used for display when no currency is configured.
const DefaultCurrency = gomoney.USD

// Money is a decimal amount in major currency units. Sums are exact.
type Money struct {
	value decimal.Decimal
}

// NewMoney converts a float literal into Money.
func NewMoney(f float64) Money {
	return Money{value: decimal.NewFromFloat(f)}
}

// MoneyFromDecimal wraps a decimal value.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{value: d}
}

// ParseAmount converts a user-entered decimal string into Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// exponents, NaN and infinities are rejected, as are zero amounts.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> error
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	if s == "." {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	m := Money{value: d}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// Validate rejects zero and negative amounts.
func (m Money) Validate() error {
	if !m.value.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(n Money) Money        { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money        { return Money{value: m.value.Sub(n.value)} }
func (m Money) Cmp(n Money) int          { return m.value.Cmp(n.value) }
func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsPositive() bool         { return m.value.IsPositive() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }
func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) Float64() float64         { return m.value.InexactFloat64() }
func (m Money) GreaterThan(n Money) bool { return m.value.GreaterThan(n.value) }

// String returns the plain decimal representation, e.g. "5.5".
func (m Money) String() string {
	return m.value.String()
}

// Format renders the amount in the given ISO currency, e.g. "$1,200.00".
// Unknown currency codes fall back to DefaultCurrency.
func (m Money) Format(currency string) string {
	cur := gomoney.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		cur = gomoney.GetCurrency(DefaultCurrency)
	}
	minor := m.value.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

// MarshalJSON encodes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.String()), nil
}

// UnmarshalJSON accepts JSON numbers and numeric strings.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	m.value = d
	return nil
}
