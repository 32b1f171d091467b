// Package core holds the ledger domain: transaction kinds, paid/unpaid
// gating, the balance effects they imply, and money as integer cents.
package core

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in integer minor units (cents). Arithmetic on the
// ledger happens in cents only; decimals exist at the JSON boundary so
// payloads like 12.34 never round-trip through binary floating point.
type Money struct {
	Cents int64
}

// Cents builds a Money from minor units.
func Cents(c int64) Money { return Money{Cents: c} }

// FromDecimal converts a decimal amount to cents, rounding half away from
// zero at the third decimal place.
func FromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Shift(2).Round(0)
	if !cents.IsInteger() {
		return Money{}, fmt.Errorf("amount %s does not round to cents", d)
	}
	if !cents.BigInt().IsInt64() {
		return Money{}, fmt.Errorf("amount %s out of range", d)
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Add returns m plus cents; used by the store when folding effects.
func (m Money) Add(cents int64) Money {
	return Money{Cents: m.Cents + cents}
}

// MarshalJSON renders the amount as a plain JSON number in major units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		m.Cents = 0
		return nil
	}
	data = bytes.Trim(data, `"`)
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("parse amount: %w", err)
	}
	parsed, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseAmount converts a decimal string (dot or comma separator) to Money.
func ParseAmount(s string) (Money, error) {
	d, err := decimal.NewFromString(replaceComma(s))
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

func replaceComma(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c == ',' {
			b[i] = '.'
		}
	}
	return string(b)
}
