// Package money holds the fixed-point amount used for every price in the
// storefront. Amounts are integer minor units (cents); decimal text only
// appears at the JSON boundary.
package money

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of minor-unit digits carried by an Amount.
const Scale = 2

// Amount is a non-negative price expressed in minor units.
type Amount int64

// FromMinor builds an amount from minor units.
func FromMinor(minor int64) Amount {
	return Amount(minor)
}

// FromMajor builds an amount from whole major units.
func FromMajor(major int64) Amount {
	return Amount(decimal.NewFromInt(major).Shift(Scale).IntPart())
}

// Parse reads a decimal string in major units ("5990", "12.50").
// Digits beyond the minor-unit scale are rejected rather than rounded.
func Parse(raw string) (Amount, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return fromDecimal(d)
}

func fromDecimal(d decimal.Decimal) (Amount, error) {
	shifted := d.Shift(Scale)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", d.String(), Scale)
	}
	if shifted.IsNegative() {
		return 0, fmt.Errorf("amount %s is negative", d.String())
	}
	return Amount(shifted.IntPart()), nil
}

// Minor returns the amount in minor units.
func (a Amount) Minor() int64 {
	return int64(a)
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return a + b
}

// Mul multiplies the amount by an integer quantity.
func (a Amount) Mul(qty int) Amount {
	return a * Amount(qty)
}

// String renders the amount in major units with the fixed scale.
func (a Amount) String() string {
	return a.Decimal().StringFixed(Scale)
}

// Sum adds all amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

// MarshalJSON writes the amount as a bare JSON number in major units.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string in major units.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if strings.TrimSpace(raw) == "" {
			*a = 0
			return nil
		}
		parsed, err := Parse(raw)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
