package money

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every amount carries.
const Scale = 4

// Money is a fixed-point decimal amount with exactly four fractional digits.
// Arithmetic and comparisons are exact; there is no tolerance anywhere.
type Money struct {
	dec decimal.Decimal
}

// Zero is the additive identity.
var Zero = Money{}

// FromInt builds an amount from a whole number of currency units.
func FromInt(units int64) Money {
	return Money{dec: decimal.New(units, 0)}
}

// Parse reads a decimal string such as "10", "10.5" or "10.5000". Strings with
// more than four fractional digits are rejected rather than rounded.
func Parse(value string) (Money, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Money{}, fmt.Errorf("money: empty value")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Money{}, fmt.Errorf("money: parsing %q: %w", value, err)
	}
	if d.Exponent() < -Scale {
		return Money{}, fmt.Errorf("money: %q exceeds %d fractional digits", value, Scale)
	}
	return Money{dec: d}, nil
}

// MustParse is Parse for constants in tests and fixtures.
func MustParse(value string) Money {
	m, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{dec: m.dec.Add(other.dec)}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{dec: m.dec.Sub(other.dec)}
}

// MulInt returns m * n, used for price-times-quantity.
func (m Money) MulInt(n int) Money {
	return Money{dec: m.dec.Mul(decimal.New(int64(n), 0))}
}

// Mul returns m * other.
func (m Money) Mul(other Money) Money {
	return Money{dec: m.dec.Mul(other.dec)}
}

// Equal reports exact equality; 10.5 equals 10.5000.
func (m Money) Equal(other Money) bool {
	return m.dec.Equal(other.dec)
}

// Cmp returns -1, 0 or 1 comparing m against other.
func (m Money) Cmp(other Money) int {
	return m.dec.Cmp(other.dec)
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.dec.IsNegative()
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.dec.IsZero()
}

// String renders the amount with exactly four fractional digits.
func (m Money) String() string {
	return m.dec.StringFixed(Scale)
}

// MarshalJSON encodes the amount as a quoted fixed-point string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted or bare decimal literal.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("money: invalid string literal %s: %w", raw, err)
		}
		raw = unquoted
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer for numeric(19,4) columns.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner.
func (m *Money) Scan(src any) error {
	if src == nil {
		*m = Money{}
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("money: scanning %T: %w", src, err)
	}
	*m = Money{dec: d}
	return nil
}

// Sum adds the given amounts, returning zero for an empty list.
func Sum(amounts ...Money) Money {
	total := Money{}
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
