package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an exact-decimal monetary amount. The zero value is usable and
// equals ZeroMoney.
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney is the additive identity for Money.
var ZeroMoney = Money{amount: decimal.Zero}

// NewMoney creates a Money from a decimal amount, normalised to 2 fractional digits.
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount.Round(2)}
}

// NewMoneyFromString parses a decimal string such as "20.00".
func NewMoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return NewMoney(d), nil
}

// MustMoney parses a decimal string and panics on failure. For tests and constants.
func MustMoney(s string) Money {
	m, err := NewMoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) String() string { return m.amount.StringFixed(2) }

func (m Money) IsGreaterThanZero() bool { return m.amount.IsPositive() }

func (m Money) IsGreaterThan(o Money) bool { return m.amount.GreaterThan(o.amount) }

func (m Money) Equals(o Money) bool { return m.amount.Equal(o.amount) }

func (m Money) Add(o Money) Money { return Money{amount: m.amount.Add(o.amount).Round(2)} }

func (m Money) Subtract(o Money) Money { return Money{amount: m.amount.Sub(o.amount).Round(2)} }

// Multiply scales the amount by an integer quantity.
func (m Money) Multiply(qty int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(qty))).Round(2)}
}

// MarshalJSON encodes the amount as a fixed two-decimal JSON string so that
// payloads survive round-trips without float precision loss.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.amount.StringFixed(2) + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("unmarshal money %q: %w", s, err)
	}
	m.amount = d.Round(2)
	return nil
}
