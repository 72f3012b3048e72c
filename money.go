package bankgo

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of minor-unit digits every amount is carried at.
// The engine works in a single implicit currency.
const MoneyScale = 2

// Money is an exact decimal amount. The zero value is zero money. All
// arithmetic stays exact; rate application rounds half-even at MoneyScale.
type Money struct {
	d decimal.Decimal
}

// NewMoney validates that d fits the engine's scale. Amounts finer than a
// minor unit are rejected rather than silently rounded.
func NewMoney(d decimal.Decimal) (Money, error) {
	if d.Exponent() < -MoneyScale && !d.Equal(d.Round(MoneyScale)) {
		return Money{}, ErrInvalidAmount{
			Reason: fmt.Sprintf("amount %s exceeds scale of %d decimal places", d.String(), MoneyScale),
		}
	}
	return Money{d: d}, nil
}

// MustMoney parses s as a Money and panics on failure. Test and
// initialization convenience only.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	m, err := NewMoney(d)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromCents builds a Money from an integer count of minor units.
func MoneyFromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -MoneyScale)}
}

func ZeroMoney() Money {
	return Money{}
}

func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

func (m Money) Sub(o Money) Money {
	return Money{d: m.d.Sub(o.d)}
}

func (m Money) Neg() Money {
	return Money{d: m.d.Neg()}
}

// Cmp returns -1, 0, or 1 as m is less than, equal to, or greater than o.
func (m Money) Cmp(o Money) int {
	return m.d.Cmp(o.d)
}

func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

func (m Money) IsZero() bool {
	return m.d.IsZero()
}

func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

// MulRate applies a rational rate (e.g. a fee percentage or a per-period
// interest rate), rounding half-even at MoneyScale.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return Money{d: m.d.Mul(rate).RoundBank(MoneyScale)}
}

// Decimal exposes the underlying decimal for callers that need to format
// or compare outside the Money contract.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

func (m Money) String() string {
	return m.d.StringFixed(MoneyScale)
}

// MarshalJSON renders the amount as a fixed-scale string, e.g. "12.30".
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted and bare decimal literals and enforces
// the engine scale.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrInvalidAmount{Reason: fmt.Sprintf("malformed amount %q", s)}
	}
	mm, err := NewMoney(d)
	if err != nil {
		return err
	}
	*m = mm
	return nil
}
