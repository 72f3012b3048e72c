package bankgo_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansvik/bankgo"
)

func TestNewMoney(t *testing.T) {
	t.Run("accepts amounts at or under two decimal places", func(tt *testing.T) {
		as := assert.New(tt)
		for _, s := range []string{"0", "1", "12.3", "12.34", "-0.01", "100.00"} {
			d := decimal.RequireFromString(s)
			_, err := bankgo.NewMoney(d)
			as.Nil(err, "amount %s", s)
		}
	})

	t.Run("rejects over-precision amounts", func(tt *testing.T) {
		as := assert.New(tt)
		for _, s := range []string{"0.001", "12.345", "-1.005"} {
			d := decimal.RequireFromString(s)
			_, err := bankgo.NewMoney(d)
			as.ErrorAs(err, &bankgo.ErrInvalidAmount{}, "amount %s", s)
		}
	})

	t.Run("accepts trailing zeros past the scale", func(tt *testing.T) {
		as := assert.New(tt)
		d := decimal.RequireFromString("1.250")
		m, err := bankgo.NewMoney(d)
		as.Nil(err)
		as.Equal("1.25", m.String())
	})
}

func TestMoneyArithmetic(t *testing.T) {
	as := assert.New(t)

	a := bankgo.MustMoney("10.00")
	b := bankgo.MustMoney("2.50")

	as.Equal("12.50", a.Add(b).String())
	as.Equal("7.50", a.Sub(b).String())
	as.Equal("-10.00", a.Neg().String())
	as.Equal(1, a.Cmp(b))
	as.Equal(-1, b.Cmp(a))
	as.Equal(0, a.Cmp(bankgo.MustMoney("10")))
	as.True(a.Equal(bankgo.MustMoney("10.0")))
	as.True(bankgo.ZeroMoney().IsZero())
	as.True(a.Neg().IsNegative())
	as.True(a.IsPositive())
	as.Equal("12.34", bankgo.MoneyFromCents(1234).String())
}

func TestMoneyMulRate(t *testing.T) {
	t.Run("rounds half to even at two decimal places", func(tt *testing.T) {
		as := assert.New(tt)

		rate := decimal.RequireFromString("0.125")
		// 1.00 * 0.125 = 0.125, ties to the even digit 2
		as.Equal("0.12", bankgo.MustMoney("1.00").MulRate(rate).String())
		// 3.00 * 0.125 = 0.375, ties to the even digit 8
		as.Equal("0.38", bankgo.MustMoney("3.00").MulRate(rate).String())
	})

	t.Run("computes simple interest exactly", func(tt *testing.T) {
		as := assert.New(tt)
		rate := decimal.RequireFromString("0.01")
		as.Equal("10.00", bankgo.MustMoney("1000.00").MulRate(rate).String())
	})
}

func TestMoneyJSON(t *testing.T) {
	t.Run("marshals as a fixed-scale string", func(tt *testing.T) {
		as := assert.New(tt)
		bits, err := json.Marshal(bankgo.MustMoney("12.3"))
		as.Nil(err)
		as.Equal(`"12.30"`, string(bits))
	})

	t.Run("unmarshals quoted and bare literals", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)

		var m bankgo.Money
		reqrd.Nil(json.Unmarshal([]byte(`"12.34"`), &m))
		as.Equal("12.34", m.String())
		reqrd.Nil(json.Unmarshal([]byte(`12.34`), &m))
		as.Equal("12.34", m.String())
	})

	t.Run("rejects over-precision and malformed input", func(tt *testing.T) {
		as := assert.New(tt)
		var m bankgo.Money
		as.ErrorAs(json.Unmarshal([]byte(`"12.345"`), &m), &bankgo.ErrInvalidAmount{})
		as.ErrorAs(json.Unmarshal([]byte(`"12,34"`), &m), &bankgo.ErrInvalidAmount{})
	})
}
