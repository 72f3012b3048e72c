package bankgo

import (
	"github.com/shopspring/decimal"
)

// Config is the yaml-backed server configuration. Monetary values and
// rates are strings so the file stays exact decimal all the way in.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Snowflake struct {
		Node int64 `yaml:"node"`
	} `yaml:"snowflake"`
	Accounts struct {
		OverdraftLimit string `yaml:"overdraft_limit"`
		FeePercent     string `yaml:"fee_percent"`
		MinFee         string `yaml:"min_fee"`
		SavingsRate    string `yaml:"savings_rate"`
	} `yaml:"accounts"`
	Limits struct {
		InFlight int64 `yaml:"in_flight"`
	} `yaml:"limits"`
}

// PolicyDefaults parses the configured account policy parameters. Missing
// values stay zero and disable the corresponding policy feature.
func (c *Config) PolicyDefaults() (PolicyDefaults, error) {
	var (
		def PolicyDefaults
		err error
	)
	if def.OverdraftLimit, err = parseMoney(c.Accounts.OverdraftLimit); err != nil {
		return def, err
	}
	if def.MinFee, err = parseMoney(c.Accounts.MinFee); err != nil {
		return def, err
	}
	if def.FeePercent, err = parseRate(c.Accounts.FeePercent); err != nil {
		return def, err
	}
	if def.SavingsRate, err = parseRate(c.Accounts.SavingsRate); err != nil {
		return def, err
	}
	return def, nil
}

func parseMoney(s string) (Money, error) {
	if s == "" {
		return ZeroMoney(), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return NewMoney(d)
}

func parseRate(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
