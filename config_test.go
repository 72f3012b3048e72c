package bankgo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ansvik/bankgo"
)

const testConfigYAML = `
server:
  addr: ":8080"
snowflake:
  node: 3
accounts:
  overdraft_limit: "500.00"
  fee_percent: "0.01"
  min_fee: "0.50"
  savings_rate: "0.015"
limits:
  in_flight: 64
`

func TestConfigDecode(t *testing.T) {
	as := assert.New(t)
	reqrd := require.New(t)

	var cfg bankgo.Config
	reqrd.Nil(yaml.Unmarshal([]byte(testConfigYAML), &cfg))
	as.Equal(":8080", cfg.Server.Addr)
	as.Equal(int64(3), cfg.Snowflake.Node)
	as.Equal(int64(64), cfg.Limits.InFlight)

	def, err := cfg.PolicyDefaults()
	reqrd.Nil(err)
	as.Equal("500.00", def.OverdraftLimit.String())
	as.Equal("0.50", def.MinFee.String())
	as.Equal("0.01", def.FeePercent.String())
	as.Equal("0.015", def.SavingsRate.String())
}

func TestConfigDefaultsEmpty(t *testing.T) {
	as := assert.New(t)
	reqrd := require.New(t)

	var cfg bankgo.Config
	def, err := cfg.PolicyDefaults()
	reqrd.Nil(err)
	as.True(def.OverdraftLimit.IsZero())
	as.True(def.MinFee.IsZero())
	as.True(def.FeePercent.IsZero())
	as.True(def.SavingsRate.IsZero())
}

func TestConfigRejectsMalformedAmounts(t *testing.T) {
	as := assert.New(t)

	var cfg bankgo.Config
	cfg.Accounts.OverdraftLimit = "five hundred"
	_, err := cfg.PolicyDefaults()
	as.NotNil(err)

	cfg.Accounts.OverdraftLimit = "500.005"
	_, err = cfg.PolicyDefaults()
	as.ErrorAs(err, &bankgo.ErrInvalidAmount{})
}
