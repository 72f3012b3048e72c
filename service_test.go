package bankgo_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansvik/bankgo"
)

func newTestService(t *testing.T) (bankgo.Service, *bankgo.Bank) {
	t.Helper()
	b := newTestBank(t)
	log := zerolog.Nop()
	return bankgo.NewService(b, &log), b
}

func TestServiceOpenAccount(t *testing.T) {
	t.Run("returns a summary of the new account", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		svc, _ := newTestService(tt)

		summary, err := svc.OpenAccount(bankgo.OpenAccountReq{
			Type:           bankgo.AccountPrivate,
			OverdraftLimit: bankgo.MustMoney("50.00"),
		})
		reqrd.Nil(err)
		as.Equal(bankgo.AccountPrivate, summary.Type)
		as.Equal("50.00", summary.OverdraftLimit.String())
		as.True(summary.Open)
		as.True(summary.Balance.IsZero())
	})

	t.Run("propagates engine errors", func(tt *testing.T) {
		as := assert.New(tt)
		svc, _ := newTestService(tt)
		_, err := svc.OpenAccount(bankgo.OpenAccountReq{Type: "platinum"})
		as.ErrorAs(err, &bankgo.ErrUnknownAccountType{})
	})
}

func TestServiceDepositTransferBalance(t *testing.T) {
	as := assert.New(t)
	reqrd := require.New(t)
	svc, _ := newTestService(t)

	from, err := svc.OpenAccount(bankgo.OpenAccountReq{Type: bankgo.AccountYouth})
	reqrd.Nil(err)
	to, err := svc.OpenAccount(bankgo.OpenAccountReq{Type: bankgo.AccountYouth})
	reqrd.Nil(err)

	_, err = svc.Deposit(bankgo.ChargeReq{AcctID: from.ID, Amount: bankgo.MustMoney("100.00")})
	reqrd.Nil(err)
	txn, err := svc.Transfer(bankgo.TransferReq{
		FromID: from.ID,
		ToID:   to.ID,
		Amount: bankgo.MustMoney("40.00"),
		Memo:   "allowance",
	})
	reqrd.Nil(err)
	as.Equal(bankgo.TxnTransfer, txn.Kind)
	as.Equal("allowance", txn.Memo)

	bal, err := svc.Balance(bankgo.BalanceReq{AcctID: from.ID})
	reqrd.Nil(err)
	as.Equal("60.00", bal.String())

	hist, err := svc.AccountHistory(bankgo.HistoryReq{AcctID: to.ID, Limit: 1})
	reqrd.Nil(err)
	reqrd.Len(hist, 1)
	as.Equal(txn.ID, hist[0].ID)
}

func TestServiceAccrueInterest(t *testing.T) {
	as := assert.New(t)
	reqrd := require.New(t)
	svc, b := newTestService(t)

	s, err := svc.OpenAccount(bankgo.OpenAccountReq{Type: bankgo.AccountSavings})
	reqrd.Nil(err)
	_, err = svc.Deposit(bankgo.ChargeReq{AcctID: s.ID, Amount: bankgo.MustMoney("1000.00")})
	reqrd.Nil(err)

	txn, err := svc.AccrueInterest(bankgo.InterestReq{
		AcctID:     s.ID,
		PeriodRate: decimal.RequireFromString("0.01"),
	})
	reqrd.Nil(err)
	reqrd.NotNil(txn)
	as.Equal(bankgo.TxnInterest, txn.Kind)

	poolBal, err := svc.Balance(bankgo.BalanceReq{AcctID: b.InterestAccountID()})
	reqrd.Nil(err)
	as.Equal("-10.00", poolBal.String())
}

func TestServiceStatement(t *testing.T) {
	as := assert.New(t)
	reqrd := require.New(t)
	svc, _ := newTestService(t)

	acct, err := svc.OpenAccount(bankgo.OpenAccountReq{Type: bankgo.AccountYouth})
	reqrd.Nil(err)
	_, err = svc.Deposit(bankgo.ChargeReq{AcctID: acct.ID, Amount: bankgo.MustMoney("12.34"), Memo: "pocket money"})
	reqrd.Nil(err)

	var buf bytes.Buffer
	reqrd.Nil(svc.Statement(&buf, bankgo.StatementReq{AcctID: acct.ID}))
	as.True(bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	as.Greater(buf.Len(), 500)
}

func TestServiceCloseAccount(t *testing.T) {
	as := assert.New(t)
	reqrd := require.New(t)
	svc, _ := newTestService(t)

	acct, err := svc.OpenAccount(bankgo.OpenAccountReq{Type: bankgo.AccountYouth})
	reqrd.Nil(err)
	reqrd.Nil(svc.CloseAccount(bankgo.CloseAccountReq{AcctID: acct.ID}))

	_, err = svc.Deposit(bankgo.ChargeReq{AcctID: acct.ID, Amount: bankgo.MustMoney("1.00")})
	as.ErrorAs(err, &bankgo.ErrAccountClosed{})
}
