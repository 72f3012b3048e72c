package bankgo

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountYouth    AccountType = "youth"
	AccountPrivate  AccountType = "private"
	AccountSavings  AccountType = "savings"
	AccountInternal AccountType = "internal"
)

// Policy is the capability set account variants differ in. Everything else
// about an account is uniform; a new variant implements these methods and
// registers a factory with the bank, no engine change required.
type Policy interface {
	// CanDebit reports whether the variant permits a debit of amount
	// given the current balance.
	CanDebit(balance, amount Money) bool
	// FeeOnDebit is the fee charged for a debit of amount (zero for
	// fee-free variants).
	FeeOnDebit(amount Money) Money
	// InterestOn computes one period of interest on balance at rate; ok
	// is false for variants that are not interest-bearing.
	InterestOn(balance Money, rate decimal.Decimal) (interest Money, ok bool)
	// PeriodRate is the variant's configured per-period interest rate,
	// used by bank-wide sweeps. Zero for non-interest-bearing variants.
	PeriodRate() decimal.Decimal
	// OverdraftLimit is how far below zero the balance may go.
	OverdraftLimit() Money
}

type youthPolicy struct{}

func (youthPolicy) CanDebit(balance, amount Money) bool {
	return !balance.Sub(amount).IsNegative()
}

func (youthPolicy) FeeOnDebit(Money) Money { return ZeroMoney() }

func (youthPolicy) InterestOn(Money, decimal.Decimal) (Money, bool) {
	return ZeroMoney(), false
}

func (youthPolicy) PeriodRate() decimal.Decimal { return decimal.Zero }

func (youthPolicy) OverdraftLimit() Money { return ZeroMoney() }

// privatePolicy permits overdraft up to a limit and charges a proportional
// debit fee with a floor.
type privatePolicy struct {
	limit      Money
	feePercent decimal.Decimal
	minFee     Money
}

func (p privatePolicy) CanDebit(balance, amount Money) bool {
	return balance.Sub(amount).Cmp(p.limit.Neg()) >= 0
}

func (p privatePolicy) FeeOnDebit(amount Money) Money {
	fee := amount.MulRate(p.feePercent)
	if fee.Cmp(p.minFee) < 0 {
		fee = p.minFee
	}
	return fee
}

func (privatePolicy) InterestOn(Money, decimal.Decimal) (Money, bool) {
	return ZeroMoney(), false
}

func (privatePolicy) PeriodRate() decimal.Decimal { return decimal.Zero }

func (p privatePolicy) OverdraftLimit() Money { return p.limit }

// savingsPolicy never overdrafts and earns simple per-period interest on a
// positive balance. rate is the configured default used by sweeps;
// explicit accruals may pass any rate.
type savingsPolicy struct {
	rate decimal.Decimal
}

func (savingsPolicy) CanDebit(balance, amount Money) bool {
	return !balance.Sub(amount).IsNegative()
}

func (savingsPolicy) FeeOnDebit(Money) Money { return ZeroMoney() }

func (savingsPolicy) InterestOn(balance Money, rate decimal.Decimal) (Money, bool) {
	if !balance.IsPositive() {
		return ZeroMoney(), true
	}
	return balance.MulRate(rate), true
}

func (p savingsPolicy) PeriodRate() decimal.Decimal { return p.rate }

func (savingsPolicy) OverdraftLimit() Money { return ZeroMoney() }

// internalPolicy is for bank-owned fee/interest pools; they may go
// arbitrarily negative and are exempt from every balance check.
type internalPolicy struct{}

func (internalPolicy) CanDebit(Money, Money) bool { return true }

func (internalPolicy) FeeOnDebit(Money) Money { return ZeroMoney() }

func (internalPolicy) InterestOn(Money, decimal.Decimal) (Money, bool) {
	return ZeroMoney(), false
}

func (internalPolicy) PeriodRate() decimal.Decimal { return decimal.Zero }

func (internalPolicy) OverdraftLimit() Money { return ZeroMoney() }

// Account is a single ledger account. All mutation happens through the
// owning Bank under its write lock; accessors return copies.
type Account struct {
	id      snowflake.ID
	typ     AccountType
	balance Money
	open    bool
	pol     Policy
	entries []Entry
}

// NewAccount builds an open account with a zero balance. Accounts only
// become part of a ledger through a factory registered on a Bank.
func NewAccount(id snowflake.ID, typ AccountType, pol Policy) *Account {
	return &Account{
		id:   id,
		typ:  typ,
		open: true,
		pol:  pol,
	}
}

func (a *Account) ID() snowflake.ID { return a.id }

func (a *Account) Type() AccountType { return a.typ }

func (a *Account) Balance() Money { return a.balance }

func (a *Account) IsOpen() bool { return a.open }

func (a *Account) OverdraftLimit() Money { return a.pol.OverdraftLimit() }

// Entries returns a copy of the account's journal view in append order.
func (a *Account) Entries() []Entry {
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

func (a *Account) canDebit(amount Money) bool {
	return a.pol.CanDebit(a.balance, amount)
}

// post applies one signed leg. Bank-only, under the write lock.
func (a *Account) post(e Entry) {
	a.entries = append(a.entries, e)
	a.balance = a.balance.Add(e.Amount)
}

// AccountOpts carries per-variant policy parameters for account creation.
// Zero values fall back to the bank's configured defaults.
type AccountOpts struct {
	OverdraftLimit Money
	FeePercent     decimal.Decimal
	MinFee         Money
	InterestRate   decimal.Decimal
}

// AccountFactory builds a concrete account variant. Registered per type
// with Bank.RegisterAccountType.
type AccountFactory func(id snowflake.ID, opts AccountOpts) *Account
