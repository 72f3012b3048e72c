package bankgo

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PolicyDefaults are the fallback policy parameters applied when an
// account is opened without explicit overrides.
type PolicyDefaults struct {
	OverdraftLimit Money
	FeePercent     decimal.Decimal
	MinFee         Money
	SavingsRate    decimal.Decimal
}

// AccountSummary is a point-in-time, read-only snapshot of an account.
type AccountSummary struct {
	ID             snowflake.ID `json:"id"`
	Type           AccountType  `json:"type"`
	Balance        Money        `json:"balance"`
	OverdraftLimit Money        `json:"overdraft_limit"`
	Open           bool         `json:"open"`
}

// Bank owns the account registry and the global journal. All writes go
// through a single exclusive lock so the append order and per-account
// balances never race; reads take the shared lock and observe whole
// transactions only. The transfer+fee pair commits under one critical
// section, so no reader ever sees one without the other.
type Bank struct {
	mu        sync.RWMutex
	node      *snowflake.Node
	log       *zerolog.Logger
	accounts  map[snowflake.ID]*Account
	jrnl      journal
	seq       uint64
	factories map[AccountType]AccountFactory
	processed map[uuid.UUID]*Transaction
	defaults  PolicyDefaults

	feeAcctID      snowflake.ID
	interestAcctID snowflake.ID
}

func NewBank(node *snowflake.Node, defaults PolicyDefaults, log *zerolog.Logger) *Bank {
	b := &Bank{
		node:      node,
		log:       log,
		accounts:  make(map[snowflake.ID]*Account),
		factories: make(map[AccountType]AccountFactory),
		processed: make(map[uuid.UUID]*Transaction),
		defaults:  defaults,
	}

	b.feeAcctID = node.Generate()
	b.accounts[b.feeAcctID] = NewAccount(b.feeAcctID, AccountInternal, internalPolicy{})
	b.interestAcctID = node.Generate()
	b.accounts[b.interestAcctID] = NewAccount(b.interestAcctID, AccountInternal, internalPolicy{})

	b.factories[AccountYouth] = func(id snowflake.ID, _ AccountOpts) *Account {
		return NewAccount(id, AccountYouth, youthPolicy{})
	}
	b.factories[AccountPrivate] = func(id snowflake.ID, opts AccountOpts) *Account {
		pol := privatePolicy{
			limit:      b.defaults.OverdraftLimit,
			feePercent: b.defaults.FeePercent,
			minFee:     b.defaults.MinFee,
		}
		if !opts.OverdraftLimit.IsZero() {
			pol.limit = opts.OverdraftLimit
		}
		if !opts.FeePercent.IsZero() {
			pol.feePercent = opts.FeePercent
		}
		if !opts.MinFee.IsZero() {
			pol.minFee = opts.MinFee
		}
		return NewAccount(id, AccountPrivate, pol)
	}
	b.factories[AccountSavings] = func(id snowflake.ID, opts AccountOpts) *Account {
		pol := savingsPolicy{rate: b.defaults.SavingsRate}
		if !opts.InterestRate.IsZero() {
			pol.rate = opts.InterestRate
		}
		return NewAccount(id, AccountSavings, pol)
	}

	return b
}

// FeeAccountID is the bank-owned pool credited with debit fees.
func (b *Bank) FeeAccountID() snowflake.ID { return b.feeAcctID }

// InterestAccountID is the bank-owned pool debited for interest payouts.
func (b *Bank) InterestAccountID() snowflake.ID { return b.interestAcctID }

// RegisterAccountType installs a factory for a new account variant.
// Existing registrations are replaced.
func (b *Bank) RegisterAccountType(typ AccountType, f AccountFactory) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.factories[typ] = f
}

// OpenAccount creates an account of the given type. A zero id lets the
// bank allocate one.
func (b *Bank) OpenAccount(id snowflake.ID, typ AccountType, opts AccountOpts) (snowflake.ID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	factory, ok := b.factories[typ]
	if !ok {
		return 0, ErrUnknownAccountType{Type: typ}
	}
	if id == 0 {
		id = b.node.Generate()
	}
	if _, exists := b.accounts[id]; exists {
		return 0, ErrDuplicateAccountID{ID: id}
	}
	b.accounts[id] = factory(id, opts)
	b.log.Info().
		Stringer("acct_id", id).
		Str("type", string(typ)).
		Msg("account opened")
	return id, nil
}

// Deposit credits accountID with cash entering the system from outside;
// the resulting CASH_DEPOSIT transaction has a single positive posting and
// no counter-account. A non-nil ref makes the operation idempotent.
func (b *Bank) Deposit(accountID snowflake.ID, amount Money, memo string, ref uuid.UUID) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount{Reason: "deposit amount must be positive"}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if txn, ok := b.processed[ref]; ok && ref != uuid.Nil {
		return txn, nil
	}
	acct, err := b.activeAccount(accountID)
	if err != nil {
		return nil, err
	}

	txn := b.newTxn(TxnCashDeposit, memo, ref, Posting{AccountID: acct.id, Amount: amount})
	b.commit(txn)
	b.remember(ref, txn)
	return txn, nil
}

// Transfer moves amount from one account to another. When the source
// variant charges a debit fee, the fee is booked as a separate FEE
// transaction appended immediately after the transfer; both legs are
// admitted against the source's overdraft policy up front and committed in
// one critical section, all-or-nothing.
func (b *Bank) Transfer(fromID, toID snowflake.ID, amount Money, memo string, ref uuid.UUID) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount{Reason: "transfer amount must be positive"}
	}
	if fromID == toID {
		return nil, ErrSameAccount{ID: fromID}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if txn, ok := b.processed[ref]; ok && ref != uuid.Nil {
		return txn, nil
	}
	from, err := b.activeAccount(fromID)
	if err != nil {
		return nil, err
	}
	to, err := b.activeAccount(toID)
	if err != nil {
		return nil, err
	}

	fee := from.pol.FeeOnDebit(amount)
	total := amount.Add(fee)
	if !from.canDebit(total) {
		return nil, ErrInsufficientFunds{ID: fromID, Requested: total}
	}

	txn := b.newTxn(TxnTransfer, memo, ref,
		Posting{AccountID: from.id, Amount: amount.Neg()},
		Posting{AccountID: to.id, Amount: amount},
	)
	b.commit(txn)

	if fee.IsPositive() {
		feeTxn := b.newTxn(TxnFee, fmt.Sprintf("fee for txn %s", txn.ID), uuid.Nil,
			Posting{AccountID: from.id, Amount: fee.Neg()},
			Posting{AccountID: b.feeAcctID, Amount: fee},
		)
		b.commit(feeTxn)
	}

	b.remember(ref, txn)
	return txn, nil
}

// AccrueInterest posts one period of interest at rate to an
// interest-bearing account, funded from the bank's interest pool. A zero
// computed interest (e.g. zero balance) records nothing and returns nil.
func (b *Bank) AccrueInterest(accountID snowflake.ID, rate decimal.Decimal) (*Transaction, error) {
	if rate.Sign() <= 0 {
		return nil, ErrInvalidAmount{Reason: "interest rate must be positive"}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accrueInterestLocked(accountID, rate)
}

func (b *Bank) accrueInterestLocked(accountID snowflake.ID, rate decimal.Decimal) (*Transaction, error) {
	acct, err := b.activeAccount(accountID)
	if err != nil {
		return nil, err
	}
	interest, ok := acct.pol.InterestOn(acct.balance, rate)
	if !ok {
		return nil, ErrNotEligible{ID: accountID, Type: acct.typ}
	}
	if !interest.IsPositive() {
		return nil, nil
	}

	txn := b.newTxn(TxnInterest, fmt.Sprintf("interest @ %s", rate.String()), uuid.Nil,
		Posting{AccountID: b.interestAcctID, Amount: interest.Neg()},
		Posting{AccountID: acct.id, Amount: interest},
	)
	b.commit(txn)
	return txn, nil
}

// AccrueInterestAll sweeps one period of interest over every open
// interest-bearing account at its configured rate, in account ID order.
func (b *Bank) AccrueInterestAll() ([]*Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]snowflake.ID, 0, len(b.accounts))
	for id, acct := range b.accounts {
		if !acct.open {
			continue
		}
		if _, ok := acct.pol.InterestOn(acct.balance, decimal.Zero); !ok {
			continue
		}
		if acct.pol.PeriodRate().Sign() <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	txns := make([]*Transaction, 0, len(ids))
	for _, id := range ids {
		txn, err := b.accrueInterestLocked(id, b.accounts[id].pol.PeriodRate())
		if err != nil {
			return txns, err
		}
		if txn != nil {
			txns = append(txns, txn)
		}
	}
	return txns, nil
}

// Balance returns the current balance. Closed accounts still answer (with
// the zero balance they closed at).
func (b *Bank) Balance(accountID snowflake.ID) (Money, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	acct, ok := b.accounts[accountID]
	if !ok {
		return Money{}, ErrUnknownAccount{ID: accountID}
	}
	return acct.balance, nil
}

// Summary returns a snapshot of the account's registry state.
func (b *Bank) Summary(accountID snowflake.ID) (AccountSummary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	acct, ok := b.accounts[accountID]
	if !ok {
		return AccountSummary{}, ErrUnknownAccount{ID: accountID}
	}
	return AccountSummary{
		ID:             acct.id,
		Type:           acct.typ,
		Balance:        acct.balance,
		OverdraftLimit: acct.OverdraftLimit(),
		Open:           acct.open,
	}, nil
}

// AccountHistory returns the transactions touching accountID, most recent
// first, up to limit (<= 0 means all).
func (b *Bank) AccountHistory(accountID snowflake.ID, limit int) ([]Transaction, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, ok := b.accounts[accountID]; !ok {
		return nil, ErrUnknownAccount{ID: accountID}
	}
	return b.jrnl.recentFor(accountID, limit), nil
}

// Entries returns the account's own journal view in append order, up to
// the last limit entries (<= 0 means all).
func (b *Bank) Entries(accountID snowflake.ID, limit int) ([]Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	acct, ok := b.accounts[accountID]
	if !ok {
		return nil, ErrUnknownAccount{ID: accountID}
	}
	entries := acct.Entries()
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// BankHistory returns the global journal, most recent first, up to limit
// (<= 0 means all).
func (b *Bank) BankHistory(limit int) []Transaction {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.jrnl.recent(limit)
}

// CloseAccount irreversibly closes an account. Only accounts at exactly
// zero balance may close; internal pool accounts never close. Closure is a
// registry state change, not a monetary event: no transaction is recorded.
func (b *Bank) CloseAccount(accountID snowflake.ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct, ok := b.accounts[accountID]
	if !ok {
		return ErrUnknownAccount{ID: accountID}
	}
	if acct.typ == AccountInternal {
		return ErrNotEligible{ID: accountID, Type: acct.typ}
	}
	if !acct.open {
		return ErrAlreadyClosed{ID: accountID}
	}
	if !acct.balance.IsZero() {
		return ErrNonZeroBalance{ID: accountID, Balance: acct.balance}
	}
	acct.open = false
	b.log.Info().Stringer("acct_id", accountID).Msg("account closed")
	return nil
}

// Audit replays the whole journal and verifies the ledger's core
// invariants: every non-cash-deposit transaction sums to zero, every
// account's balance equals the signed sum of its postings in append order,
// and every account's own view matches the global order filtered to it.
func (b *Bank) Audit() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	replayed := make(map[snowflake.ID]Money, len(b.accounts))
	views := make(map[snowflake.ID][]snowflake.ID, len(b.accounts))
	for _, txn := range b.jrnl.txns {
		if !txn.Balanced() {
			return fmt.Errorf("txn %s (%s) violates the zero-sum invariant", txn.ID, txn.Kind)
		}
		for _, p := range txn.Postings {
			replayed[p.AccountID] = replayed[p.AccountID].Add(p.Amount)
			views[p.AccountID] = append(views[p.AccountID], txn.ID)
		}
	}

	for id, acct := range b.accounts {
		if !acct.balance.Equal(replayed[id]) {
			return fmt.Errorf("account %s balance %s diverges from journal replay %s",
				id, acct.balance, replayed[id])
		}
		if len(acct.entries) != len(views[id]) {
			return fmt.Errorf("account %s view has %d entries, journal has %d",
				id, len(acct.entries), len(views[id]))
		}
		for i, e := range acct.entries {
			if e.TxnID != views[id][i] {
				return fmt.Errorf("account %s view diverges from journal order at entry %d", id, i)
			}
		}
	}
	return nil
}

// activeAccount resolves an account that must be open. Write lock held.
func (b *Bank) activeAccount(id snowflake.ID) (*Account, error) {
	acct, ok := b.accounts[id]
	if !ok {
		return nil, ErrUnknownAccount{ID: id}
	}
	if !acct.open {
		return nil, ErrAccountClosed{ID: id}
	}
	return acct, nil
}

func (b *Bank) newTxn(kind TxnKind, memo string, ref uuid.UUID, postings ...Posting) *Transaction {
	if ref == uuid.Nil {
		ref = uuid.New()
	}
	b.seq++
	return &Transaction{
		ID:       b.node.Generate(),
		Seq:      b.seq,
		Ref:      ref,
		Time:     time.Now().UTC(),
		Kind:     kind,
		Memo:     memo,
		Postings: postings,
	}
}

// commit appends txn to the journal and posts each leg to its account's
// view, as one indivisible step. Write lock held.
func (b *Bank) commit(txn *Transaction) {
	b.jrnl.append(txn)
	for i, p := range txn.Postings {
		var counterparty snowflake.ID
		if len(txn.Postings) == 2 {
			counterparty = txn.Postings[1-i].AccountID
		}
		b.accounts[p.AccountID].post(Entry{
			TxnID:        txn.ID,
			Seq:          txn.Seq,
			Time:         txn.Time,
			Kind:         txn.Kind,
			Amount:       p.Amount,
			Counterparty: counterparty,
			Memo:         txn.Memo,
		})
	}
	b.log.Debug().
		Stringer("txn_id", txn.ID).
		Uint64("seq", txn.Seq).
		Str("kind", string(txn.Kind)).
		Msg("transaction committed")
}

func (b *Bank) remember(ref uuid.UUID, txn *Transaction) {
	if ref != uuid.Nil {
		b.processed[ref] = txn
	}
}
