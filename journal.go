package bankgo

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// TxnKind is the semantic kind of a journal transaction. Each transaction
// carries exactly one kind; a transfer's fee is a separate FEE transaction.
type TxnKind string

const (
	TxnCashDeposit TxnKind = "CASH_DEPOSIT"
	TxnTransfer    TxnKind = "TRANSFER"
	TxnFee         TxnKind = "FEE"
	TxnInterest    TxnKind = "INTEREST"
)

// Posting is one signed leg of a transaction against one account.
// Positive amounts credit the account, negative amounts debit it.
type Posting struct {
	AccountID snowflake.ID `json:"account_id"`
	Amount    Money        `json:"amount"`
}

// Transaction is an atomic, ordered group of postings. For every kind but
// CASH_DEPOSIT the postings sum to zero; a cash deposit is the single
// sanctioned exception, one positive posting with no counter-account.
type Transaction struct {
	ID       snowflake.ID `json:"id"`
	Seq      uint64       `json:"seq"`
	Ref      uuid.UUID    `json:"ref"`
	Time     time.Time    `json:"time"`
	Kind     TxnKind      `json:"kind"`
	Memo     string       `json:"memo,omitempty"`
	Postings []Posting    `json:"postings"`
}

// Balanced reports whether the transaction satisfies the zero-sum
// invariant for its kind.
func (t *Transaction) Balanced() bool {
	if t.Kind == TxnCashDeposit {
		return len(t.Postings) == 1 && t.Postings[0].Amount.IsPositive()
	}
	sum := ZeroMoney()
	for _, p := range t.Postings {
		sum = sum.Add(p.Amount)
	}
	return sum.IsZero()
}

// Entry is one account's read-only view of a single transaction leg.
type Entry struct {
	TxnID        snowflake.ID `json:"txn_id"`
	Seq          uint64       `json:"seq"`
	Time         time.Time    `json:"time"`
	Kind         TxnKind      `json:"kind"`
	Amount       Money        `json:"amount"`
	Counterparty snowflake.ID `json:"counterparty,omitempty"`
	Memo         string       `json:"memo,omitempty"`
}

// journal is the bank's append-only transaction log. Only the Bank mutates
// it, under its write lock; callers only ever see copies.
type journal struct {
	txns []*Transaction
}

func (j *journal) append(t *Transaction) {
	j.txns = append(j.txns, t)
}

// recent returns up to limit transactions, most recent first. A limit <= 0
// means all.
func (j *journal) recent(limit int) []Transaction {
	n := len(j.txns)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Transaction, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, *j.txns[i])
	}
	return out
}

// recentFor returns up to limit transactions touching acctID, most recent
// first. Filtering the global order reproduces the account's own history.
func (j *journal) recentFor(acctID snowflake.ID, limit int) []Transaction {
	out := make([]Transaction, 0)
	for i := len(j.txns) - 1; i >= 0; i-- {
		t := j.txns[i]
		for _, p := range t.Postings {
			if p.AccountID == acctID {
				out = append(out, *t)
				break
			}
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
