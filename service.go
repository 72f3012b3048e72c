package bankgo

import (
	"io"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type OpenAccountReq struct {
	AcctID snowflake.ID
	Type   AccountType `json:"type"`

	// Optional policy overrides; zero values fall back to bank defaults.
	OverdraftLimit Money           `json:"overdraft_limit"`
	FeePercent     decimal.Decimal `json:"fee_percent"`
	MinFee         Money           `json:"min_fee"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
}

type ChargeReq struct {
	AcctID snowflake.ID
	Amount Money     `json:"amount"`
	Memo   string    `json:"memo"`
	Ref    uuid.UUID `json:"ref"`
}

type TransferReq struct {
	FromID snowflake.ID `json:"from_id"`
	ToID   snowflake.ID `json:"to_id"`
	Amount Money        `json:"amount"`
	Memo   string       `json:"memo"`
	Ref    uuid.UUID    `json:"ref"`
}

type InterestReq struct {
	AcctID     snowflake.ID
	PeriodRate decimal.Decimal `json:"period_rate"`
}

type BalanceReq struct {
	AcctID snowflake.ID
}

type HistoryReq struct {
	AcctID snowflake.ID
	Limit  int
}

type CloseAccountReq struct {
	AcctID snowflake.ID
}

type StatementReq struct {
	AcctID snowflake.ID
}

// Service is the caller-facing surface over the ledger engine. Adapters
// (HTTP, middlewares, mocks) compose against this seam.
type Service interface {
	OpenAccount(OpenAccountReq) (*AccountSummary, error)
	Deposit(ChargeReq) (*Transaction, error)
	Transfer(TransferReq) (*Transaction, error)
	AccrueInterest(InterestReq) (*Transaction, error)
	Balance(BalanceReq) (*Money, error)
	AccountHistory(HistoryReq) ([]Transaction, error)
	BankHistory(HistoryReq) ([]Transaction, error)
	CloseAccount(CloseAccountReq) error
	Statement(io.Writer, StatementReq) error
}

func NewService(bank *Bank, log *zerolog.Logger) *serviceImpl {
	return &serviceImpl{
		bank: bank,
		log:  log,
	}
}

type serviceImpl struct {
	bank *Bank
	log  *zerolog.Logger
}

var _ Service = (*serviceImpl)(nil)

func (s *serviceImpl) OpenAccount(req OpenAccountReq) (*AccountSummary, error) {
	opts := AccountOpts{
		OverdraftLimit: req.OverdraftLimit,
		FeePercent:     req.FeePercent,
		MinFee:         req.MinFee,
		InterestRate:   req.InterestRate,
	}
	id, err := s.bank.OpenAccount(req.AcctID, req.Type, opts)
	if err != nil {
		s.log.Err(err).Str("method", "open_account").Msg("open account failed")
		return nil, err
	}
	summary, err := s.bank.Summary(id)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *serviceImpl) Deposit(req ChargeReq) (*Transaction, error) {
	txn, err := s.bank.Deposit(req.AcctID, req.Amount, req.Memo, req.Ref)
	if err != nil {
		s.log.Err(err).
			Str("method", "deposit").
			Stringer("acct_id", req.AcctID).
			Msg("deposit failed")
		return nil, err
	}
	return txn, nil
}

func (s *serviceImpl) Transfer(req TransferReq) (*Transaction, error) {
	txn, err := s.bank.Transfer(req.FromID, req.ToID, req.Amount, req.Memo, req.Ref)
	if err != nil {
		s.log.Err(err).
			Str("method", "transfer").
			Stringer("from_id", req.FromID).
			Stringer("to_id", req.ToID).
			Msg("transfer failed")
		return nil, err
	}
	return txn, nil
}

func (s *serviceImpl) AccrueInterest(req InterestReq) (*Transaction, error) {
	txn, err := s.bank.AccrueInterest(req.AcctID, req.PeriodRate)
	if err != nil {
		s.log.Err(err).
			Str("method", "accrue_interest").
			Stringer("acct_id", req.AcctID).
			Msg("interest accrual failed")
		return nil, err
	}
	return txn, nil
}

func (s *serviceImpl) Balance(req BalanceReq) (*Money, error) {
	bal, err := s.bank.Balance(req.AcctID)
	if err != nil {
		return nil, err
	}
	return &bal, nil
}

func (s *serviceImpl) AccountHistory(req HistoryReq) ([]Transaction, error) {
	return s.bank.AccountHistory(req.AcctID, req.Limit)
}

func (s *serviceImpl) BankHistory(req HistoryReq) ([]Transaction, error) {
	return s.bank.BankHistory(req.Limit), nil
}

func (s *serviceImpl) CloseAccount(req CloseAccountReq) error {
	if err := s.bank.CloseAccount(req.AcctID); err != nil {
		s.log.Err(err).
			Str("method", "close_account").
			Stringer("acct_id", req.AcctID).
			Msg("close account failed")
		return err
	}
	return nil
}

func (s *serviceImpl) Statement(w io.Writer, req StatementReq) error {
	summary, err := s.bank.Summary(req.AcctID)
	if err != nil {
		return err
	}
	entries, err := s.bank.Entries(req.AcctID, 0)
	if err != nil {
		return err
	}
	return writeStatementPDF(w, summary, entries)
}
