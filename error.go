package bankgo

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInternalServer = errors.New("internal server error")

	// ErrOverloaded is returned by the load-shedding middleware when an
	// operation cannot acquire capacity within its deadline.
	ErrOverloaded = errors.New("service overloaded")
)

// ErrBadRequest aggregates field-level validation failures surfaced before
// the engine is touched.
type ErrBadRequest struct {
	Fields map[string]string `json:"fields"`
}

func (e ErrBadRequest) Error() string {
	return fmt.Sprintf("missing/invalid params: %v", e.Fields)
}

// ErrInvalidAmount reports a non-positive or over-precision amount.
type ErrInvalidAmount struct {
	Reason string `json:"reason"`
}

func (e ErrInvalidAmount) Error() string {
	return "invalid amount: " + e.Reason
}

type ErrUnknownAccount struct {
	ID snowflake.ID `json:"id"`
}

func (e ErrUnknownAccount) Error() string {
	return fmt.Sprintf("unknown account %s", e.ID)
}

type ErrDuplicateAccountID struct {
	ID snowflake.ID `json:"id"`
}

func (e ErrDuplicateAccountID) Error() string {
	return fmt.Sprintf("account %s already exists", e.ID)
}

// ErrAccountClosed reports an operation against a closed account.
type ErrAccountClosed struct {
	ID snowflake.ID `json:"id"`
}

func (e ErrAccountClosed) Error() string {
	return fmt.Sprintf("account %s is closed", e.ID)
}

// ErrAlreadyClosed reports a close of an account that is closed already.
type ErrAlreadyClosed struct {
	ID snowflake.ID `json:"id"`
}

func (e ErrAlreadyClosed) Error() string {
	return fmt.Sprintf("account %s is already closed", e.ID)
}

type ErrSameAccount struct {
	ID snowflake.ID `json:"id"`
}

func (e ErrSameAccount) Error() string {
	return fmt.Sprintf("transfer source and destination are the same account %s", e.ID)
}

type ErrInsufficientFunds struct {
	ID        snowflake.ID `json:"id"`
	Requested Money        `json:"requested"`
}

func (e ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("account %s cannot cover debit of %s", e.ID, e.Requested)
}

type ErrNonZeroBalance struct {
	ID      snowflake.ID `json:"id"`
	Balance Money        `json:"balance"`
}

func (e ErrNonZeroBalance) Error() string {
	return fmt.Sprintf("account %s has non-zero balance %s", e.ID, e.Balance)
}

// ErrNotEligible reports an operation the account's variant does not
// support, e.g. interest accrual on a non-savings account or closure of an
// internal account.
type ErrNotEligible struct {
	ID   snowflake.ID `json:"id"`
	Type AccountType  `json:"type"`
}

func (e ErrNotEligible) Error() string {
	return fmt.Sprintf("account %s of type %s is not eligible for this operation", e.ID, e.Type)
}

type ErrUnknownAccountType struct {
	Type AccountType `json:"type"`
}

func (e ErrUnknownAccountType) Error() string {
	return fmt.Sprintf("unknown account type %q", string(e.Type))
}

// callerFault reports whether err is one of the caller-recoverable kinds,
// as opposed to an engine or infrastructure failure. The circuit breaker
// middleware must not trip on caller input problems.
func callerFault(err error) bool {
	var (
		ebr ErrBadRequest
		eia ErrInvalidAmount
		eua ErrUnknownAccount
		edu ErrDuplicateAccountID
		eac ErrAccountClosed
		eal ErrAlreadyClosed
		esa ErrSameAccount
		eif ErrInsufficientFunds
		enz ErrNonZeroBalance
		ene ErrNotEligible
		eut ErrUnknownAccountType
	)
	switch {
	case errors.As(err, &ebr), errors.As(err, &eia), errors.As(err, &eua),
		errors.As(err, &edu), errors.As(err, &eac), errors.As(err, &eal),
		errors.As(err, &esa), errors.As(err, &eif), errors.As(err, &enz),
		errors.As(err, &ene), errors.As(err, &eut):
		return true
	}
	return false
}
