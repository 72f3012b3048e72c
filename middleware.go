package bankgo

import (
	"context"
	"io"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"
)

type Middleware func(Service) Service

//
// Validation middleware
//

// validationMiddleware rejects structurally bad requests before they reach
// the engine. The engine still enforces its own invariants; this layer
// exists so adapters get field-level errors for trivially bad input.
type validationMiddleware struct {
	next Service
}

var (
	_ Service = (*validationMiddleware)(nil)
)

func NewValidationMiddleware() Middleware {
	return func(next Service) Service {
		return &validationMiddleware{next: next}
	}
}

func (v *validationMiddleware) OpenAccount(req OpenAccountReq) (*AccountSummary, error) {
	fields := make(map[string]string)
	if req.Type == "" {
		fields["type"] = "missing"
	}
	if req.OverdraftLimit.IsNegative() {
		fields["overdraft_limit"] = "must not be negative"
	}
	if req.FeePercent.IsNegative() {
		fields["fee_percent"] = "must not be negative"
	}
	if req.MinFee.IsNegative() {
		fields["min_fee"] = "must not be negative"
	}
	if req.InterestRate.IsNegative() {
		fields["interest_rate"] = "must not be negative"
	}
	if len(fields) > 0 {
		return nil, ErrBadRequest{Fields: fields}
	}
	return v.next.OpenAccount(req)
}

func (v *validationMiddleware) Deposit(req ChargeReq) (*Transaction, error) {
	fields := make(map[string]string)
	if req.AcctID == 0 {
		fields["acct_id"] = "missing"
	}
	if !req.Amount.IsPositive() {
		fields["amount"] = "must be positive"
	}
	if len(fields) > 0 {
		return nil, ErrBadRequest{Fields: fields}
	}
	return v.next.Deposit(req)
}

func (v *validationMiddleware) Transfer(req TransferReq) (*Transaction, error) {
	fields := make(map[string]string)
	if req.FromID == 0 {
		fields["from_id"] = "missing"
	}
	if req.ToID == 0 {
		fields["to_id"] = "missing"
	}
	if req.FromID != 0 && req.FromID == req.ToID {
		fields["to_id"] = "must differ from from_id"
	}
	if !req.Amount.IsPositive() {
		fields["amount"] = "must be positive"
	}
	if len(fields) > 0 {
		return nil, ErrBadRequest{Fields: fields}
	}
	return v.next.Transfer(req)
}

func (v *validationMiddleware) AccrueInterest(req InterestReq) (*Transaction, error) {
	fields := make(map[string]string)
	if req.AcctID == 0 {
		fields["acct_id"] = "missing"
	}
	if req.PeriodRate.Sign() <= 0 {
		fields["period_rate"] = "must be positive"
	}
	if len(fields) > 0 {
		return nil, ErrBadRequest{Fields: fields}
	}
	return v.next.AccrueInterest(req)
}

func (v *validationMiddleware) Balance(req BalanceReq) (*Money, error) {
	if req.AcctID == 0 {
		return nil, ErrBadRequest{Fields: map[string]string{"acct_id": "missing"}}
	}
	return v.next.Balance(req)
}

func (v *validationMiddleware) AccountHistory(req HistoryReq) ([]Transaction, error) {
	fields := make(map[string]string)
	if req.AcctID == 0 {
		fields["acct_id"] = "missing"
	}
	if req.Limit < 0 {
		fields["limit"] = "must not be negative"
	}
	if len(fields) > 0 {
		return nil, ErrBadRequest{Fields: fields}
	}
	return v.next.AccountHistory(req)
}

func (v *validationMiddleware) BankHistory(req HistoryReq) ([]Transaction, error) {
	if req.Limit < 0 {
		return nil, ErrBadRequest{Fields: map[string]string{"limit": "must not be negative"}}
	}
	return v.next.BankHistory(req)
}

func (v *validationMiddleware) CloseAccount(req CloseAccountReq) error {
	if req.AcctID == 0 {
		return ErrBadRequest{Fields: map[string]string{"acct_id": "missing"}}
	}
	return v.next.CloseAccount(req)
}

func (v *validationMiddleware) Statement(w io.Writer, req StatementReq) error {
	if req.AcctID == 0 {
		return ErrBadRequest{Fields: map[string]string{"acct_id": "missing"}}
	}
	return v.next.Statement(w, req)
}

//
// Rate limiting middlewares
//

// limitMiddleware bounds the number of in-flight requests per operation
// with weighted semaphores. Acquisition waits up to acquireTimeout before
// shedding the request with ErrOverloaded.
type limitMiddleware struct {
	next   Service
	limits *ServiceLimits
}

var (
	_ Service = (*limitMiddleware)(nil)
)

const acquireTimeout = time.Second

type ServiceLimits struct {
	OpenAccount    *semaphore.Weighted
	Deposit        *semaphore.Weighted
	Transfer       *semaphore.Weighted
	AccrueInterest *semaphore.Weighted
	Balance        *semaphore.Weighted
	History        *semaphore.Weighted
	CloseAccount   *semaphore.Weighted
	Statement      *semaphore.Weighted
}

// NewServiceLimits sizes every operation's semaphore from n, with reads
// allowed twice the write capacity.
func NewServiceLimits(n int64) *ServiceLimits {
	return &ServiceLimits{
		OpenAccount:    semaphore.NewWeighted(n),
		Deposit:        semaphore.NewWeighted(n),
		Transfer:       semaphore.NewWeighted(n),
		AccrueInterest: semaphore.NewWeighted(n),
		Balance:        semaphore.NewWeighted(2 * n),
		History:        semaphore.NewWeighted(2 * n),
		CloseAccount:   semaphore.NewWeighted(n),
		Statement:      semaphore.NewWeighted(n),
	}
}

func NewLimitMiddleware(limits *ServiceLimits) Middleware {
	return func(next Service) Service {
		return &limitMiddleware{
			next:   next,
			limits: limits,
		}
	}
}

func acquire(sem *semaphore.Weighted) (release func(), err error) {
	ctx, cancel := context.WithTimeout(context.Background(), acquireTimeout)
	defer cancel()
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, ErrOverloaded
	}
	return func() { sem.Release(1) }, nil
}

func (l *limitMiddleware) OpenAccount(req OpenAccountReq) (*AccountSummary, error) {
	release, err := acquire(l.limits.OpenAccount)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.OpenAccount(req)
}

func (l *limitMiddleware) Deposit(req ChargeReq) (*Transaction, error) {
	release, err := acquire(l.limits.Deposit)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Deposit(req)
}

func (l *limitMiddleware) Transfer(req TransferReq) (*Transaction, error) {
	release, err := acquire(l.limits.Transfer)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Transfer(req)
}

func (l *limitMiddleware) AccrueInterest(req InterestReq) (*Transaction, error) {
	release, err := acquire(l.limits.AccrueInterest)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.AccrueInterest(req)
}

func (l *limitMiddleware) Balance(req BalanceReq) (*Money, error) {
	release, err := acquire(l.limits.Balance)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Balance(req)
}

func (l *limitMiddleware) AccountHistory(req HistoryReq) ([]Transaction, error) {
	release, err := acquire(l.limits.History)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.AccountHistory(req)
}

func (l *limitMiddleware) BankHistory(req HistoryReq) ([]Transaction, error) {
	release, err := acquire(l.limits.History)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.BankHistory(req)
}

func (l *limitMiddleware) CloseAccount(req CloseAccountReq) error {
	release, err := acquire(l.limits.CloseAccount)
	if err != nil {
		return err
	}
	defer release()
	return l.next.CloseAccount(req)
}

func (l *limitMiddleware) Statement(w io.Writer, req StatementReq) error {
	release, err := acquire(l.limits.Statement)
	if err != nil {
		return err
	}
	defer release()
	return l.next.Statement(w, req)
}

// ServiceBreaker holds one two-step breaker per operation. Caller input
// errors do not count as failures; only infrastructure-level faults (e.g.
// sustained overload) trip a breaker.
type ServiceBreaker struct {
	OpenAccount    *gobreaker.TwoStepCircuitBreaker[*AccountSummary]
	Deposit        *gobreaker.TwoStepCircuitBreaker[*Transaction]
	Transfer       *gobreaker.TwoStepCircuitBreaker[*Transaction]
	AccrueInterest *gobreaker.TwoStepCircuitBreaker[*Transaction]
	Balance        *gobreaker.TwoStepCircuitBreaker[*Money]
	History        *gobreaker.TwoStepCircuitBreaker[[]Transaction]
	CloseAccount   *gobreaker.TwoStepCircuitBreaker[interface{}]
	Statement      *gobreaker.TwoStepCircuitBreaker[interface{}]
}

func NewServiceBreaker(st gobreaker.Settings) *ServiceBreaker {
	return &ServiceBreaker{
		OpenAccount:    gobreaker.NewTwoStepCircuitBreaker[*AccountSummary](st),
		Deposit:        gobreaker.NewTwoStepCircuitBreaker[*Transaction](st),
		Transfer:       gobreaker.NewTwoStepCircuitBreaker[*Transaction](st),
		AccrueInterest: gobreaker.NewTwoStepCircuitBreaker[*Transaction](st),
		Balance:        gobreaker.NewTwoStepCircuitBreaker[*Money](st),
		History:        gobreaker.NewTwoStepCircuitBreaker[[]Transaction](st),
		CloseAccount:   gobreaker.NewTwoStepCircuitBreaker[interface{}](st),
		Statement:      gobreaker.NewTwoStepCircuitBreaker[interface{}](st),
	}
}

// circuitBreakMiddleware works in conjunction with limitMiddleware: when
// the service is shedding load or failing internally for long enough, the
// breaker opens and requests fail fast until the service recovers.
type circuitBreakMiddleware struct {
	next  Service
	brkrs *ServiceBreaker
}

var (
	_ Service = (*circuitBreakMiddleware)(nil)
)

func NewCircuitBreakMiddleware(brkrs *ServiceBreaker) Middleware {
	return func(next Service) Service {
		return &circuitBreakMiddleware{
			next:  next,
			brkrs: brkrs,
		}
	}
}

// outcome records the call against the breaker. Caller faults are
// successes from the breaker's point of view.
func outcome(done func(bool), err error) {
	done(err == nil || callerFault(err))
}

func (c *circuitBreakMiddleware) OpenAccount(req OpenAccountReq) (*AccountSummary, error) {
	done, err := c.brkrs.OpenAccount.Allow()
	if err != nil {
		return nil, err
	}
	summary, err := c.next.OpenAccount(req)
	outcome(done, err)
	return summary, err
}

func (c *circuitBreakMiddleware) Deposit(req ChargeReq) (*Transaction, error) {
	done, err := c.brkrs.Deposit.Allow()
	if err != nil {
		return nil, err
	}
	txn, err := c.next.Deposit(req)
	outcome(done, err)
	return txn, err
}

func (c *circuitBreakMiddleware) Transfer(req TransferReq) (*Transaction, error) {
	done, err := c.brkrs.Transfer.Allow()
	if err != nil {
		return nil, err
	}
	txn, err := c.next.Transfer(req)
	outcome(done, err)
	return txn, err
}

func (c *circuitBreakMiddleware) AccrueInterest(req InterestReq) (*Transaction, error) {
	done, err := c.brkrs.AccrueInterest.Allow()
	if err != nil {
		return nil, err
	}
	txn, err := c.next.AccrueInterest(req)
	outcome(done, err)
	return txn, err
}

func (c *circuitBreakMiddleware) Balance(req BalanceReq) (*Money, error) {
	done, err := c.brkrs.Balance.Allow()
	if err != nil {
		return nil, err
	}
	bal, err := c.next.Balance(req)
	outcome(done, err)
	return bal, err
}

func (c *circuitBreakMiddleware) AccountHistory(req HistoryReq) ([]Transaction, error) {
	done, err := c.brkrs.History.Allow()
	if err != nil {
		return nil, err
	}
	txns, err := c.next.AccountHistory(req)
	outcome(done, err)
	return txns, err
}

func (c *circuitBreakMiddleware) BankHistory(req HistoryReq) ([]Transaction, error) {
	done, err := c.brkrs.History.Allow()
	if err != nil {
		return nil, err
	}
	txns, err := c.next.BankHistory(req)
	outcome(done, err)
	return txns, err
}

func (c *circuitBreakMiddleware) CloseAccount(req CloseAccountReq) error {
	done, err := c.brkrs.CloseAccount.Allow()
	if err != nil {
		return err
	}
	err = c.next.CloseAccount(req)
	outcome(done, err)
	return err
}

func (c *circuitBreakMiddleware) Statement(w io.Writer, req StatementReq) error {
	done, err := c.brkrs.Statement.Allow()
	if err != nil {
		return err
	}
	err = c.next.Statement(w, req)
	outcome(done, err)
	return err
}
