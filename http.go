package bankgo

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	statusOK = []byte(`{"status":"OK"}`)
)

func NewHTTPHandler(svc Service, log *zerolog.Logger) http.Handler {
	hndlr := &httpHandler{
		Svc: svc,
		Log: log,
	}
	mux := chi.NewMux()
	mux.NotFound(HTTPNotFound)
	mux.Route("/accounts", func(r chi.Router) {
		r.Post("/", hndlr.OpenAccount)
		r.Route("/{acctID:[0-9]+}", func(rr chi.Router) {
			rr.Post("/deposit", hndlr.Deposit)
			rr.Post("/interest", hndlr.AccrueInterest)
			rr.Get("/balance", hndlr.Balance)
			rr.Get("/history", hndlr.AccountHistory)
			rr.Get("/statement", hndlr.Statement)
			rr.Delete("/", hndlr.CloseAccount)
		})
	})
	mux.Post("/transfers", hndlr.Transfer)
	mux.Get("/history", hndlr.BankHistory)

	return mux
}

type httpHandler struct {
	Svc Service
	Log *zerolog.Logger
}

func (h *httpHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req OpenAccountReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Log.Err(err).Str("method", "open_account").Msg("error unmarshalling JSON")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed JSON"}})
		return
	}
	defer r.Body.Close()

	summary, err := h.Svc.OpenAccount(req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

func (h *httpHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req ChargeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Log.Err(err).Str("method", "deposit").Msg("error unmarshalling JSON")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed JSON"}})
		return
	}
	defer r.Body.Close()

	acctID, err := urlAcctID(r)
	if err != nil {
		h.Log.Err(err).Str("method", "deposit").Msg("error parsing account ID")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"acctID": "invalid format"}})
		return
	}
	req.AcctID = acctID

	txn, err := h.Svc.Deposit(req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (h *httpHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Log.Err(err).Str("method", "transfer").Msg("error unmarshalling JSON")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed JSON"}})
		return
	}
	defer r.Body.Close()

	txn, err := h.Svc.Transfer(req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (h *httpHandler) AccrueInterest(w http.ResponseWriter, r *http.Request) {
	var req InterestReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Log.Err(err).Str("method", "accrue_interest").Msg("error unmarshalling JSON")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed JSON"}})
		return
	}
	defer r.Body.Close()

	acctID, err := urlAcctID(r)
	if err != nil {
		h.Log.Err(err).Str("method", "accrue_interest").Msg("error parsing account ID")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"acctID": "invalid format"}})
		return
	}
	req.AcctID = acctID

	txn, err := h.Svc.AccrueInterest(req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	if txn == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Write(statusOK)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (h *httpHandler) Balance(w http.ResponseWriter, r *http.Request) {
	acctID, err := urlAcctID(r)
	if err != nil {
		h.Log.Err(err).Str("method", "balance").Msg("error parsing account ID")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"acctID": "invalid format"}})
		return
	}

	bal, err := h.Svc.Balance(BalanceReq{AcctID: acctID})
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]Money{"balance": *bal})
}

func (h *httpHandler) AccountHistory(w http.ResponseWriter, r *http.Request) {
	acctID, err := urlAcctID(r)
	if err != nil {
		h.Log.Err(err).Str("method", "account_history").Msg("error parsing account ID")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"acctID": "invalid format"}})
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"limit": "invalid format"}})
		return
	}

	txns, err := h.Svc.AccountHistory(HistoryReq{AcctID: acctID, Limit: limit})
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]Transaction{"transactions": txns})
}

func (h *httpHandler) BankHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"limit": "invalid format"}})
		return
	}

	txns, err := h.Svc.BankHistory(HistoryReq{Limit: limit})
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]Transaction{"transactions": txns})
}

func (h *httpHandler) Statement(w http.ResponseWriter, r *http.Request) {
	acctID, err := urlAcctID(r)
	if err != nil {
		h.Log.Err(err).Str("method", "statement").Msg("error parsing account ID")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"acctID": "invalid format"}})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	if err = h.Svc.Statement(w, StatementReq{AcctID: acctID}); err != nil {
		WriteHTTPError(w, err)
		return
	}
}

func (h *httpHandler) CloseAccount(w http.ResponseWriter, r *http.Request) {
	acctID, err := urlAcctID(r)
	if err != nil {
		h.Log.Err(err).Str("method", "close_account").Msg("error parsing account ID")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"acctID": "invalid format"}})
		return
	}

	if err := h.Svc.CloseAccount(CloseAccountReq{AcctID: acctID}); err != nil {
		WriteHTTPError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(statusOK)
}

func urlAcctID(r *http.Request) (snowflake.ID, error) {
	return snowflake.ParseString(chi.URLParam(r, "acctID"))
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("response encoding failed")
	}
}

func WriteHTTPError(w http.ResponseWriter, err error) {
	var ne error
	defer func() {
		if ne != nil {
			log.Error().
				Err(ne).
				Msg("error response encoding failed")
		}
	}()

	w.Header().Set("Content-Type", "application/json")

	var (
		eua ErrUnknownAccount
		ebr ErrBadRequest
		eia ErrInvalidAmount
		esa ErrSameAccount
		eut ErrUnknownAccountType
		edu ErrDuplicateAccountID
		eac ErrAccountClosed
		eal ErrAlreadyClosed
		eif ErrInsufficientFunds
		enz ErrNonZeroBalance
		ene ErrNotEligible
	)
	switch {
	case errors.As(err, &eua):
		w.WriteHeader(http.StatusNotFound)
		ne = json.NewEncoder(w).Encode(eua)
	case errors.As(err, &ebr):
		w.WriteHeader(http.StatusBadRequest)
		ne = json.NewEncoder(w).Encode(ebr)
	case errors.As(err, &eia):
		w.WriteHeader(http.StatusBadRequest)
		ne = json.NewEncoder(w).Encode(eia)
	case errors.As(err, &esa):
		w.WriteHeader(http.StatusBadRequest)
		ne = json.NewEncoder(w).Encode(esa)
	case errors.As(err, &eut):
		w.WriteHeader(http.StatusBadRequest)
		ne = json.NewEncoder(w).Encode(eut)
	case errors.As(err, &edu):
		w.WriteHeader(http.StatusConflict)
		ne = json.NewEncoder(w).Encode(edu)
	case errors.As(err, &eac):
		w.WriteHeader(http.StatusConflict)
		ne = json.NewEncoder(w).Encode(eac)
	case errors.As(err, &eal):
		w.WriteHeader(http.StatusConflict)
		ne = json.NewEncoder(w).Encode(eal)
	case errors.As(err, &eif):
		w.WriteHeader(http.StatusConflict)
		ne = json.NewEncoder(w).Encode(eif)
	case errors.As(err, &enz):
		w.WriteHeader(http.StatusConflict)
		ne = json.NewEncoder(w).Encode(enz)
	case errors.As(err, &ene):
		w.WriteHeader(http.StatusConflict)
		ne = json.NewEncoder(w).Encode(ene)
	case errors.Is(err, ErrOverloaded):
		w.WriteHeader(http.StatusServiceUnavailable)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": "overloaded, retry later"})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": "server error"})
	}
}

func HTTPNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]string{
		"path": r.URL.Path,
	}
	json.NewEncoder(w).Encode(resp)
}
