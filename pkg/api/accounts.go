package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"bankledger/pkg/bank"
	"bankledger/pkg/store"
)

type accountRequest struct {
	AccountNumber string    `json:"account_number"`
	CustomerID    string    `json:"customer_id"`
	BranchID      string    `json:"branch_id"`
	OpeningDate   time.Time `json:"opening_date"`
}

// handleCreateAccount opens an account with a zero balance. Money enters only
// through committed transactions.
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}

	opened := req.OpeningDate
	if opened.IsZero() {
		opened = time.Now().UTC()
	}
	number := req.AccountNumber
	if number == "" {
		number = bank.NewAccountNumber(opened)
	}

	a := &bank.Account{
		ID:            bank.NewID(),
		AccountNumber: number,
		CustomerID:    req.CustomerID,
		BranchID:      req.BranchID,
		Balance:       decimal.Zero,
		OpeningDate:   opened,
	}
	if err := s.store.CreateAccount(r.Context(), a); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.GetAccount(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type accountUpdateRequest struct {
	AccountNumber *string          `json:"account_number"`
	BranchID      *string          `json:"branch_id"`
	Balance       *decimal.Decimal `json:"balance"`
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if req.Balance != nil {
		s.writeError(w, r, bank.ErrBalanceImmutable)
		return
	}

	a, err := s.store.UpdateAccount(r.Context(), mux.Vars(r)["id"], store.AccountUpdate{
		AccountNumber: req.AccountNumber,
		BranchID:      req.BranchID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAccount(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
