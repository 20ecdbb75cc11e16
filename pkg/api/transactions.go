package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"bankledger/pkg/bank"
	"bankledger/pkg/ledger"
)

type transactionRequest struct {
	Type        string          `json:"type"`
	AccountID   string          `json:"account_id"`
	RecipientID string          `json:"recipient_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// handleCommitTransaction runs a proposed transaction through the ledger.
// Rule rejections come back as 422 with a stable reason label; a lock timeout
// is 503 and safe to retry.
func (s *Server) handleCommitTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}

	tx, err := s.processor.Commit(r.Context(), ledger.Request{
		Type:        bank.TransactionType(req.Type),
		AccountID:   req.AccountID,
		RecipientID: req.RecipientID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.cache != nil {
		s.cache.Observe(r.Context(), tx)
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.store.ListTransactions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

// handleGetTransaction reads through the transaction cache when one is wired,
// falling back to the store otherwise.
func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var (
		tx  *bank.Transaction
		err error
	)
	if s.cache != nil {
		tx, err = s.cache.Get(r.Context(), id)
	} else {
		tx, err = s.store.GetTransaction(r.Context(), id)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}
