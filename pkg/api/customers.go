package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"bankledger/pkg/bank"
	"bankledger/pkg/store"
)

type customerRequest struct {
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	DateOfBirth time.Time        `json:"date_of_birth"`
	ContactInfo bank.ContactInfo `json:"contact_info"`
	Address     bank.Address     `json:"address"`
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}

	c := &bank.Customer{
		ID:          bank.NewID(),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		ContactInfo: req.ContactInfo,
		Address:     req.Address,
	}
	if err := c.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.CreateCustomer(r.Context(), c); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.store.ListCustomers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetCustomer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type customerUpdateRequest struct {
	FirstName   *string           `json:"first_name"`
	LastName    *string           `json:"last_name"`
	ContactInfo *bank.ContactInfo `json:"contact_info"`
	Address     *bank.Address     `json:"address"`
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}

	c, err := s.store.UpdateCustomer(r.Context(), mux.Vars(r)["id"], store.CustomerUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		ContactInfo: req.ContactInfo,
		Address:     req.Address,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCustomer(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCustomerAccounts(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ok, err := s.store.CustomerExists(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, r, bank.ErrNotFound)
		return
	}

	accounts, err := s.store.ListAccountsByCustomer(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// handleCustomerTransactions returns every transaction touching one of the
// customer's accounts, as source or recipient.
func (s *Server) handleCustomerTransactions(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ok, err := s.store.CustomerExists(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, r, bank.ErrNotFound)
		return
	}

	accounts, err := s.store.ListAccountsByCustomer(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ids := make([]string, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}

	transactions, err := s.store.ListTransactionsByAccounts(r.Context(), ids)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}
