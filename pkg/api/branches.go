package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"bankledger/pkg/bank"
	"bankledger/pkg/store"
)

type branchRequest struct {
	Name        string           `json:"name"`
	Address     bank.Address     `json:"address"`
	ContactInfo bank.ContactInfo `json:"contact_info"`
}

func (s *Server) handleCreateBranch(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}

	b := &bank.Branch{
		ID:          bank.NewID(),
		Name:        req.Name,
		Address:     req.Address,
		ContactInfo: req.ContactInfo,
	}
	if err := b.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.CreateBranch(r.Context(), b); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleListBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := s.store.ListBranches(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, branches)
}

func (s *Server) handleGetBranch(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.GetBranch(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type branchUpdateRequest struct {
	Name        *string           `json:"name"`
	ContactInfo *bank.ContactInfo `json:"contact_info"`
	Address     *bank.Address     `json:"address"`
}

func (s *Server) handleUpdateBranch(w http.ResponseWriter, r *http.Request) {
	var req branchUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}

	b, err := s.store.UpdateBranch(r.Context(), mux.Vars(r)["id"], store.BranchUpdate{
		Name:        req.Name,
		ContactInfo: req.ContactInfo,
		Address:     req.Address,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBranch(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBranch(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
