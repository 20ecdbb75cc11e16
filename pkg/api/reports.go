package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleTotalBalance(w http.ResponseWriter, r *http.Request) {
	result, err := s.reports.TotalBalance(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBranchAccountCounts(w http.ResponseWriter, r *http.Request) {
	result, err := s.reports.BranchAccountCounts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTopByTransactions(w http.ResponseWriter, r *http.Request) {
	result, err := s.reports.TopByTransactions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
