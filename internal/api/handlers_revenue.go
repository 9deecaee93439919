package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fanbacker/internal/types"
)

// handleReportRevenue handles POST /api/campaigns/:id/revenue - Report a
// revenue event for later distribution. Amount is in rupees.
func (s *Server) handleReportRevenue(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "User ID required", nil)
		return
	}

	var req struct {
		Amount           float64 `json:"amount"`
		Source           string  `json:"source"`
		ReportingEventID string  `json:"reportingEventId,omitempty"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	event, err := s.distributionService.Report(
		r.Context(), caller, mux.Vars(r)["id"],
		types.MoneyFromRupees(req.Amount), req.Source, req.ReportingEventID,
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, event)
}

// handleDistribute handles POST /api/revenue/:reportingEventId/distribute -
// Settle a reported revenue event across investor wallets
func (s *Server) handleDistribute(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "User ID required", nil)
		return
	}

	distribution, err := s.distributionService.Distribute(r.Context(), caller, mux.Vars(r)["reportingEventId"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, distribution)
}
