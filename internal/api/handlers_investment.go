package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fanbacker/internal/service"
	"github.com/fanbacker/internal/types"
)

// handleInvest handles POST /api/campaigns/:id/invest - Purchase partitions
func (s *Server) handleInvest(w http.ResponseWriter, r *http.Request) {
	investorID := callerID(r)
	if investorID == "" {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "User ID required", nil)
		return
	}

	var req struct {
		Partitions    int64               `json:"partitions"`
		FundingSource types.FundingSource `json:"fundingSource,omitempty"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	result, err := s.investmentService.Execute(r.Context(), investorID, service.InvestmentRequest{
		CampaignID:    mux.Vars(r)["id"],
		Partitions:    req.Partitions,
		FundingSource: req.FundingSource,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// handleGetPortfolio handles GET /api/portfolio - The caller's holdings
func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	investorID := callerID(r)
	if investorID == "" {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "User ID required", nil)
		return
	}

	portfolio, err := s.portfolioService.Get(r.Context(), investorID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, portfolio)
}
