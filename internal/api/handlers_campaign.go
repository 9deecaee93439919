package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fanbacker/internal/service"
)

// handleCreateCampaign handles POST /api/campaigns - Create a draft campaign
func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	artistID := callerID(r)
	if artistID == "" {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "User ID required", nil)
		return
	}

	var req service.CreateCampaignInput
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	details, err := s.campaignService.Create(r.Context(), artistID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, details)
}

// handleListCampaigns handles GET /api/campaigns - List campaigns
// Lists live campaigns by default; ?artist=<id> lists an artist's campaigns.
func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	if artistID := r.URL.Query().Get("artist"); artistID != "" {
		list, err := s.campaignService.ListByArtist(r.Context(), artistID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
		return
	}

	list, err := s.campaignService.ListLive(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// handleGetCampaign handles GET /api/campaigns/:id - Get campaign details
func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := mux.Vars(r)["id"]
	if campaignID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Campaign ID required", nil)
		return
	}

	details, err := s.campaignService.Get(r.Context(), campaignID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, details)
}

// handlePublishCampaign handles POST /api/campaigns/:id/publish - Open the
// investment window
func (s *Server) handlePublishCampaign(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "User ID required", nil)
		return
	}

	var req struct {
		StartDate *time.Time `json:"startDate,omitempty"`
		EndDate   *time.Time `json:"endDate,omitempty"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	campaign, err := s.campaignService.Publish(r.Context(), caller, mux.Vars(r)["id"], req.StartDate, req.EndDate)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, campaign)
}

// handleCloseCampaign handles POST /api/campaigns/:id/close - Settle a
// finished campaign
func (s *Server) handleCloseCampaign(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "User ID required", nil)
		return
	}

	campaign, err := s.campaignService.Close(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, campaign)
}

// handleGetPrediction handles GET /api/campaigns/:id/prediction - Revenue
// forecast for a campaign
func (s *Server) handleGetPrediction(w http.ResponseWriter, r *http.Request) {
	pred, err := s.campaignService.Predict(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pred)
}

// handleCalculateReturns handles GET /api/campaigns/:id/returns?amount=N -
// Projected returns for a hypothetical investment amount in rupees
func (s *Server) handleCalculateReturns(w http.ResponseWriter, r *http.Request) {
	amountStr := r.URL.Query().Get("amount")
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil || amount <= 0 {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Query parameter 'amount' must be a positive number", nil)
		return
	}

	campaignID := mux.Vars(r)["id"]
	details, err := s.campaignService.Get(r.Context(), campaignID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// The forecast is derived, not stored on the campaign details, so fetch
	// it through the cached prediction path.
	pred, err := s.campaignService.Predict(r.Context(), campaignID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	returns, err := s.returnsService.Calculate(amount, pred, details.Campaign.RevenueSharePct)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, returns)
}

// handleGetAnalytics handles GET /api/campaigns/:id/analytics - Funding and
// revenue analytics for a campaign
func (s *Server) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := s.campaignService.Analytics(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, analytics)
}
