package api

import (
	"net/http"
	"strconv"

	"github.com/fanbacker/internal/types"
)

// handleGetWallet handles GET /api/wallet - The caller's wallet
func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "User ID required", nil)
		return
	}

	wallet, err := s.walletService.GetWallet(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, wallet)
}

// walletMutationResponse pairs a wallet snapshot with the ledger entry that
// produced it.
type walletMutationResponse struct {
	Wallet      interface{} `json:"wallet"`
	Transaction interface{} `json:"transaction"`
}

// handleDeposit handles POST /api/wallet/deposit - Add funds. Amount is in
// rupees.
func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "User ID required", nil)
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	wallet, entry, err := s.walletService.Deposit(r.Context(), userID, types.MoneyFromRupees(req.Amount))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, walletMutationResponse{Wallet: wallet, Transaction: entry})
}

// handleWithdraw handles POST /api/wallet/withdraw - Move funds out. Amount
// is in rupees.
func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "User ID required", nil)
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	wallet, entry, err := s.walletService.Withdraw(r.Context(), userID, types.MoneyFromRupees(req.Amount))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, walletMutationResponse{Wallet: wallet, Transaction: entry})
}

// handleGetTransactions handles GET /api/wallet/transactions - Paged ledger
// history, newest first
func (s *Server) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "User ID required", nil)
		return
	}

	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}
	pageSize := 0
	if v := r.URL.Query().Get("pageSize"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			pageSize = n
		}
	}

	history, err := s.walletService.History(r.Context(), userID, page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}
