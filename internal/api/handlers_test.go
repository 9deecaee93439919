package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fanbacker/internal/errors"
	"github.com/fanbacker/internal/models"
	"github.com/fanbacker/internal/service"
	"github.com/fanbacker/internal/types"
)

func doJSON(t *testing.T, server *Server, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)
	return w
}

func asInvestor() map[string]string {
	return map[string]string{"X-User-ID": "investor-1", "X-User-Role": "investor"}
}

func asArtist() map[string]string {
	return map[string]string{"X-User-ID": "artist-1", "X-User-Role": "artist"}
}

func TestCreateCampaign_RequiresIdentity(t *testing.T) {
	server := createTestServer()

	w := doJSON(t, server, "POST", "/api/campaigns", map[string]interface{}{"title": "x"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestCreateCampaign_InvalidJSON(t *testing.T) {
	server := createTestServer()

	req := httptest.NewRequest("POST", "/api/campaigns", bytes.NewReader([]byte("not json")))
	req.Header.Set("X-User-ID", "artist-1")
	req.Header.Set("X-User-Role", "artist")
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestCreateCampaign_Success(t *testing.T) {
	server := createTestServer()

	w := doJSON(t, server, "POST", "/api/campaigns", map[string]interface{}{
		"title":           "Midnight Drive",
		"genre":           "pop",
		"targetAmount":    20000,
		"partitionPrice":  1000,
		"revenueSharePct": 40,
		"viralFactor":     "medium",
		"durationMonths":  3,
	}, asArtist())

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestInvest_Success(t *testing.T) {
	server := createTestServer()

	w := doJSON(t, server, "POST", "/api/campaigns/campaign-1/invest", map[string]interface{}{
		"partitions": 3,
	}, asInvestor())

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var result service.InvestmentResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Holding.PartitionsOwned != 3 {
		t.Errorf("Expected 3 partitions, got %d", result.Holding.PartitionsOwned)
	}
}

func TestInvest_ServiceErrorMapped(t *testing.T) {
	server := createTestServer()
	mock := server.investmentService.(*mockInvestmentService)
	mock.executeFunc = func(ctx context.Context, investorID string, req service.InvestmentRequest) (*service.InvestmentResult, error) {
		return nil, errors.NewInsufficientInventoryError(req.Partitions, 2)
	}

	w := doJSON(t, server, "POST", "/api/campaigns/campaign-1/invest", map[string]interface{}{
		"partitions": 10,
	}, asInvestor())

	if w.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d: %s", w.Code, w.Body.String())
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Error.Code != "INSUFFICIENT_INVENTORY" {
		t.Errorf("Expected INSUFFICIENT_INVENTORY, got %s", resp.Error.Code)
	}
}

func TestInvest_RequiresIdentity(t *testing.T) {
	server := createTestServer()

	w := doJSON(t, server, "POST", "/api/campaigns/campaign-1/invest", map[string]interface{}{
		"partitions": 3,
	}, nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestCalculateReturns(t *testing.T) {
	server := createTestServer()

	w := doJSON(t, server, "GET", "/api/campaigns/campaign-1/returns?amount=15000", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var returns service.InvestorReturns
	if err := json.NewDecoder(w.Body).Decode(&returns); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if returns.OwnershipPct <= 0 {
		t.Errorf("Expected positive ownership, got %v", returns.OwnershipPct)
	}
}

// Stored campaign details never carry a forecast, so the returns endpoint
// must fetch one itself rather than reading it off the details.
func TestCalculateReturns_StoredCampaignWithoutForecast(t *testing.T) {
	server := createTestServer()
	mock := server.campaignService.(*mockCampaignService)
	mock.getFunc = func(ctx context.Context, campaignID string) (*service.CampaignDetails, error) {
		return sampleCampaignDetails(campaignID), nil
	}

	w := doJSON(t, server, "GET", "/api/campaigns/campaign-1/returns?amount=2000", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var returns service.InvestorReturns
	if err := json.NewDecoder(w.Body).Decode(&returns); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if returns.OwnershipPct <= 0 {
		t.Errorf("Expected positive ownership, got %v", returns.OwnershipPct)
	}
}

func TestCalculateReturns_MissingAmount(t *testing.T) {
	server := createTestServer()

	w := doJSON(t, server, "GET", "/api/campaigns/campaign-1/returns", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestDeposit_Success(t *testing.T) {
	server := createTestServer()

	w := doJSON(t, server, "POST", "/api/wallet/deposit", map[string]interface{}{
		"amount": 500,
	}, asInvestor())

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDeposit_BoundsErrorMapped(t *testing.T) {
	server := createTestServer()
	mock := server.walletService.(*mockWalletService)
	mock.depositFunc = func(ctx context.Context, userID string, amount types.Money) (*models.Wallet, *models.WalletTransaction, error) {
		return nil, nil, errors.NewInvalidAmountError("deposit out of bounds")
	}

	w := doJSON(t, server, "POST", "/api/wallet/deposit", map[string]interface{}{
		"amount": 1,
	}, asInvestor())

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestDistribute_AlreadyDistributedMapped(t *testing.T) {
	server := createTestServer()
	mock := server.distributionService.(*mockDistributionService)
	mock.distributeFunc = func(ctx context.Context, callerID, reportingEventID string) (*models.Distribution, error) {
		return nil, errors.NewAlreadyDistributedError(reportingEventID)
	}

	w := doJSON(t, server, "POST", "/api/revenue/evt-1/distribute", nil, asArtist())

	if w.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d: %s", w.Code, w.Body.String())
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Error.Code != "ALREADY_DISTRIBUTED" {
		t.Errorf("Expected ALREADY_DISTRIBUTED, got %s", resp.Error.Code)
	}
}

func TestGetWallet(t *testing.T) {
	server := createTestServer()

	w := doJSON(t, server, "GET", "/api/wallet", nil, asInvestor())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var wallet models.Wallet
	if err := json.NewDecoder(w.Body).Decode(&wallet); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if wallet.UserID != "investor-1" {
		t.Errorf("Expected wallet for investor-1, got %s", wallet.UserID)
	}
}

func TestGetPortfolio_RequiresIdentity(t *testing.T) {
	server := createTestServer()

	w := doJSON(t, server, "GET", "/api/portfolio", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}
