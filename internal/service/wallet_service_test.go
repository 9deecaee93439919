package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/fanbacker/internal/config"
	"github.com/fanbacker/internal/errors"
	"github.com/fanbacker/internal/logging"
	"github.com/fanbacker/internal/storage"
	"github.com/fanbacker/internal/types"
)

func testWalletService() *WalletService {
	policy := config.PolicyConfig{
		MinDeposit:    types.MoneyFromRupees(100),
		MaxDeposit:    types.MoneyFromRupees(100000),
		MinInvestment: types.MoneyFromRupees(1000),
	}
	logger := logging.NewLogger(logging.LevelError, logging.FormatText)
	return NewWalletService(nil, nil, nil, policy, logger)
}

// Policy bounds are rejected before any storage access, so these paths are
// testable without a database.
func TestDepositBounds(t *testing.T) {
	svc := testWalletService()
	ctx := context.Background()

	if _, _, err := svc.Deposit(ctx, "user-1", types.MoneyFromRupees(50)); err == nil {
		t.Error("Deposit below the minimum must be rejected")
	}
	if _, _, err := svc.Deposit(ctx, "user-1", types.MoneyFromRupees(100001)); err == nil {
		t.Error("Deposit above the maximum must be rejected")
	}
	if _, _, err := svc.Deposit(ctx, "user-1", 0); err == nil {
		t.Error("Zero deposit must be rejected")
	}
	if _, _, err := svc.Deposit(ctx, "user-1", types.MoneyFromRupees(-100)); err == nil {
		t.Error("Negative deposit must be rejected")
	}
}

// Provisioning a wallet for an unknown user surfaces as a not-found for the
// user, not as a database failure.
func TestWalletLookupErrorMapsUnknownUser(t *testing.T) {
	err := walletLookupError("deposit", "ghost", fmt.Errorf("user ghost: %w", storage.ErrNotFound))
	assertErrorCode(t, err, "NOT_FOUND")

	err = walletLookupError("deposit", "user-1", fmt.Errorf("connection reset"))
	ce := errors.Categorize(err)
	if ce.Code != "DATABASE_ERROR" {
		t.Errorf("Expected DATABASE_ERROR for a plain failure, got %s", ce.Code)
	}
}

func TestWithdrawRejectsNonPositive(t *testing.T) {
	svc := testWalletService()
	ctx := context.Background()

	if _, _, err := svc.Withdraw(ctx, "user-1", 0); err == nil {
		t.Error("Zero withdrawal must be rejected")
	}
	if _, _, err := svc.Withdraw(ctx, "user-1", types.MoneyFromRupees(-1)); err == nil {
		t.Error("Negative withdrawal must be rejected")
	}
}
