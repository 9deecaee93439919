package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanbacker/internal/types"
)

func testPrediction(t *testing.T) *RevenuePrediction {
	t.Helper()
	pred, err := NewPredictionService().Predict(validPredictionInput())
	require.NoError(t, err)
	return pred
}

func TestCalculateReturns(t *testing.T) {
	svc := NewReturnsService(types.MoneyFromRupees(1000))
	pred := testPrediction(t)

	amount := pred.InvestmentTotal / 10
	returns, err := svc.Calculate(amount, pred, 40)
	require.NoError(t, err)

	assert.InDelta(t, 10, returns.OwnershipPct, 1e-9)
	assert.InDelta(t, pred.InvestorShare3M/10, returns.Returns3M, 1e-6)
	assert.InDelta(t, pred.InvestorShare12M/10, returns.Returns12M, 1e-6)
	assert.InDelta(t, 4, returns.PoolSharePct, 1e-9, "10 percent ownership of a 40 percent pool")
	assert.InDelta(t, 100*(returns.Returns3M-amount)/amount, returns.ROI3M, 1e-9)
}

func TestCalculateReturnsBounds(t *testing.T) {
	svc := NewReturnsService(types.MoneyFromRupees(1000))
	pred := testPrediction(t)

	_, err := svc.Calculate(500, pred, 40)
	assertErrorCode(t, err, "BELOW_MINIMUM_INVESTMENT")

	_, err = svc.Calculate(pred.InvestmentTotal+1, pred, 40)
	assertErrorCode(t, err, "EXCEEDS_CAMPAIGN_CAPACITY")

	_, err = svc.Calculate(5000, nil, 40)
	assert.Error(t, err, "Missing forecast")

	_, err = svc.Calculate(5000, pred, 0)
	assert.Error(t, err, "Pool percentage below range")

	_, err = svc.Calculate(5000, pred, 101)
	assert.Error(t, err, "Pool percentage above range")
}

func TestCalculateReturnsFullOwnership(t *testing.T) {
	svc := NewReturnsService(types.MoneyFromRupees(1000))
	pred := testPrediction(t)

	returns, err := svc.Calculate(pred.InvestmentTotal, pred, 40)
	require.NoError(t, err)

	assert.InDelta(t, 100, returns.OwnershipPct, 1e-9)
	assert.InDelta(t, pred.InvestorShare12M, returns.Returns12M, 1e-6)
}
