// Package service implements the campaign economics engine: partition math,
// revenue forecasting, wallet ledger operations, investment settlement and
// pro-rata revenue distribution.
package service

import (
	"github.com/fanbacker/internal/errors"
	"github.com/fanbacker/internal/types"
)

// EconomicsService derives partition counts, pricing and availability from
// campaign amounts. All methods are pure functions over snapshot data.
type EconomicsService struct{}

// NewEconomicsService creates a new economics service
func NewEconomicsService() *EconomicsService {
	return &EconomicsService{}
}

// TotalPartitions returns the number of whole partitions a campaign can sell:
// floor(target / price).
func (s *EconomicsService) TotalPartitions(targetAmount, partitionPrice types.Money) (int64, error) {
	if partitionPrice <= 0 {
		return 0, errors.NewInvalidConfigurationError("partition price must be positive")
	}
	if targetAmount < 0 {
		return 0, errors.NewInvalidConfigurationError("target amount must not be negative")
	}
	return int64(targetAmount / partitionPrice), nil
}

// FundingPercentage returns the funding progress clamped to [0, 100] for
// display. RawFundingPercentage keeps the unclamped value for analytics.
func (s *EconomicsService) FundingPercentage(amountRaised, targetAmount types.Money) (float64, error) {
	raw, err := s.RawFundingPercentage(amountRaised, targetAmount)
	if err != nil {
		return 0, err
	}
	if raw < 0 {
		return 0, nil
	}
	if raw > 100 {
		return 100, nil
	}
	return raw, nil
}

// RawFundingPercentage returns the unclamped funding progress.
func (s *EconomicsService) RawFundingPercentage(amountRaised, targetAmount types.Money) (float64, error) {
	if targetAmount <= 0 {
		return 0, errors.NewInvalidConfigurationError("target amount must be positive")
	}
	return 100 * float64(amountRaised) / float64(targetAmount), nil
}

// AvailablePartitions returns the unsold partition count, never negative.
func (s *EconomicsService) AvailablePartitions(totalPartitions, partitionsSold int64) int64 {
	if avail := totalPartitions - partitionsSold; avail > 0 {
		return avail
	}
	return 0
}
