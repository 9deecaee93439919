package service

import (
	"github.com/fanbacker/internal/errors"
	"github.com/fanbacker/internal/types"
)

// InvestorReturns projects one investor's payouts for a chosen investment
// amount. Percentages are in [0, 100]; amounts are rupees.
type InvestorReturns struct {
	InvestmentAmount float64 `json:"investmentAmount"`
	OwnershipPct     float64 `json:"ownershipPct"`
	PoolSharePct     float64 `json:"poolSharePct"`
	Returns3M        float64 `json:"returns3m"`
	Returns6M        float64 `json:"returns6m"`
	Returns12M       float64 `json:"returns12m"`
	ROI3M            float64 `json:"roi3m"`
	ROI6M            float64 `json:"roi6m"`
	ROI12M           float64 `json:"roi12m"`
}

// ReturnsService projects investor payouts from a campaign forecast. Pure
// and side-effect-free.
type ReturnsService struct {
	minInvestment types.Money
}

// NewReturnsService creates a new returns service. minInvestment is the
// platform's minimum rupee investment for the calculator.
func NewReturnsService(minInvestment types.Money) *ReturnsService {
	return &ReturnsService{minInvestment: minInvestment}
}

// Calculate projects returns for investing amount rupees into a campaign
// with the given forecast and investor pool percentage. The campaign's
// capacity here is the prediction-model budget total, which is a different
// quantity from the crowdfunding target.
//
// Both bounds are rejected before anything is computed.
func (s *ReturnsService) Calculate(amount float64, pred *RevenuePrediction, poolPct float64) (*InvestorReturns, error) {
	if pred == nil {
		return nil, errors.NewInvalidParameterError("prediction", "is required")
	}
	if poolPct < 1 || poolPct > 100 {
		return nil, errors.NewInvalidParameterError("investorPoolPercentage", "must be within [1, 100]")
	}
	if types.MoneyFromRupees(amount) < s.minInvestment {
		return nil, errors.NewBelowMinimumAmountError(amount, s.minInvestment.Rupees())
	}
	if amount > pred.InvestmentTotal {
		return nil, errors.NewExceedsCampaignCapacityError(amount, pred.InvestmentTotal)
	}

	ownershipPct := 100 * amount / pred.InvestmentTotal

	returns3m := pred.InvestorShare3M * ownershipPct / 100
	returns6m := pred.InvestorShare6M * ownershipPct / 100
	returns12m := pred.InvestorShare12M * ownershipPct / 100

	return &InvestorReturns{
		InvestmentAmount: amount,
		OwnershipPct:     ownershipPct,
		PoolSharePct:     ownershipPct / 100 * poolPct,
		Returns3M:        returns3m,
		Returns6M:        returns6m,
		Returns12M:       returns12m,
		ROI3M:            100 * (returns3m - amount) / amount,
		ROI6M:            100 * (returns6m - amount) / amount,
		ROI12M:           100 * (returns12m - amount) / amount,
	}, nil
}
