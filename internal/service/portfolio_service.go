package service

import (
	"context"

	"github.com/fanbacker/internal/errors"
	"github.com/fanbacker/internal/logging"
	"github.com/fanbacker/internal/models"
	"github.com/fanbacker/internal/storage"
	"github.com/fanbacker/internal/types"
)

// PortfolioItem is one campaign position in an investor's portfolio.
type PortfolioItem struct {
	Campaign        *models.Campaign `json:"campaign"`
	PartitionsOwned int64            `json:"partitionsOwned"`
	Invested        types.Money      `json:"invested"`
	OwnershipPct    float64          `json:"ownershipPct"`
	Earnings        types.Money      `json:"earnings"`
	Expected12M     float64          `json:"expected12m"`
}

// Portfolio aggregates an investor's holdings across campaigns.
type Portfolio struct {
	Items         []PortfolioItem `json:"items"`
	TotalInvested types.Money     `json:"totalInvested"`
	TotalEarnings types.Money     `json:"totalEarnings"`
}

type PortfolioService struct {
	campaigns  *storage.CampaignRepository
	holdings   *storage.HoldingRepository
	wallets    *storage.WalletRepository
	prediction *PredictionService
	logger     *logging.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(
	campaigns *storage.CampaignRepository,
	holdings *storage.HoldingRepository,
	wallets *storage.WalletRepository,
	prediction *PredictionService,
	logger *logging.Logger,
) *PortfolioService {
	return &PortfolioService{
		campaigns:  campaigns,
		holdings:   holdings,
		wallets:    wallets,
		prediction: prediction,
		logger:     logger,
	}
}

// Get builds the investor's portfolio: each holding joined with its
// campaign, realized earnings from the wallet ledger, and the forecast
// payout for the investor's slice of the pool.
func (s *PortfolioService) Get(ctx context.Context, investorID string) (*Portfolio, error) {
	holdingsList, err := s.holdings.ListByInvestor(ctx, investorID)
	if err != nil {
		return nil, errors.NewDatabaseError("portfolio", err)
	}

	earnings, err := s.wallets.EarningsByCampaign(ctx, investorID)
	if err != nil {
		return nil, errors.NewDatabaseError("portfolio", err)
	}

	portfolio := &Portfolio{Items: make([]PortfolioItem, 0, len(holdingsList))}
	for _, h := range holdingsList {
		campaign, err := s.campaigns.GetByID(ctx, h.CampaignID)
		if err != nil {
			return nil, errors.NewDatabaseError("portfolio", err)
		}

		item := PortfolioItem{
			Campaign:        campaign,
			PartitionsOwned: h.PartitionsOwned,
			Invested:        h.InvestmentAmount,
			Earnings:        earnings[h.CampaignID],
		}
		if campaign.TotalPartitions > 0 {
			item.OwnershipPct = 100 * float64(h.PartitionsOwned) / float64(campaign.TotalPartitions)
		}

		pred, err := s.prediction.Predict(PredictionInput{
			Genre:           campaign.Genre,
			MarketingBudget: campaign.MarketingBudget.Rupees(),
			VideoBudget:     campaign.VideoBudget.Rupees(),
			ArtistFollowers: campaign.ArtistFollowers,
			ViralFactor:     campaign.ViralFactor,
			DurationMonths:  campaign.DurationMonths,
			RevenueSharePct: campaign.RevenueSharePct,
		})
		if err == nil {
			item.Expected12M = pred.InvestorShare12M * item.OwnershipPct / 100
		} else {
			s.logger.WithError(err).WithField("campaignId", campaign.ID).
				Warn("Skipping forecast for portfolio item")
		}

		portfolio.Items = append(portfolio.Items, item)
		portfolio.TotalInvested += h.InvestmentAmount
		portfolio.TotalEarnings += item.Earnings
	}

	return portfolio, nil
}
