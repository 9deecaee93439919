package service

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fanbacker/internal/errors"
	"github.com/fanbacker/internal/logging"
	"github.com/fanbacker/internal/models"
	"github.com/fanbacker/internal/storage"
	"github.com/fanbacker/internal/types"
)

// InvestmentRequest is one purchase attempt against a campaign
type InvestmentRequest struct {
	CampaignID    string              `json:"campaignId"`
	Partitions    int64               `json:"partitions"`
	FundingSource types.FundingSource `json:"fundingSource"`
}

// InvestmentResult is the settled outcome of a purchase
type InvestmentResult struct {
	Holding       *models.Holding  `json:"holding"`
	Campaign      *models.Campaign `json:"campaign"`
	AmountPaid    types.Money      `json:"amountPaid"`
	WalletBalance *types.Money     `json:"walletBalance,omitempty"`
}

// InvestmentService settles partition purchases. The campaign row lock
// serializes the inventory check-and-decrement, so concurrent purchases can
// never oversell; the wallet row lock (taken second, always in that order)
// serializes the debit.
type InvestmentService struct {
	db        *storage.PostgresDB
	campaigns *storage.CampaignRepository
	holdings  *storage.HoldingRepository
	wallets   *storage.WalletRepository
	cache     *storage.CacheService
	audit     *AuditService
	logger    *logging.Logger
}

// NewInvestmentService creates a new investment service
func NewInvestmentService(
	db *storage.PostgresDB,
	campaigns *storage.CampaignRepository,
	holdings *storage.HoldingRepository,
	wallets *storage.WalletRepository,
	cache *storage.CacheService,
	audit *AuditService,
	logger *logging.Logger,
) *InvestmentService {
	return &InvestmentService{
		db:        db,
		campaigns: campaigns,
		holdings:  holdings,
		wallets:   wallets,
		cache:     cache,
		audit:     audit,
		logger:    logger,
	}
}

// validatePurchase checks the purchase preconditions in their contractual
// order against a locked campaign snapshot. The first failure wins.
func validatePurchase(c *models.Campaign, investorID string, partitions int64, now time.Time) error {
	if !c.InvestmentWindowOpen(now) {
		return errors.NewCampaignNotActiveError(c.ID, c.FundingStatus)
	}
	if partitions < c.MinPartitionsPerUser {
		return errors.NewBelowMinimumPurchaseError(partitions, c.MinPartitionsPerUser)
	}
	if available := c.AvailablePartitions(); partitions > available {
		return errors.NewInsufficientInventoryError(partitions, available)
	}
	if investorID == c.ArtistID {
		return errors.NewSelfInvestmentError()
	}
	return nil
}

// Execute settles one purchase atomically: debit the funding source, advance
// the campaign's inventory counters and fold the purchase into the
// investor's holding. Any precondition failure rolls back with no effects.
func (s *InvestmentService) Execute(ctx context.Context, investorID string, req InvestmentRequest) (*InvestmentResult, error) {
	if req.Partitions <= 0 {
		return nil, errors.NewInvalidParameterError("partitions", "must be positive")
	}
	if req.FundingSource == "" {
		req.FundingSource = types.SourceWallet
	}
	if req.FundingSource != types.SourceWallet && req.FundingSource != types.SourceExternal {
		return nil, errors.NewInvalidParameterError("fundingSource", "must be wallet or external")
	}

	result := &InvestmentResult{}

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		campaign, err := s.campaigns.GetForUpdateTx(ctx, tx, req.CampaignID)
		if err != nil {
			if stderrors.Is(err, storage.ErrNotFound) {
				return errors.NewNotFoundError("campaign", req.CampaignID)
			}
			return errors.NewDatabaseError("investment", err)
		}

		if err := validatePurchase(campaign, investorID, req.Partitions, time.Now()); err != nil {
			return err
		}

		amount := campaign.PartitionPrice * types.Money(req.Partitions)

		if req.FundingSource == types.SourceWallet {
			wallet, err := s.wallets.GetForUpdateTx(ctx, tx, investorID)
			if err != nil {
				if stderrors.Is(err, storage.ErrNotFound) {
					return errors.NewNotFoundError("user", investorID)
				}
				return errors.NewDatabaseError("investment", err)
			}
			if amount > wallet.Balance {
				return errors.NewInsufficientFundsError(wallet.Balance, amount)
			}
			entry := &models.WalletTransaction{
				Type:       types.TxInvestment,
				Amount:     amount,
				CampaignID: &campaign.ID,
			}
			if err := s.wallets.ApplyEntryTx(ctx, tx, wallet, entry); err != nil {
				return errors.NewDatabaseError("investment", err)
			}
			balance := wallet.Balance
			result.WalletBalance = &balance
		}

		newStatus := campaign.FundingStatus
		if campaign.AmountRaised+amount >= campaign.TargetAmount {
			newStatus = types.FundingFunded
		}
		if err := s.campaigns.ApplyPurchaseTx(ctx, tx, campaign.ID, req.Partitions, amount, newStatus); err != nil {
			return errors.NewDatabaseError("investment", err)
		}

		holding, err := s.holdings.UpsertTx(ctx, tx, campaign.ID, investorID, req.Partitions, amount)
		if err != nil {
			return errors.NewDatabaseError("investment", err)
		}

		campaign.PartitionsSold += req.Partitions
		campaign.AmountRaised += amount
		campaign.FundingStatus = newStatus

		result.Holding = holding
		result.Campaign = campaign
		result.AmountPaid = amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateCampaign(ctx, req.CampaignID); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate campaign cache")
	}

	s.logger.WithFields(map[string]interface{}{
		"campaignId": req.CampaignID,
		"investorId": investorID,
		"partitions": req.Partitions,
		"amount":     result.AmountPaid.Rupees(),
		"source":     req.FundingSource,
	}).Info("Investment settled")

	s.audit.Record(&storage.AuditEvent{
		EventType:  storage.AuditInvestment,
		ActorID:    investorID,
		CampaignID: req.CampaignID,
		Amount:     result.AmountPaid,
		Partitions: req.Partitions,
		Metadata:   map[string]interface{}{"source": req.FundingSource},
	})

	return result, nil
}
