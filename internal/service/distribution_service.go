package service

import (
	"context"
	stderrors "errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fanbacker/internal/config"
	"github.com/fanbacker/internal/errors"
	"github.com/fanbacker/internal/logging"
	"github.com/fanbacker/internal/models"
	"github.com/fanbacker/internal/storage"
	"github.com/fanbacker/internal/types"
)

// DistributionService splits reported revenue between the platform, the
// artist and the investor pool, then fans the pool out pro-rata by
// partitions owned. A distribution is one transaction: either every wallet
// is credited and the event marked processed, or nothing happens.
type DistributionService struct {
	db        *storage.PostgresDB
	campaigns *storage.CampaignRepository
	holdings  *storage.HoldingRepository
	wallets   *storage.WalletRepository
	revenue   *storage.RevenueRepository
	cache     *storage.CacheService
	audit     *AuditService
	policy    config.PolicyConfig
	logger    *logging.Logger
}

// NewDistributionService creates a new distribution service
func NewDistributionService(
	db *storage.PostgresDB,
	campaigns *storage.CampaignRepository,
	holdings *storage.HoldingRepository,
	wallets *storage.WalletRepository,
	revenue *storage.RevenueRepository,
	cache *storage.CacheService,
	audit *AuditService,
	policy config.PolicyConfig,
	logger *logging.Logger,
) *DistributionService {
	return &DistributionService{
		db:        db,
		campaigns: campaigns,
		holdings:  holdings,
		wallets:   wallets,
		revenue:   revenue,
		cache:     cache,
		audit:     audit,
		policy:    policy,
		logger:    logger,
	}
}

// Report records a revenue event for later distribution. The reporting event
// ID is the idempotency key; omitting it generates one.
func (s *DistributionService) Report(ctx context.Context, callerID, campaignID string, amount types.Money, source, reportingEventID string) (*models.RevenueEvent, error) {
	if amount <= 0 {
		return nil, errors.NewInvalidAmountError("reported revenue must be positive")
	}

	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return nil, errors.NewNotFoundError("campaign", campaignID)
		}
		return nil, errors.NewDatabaseError("report revenue", err)
	}
	if campaign.ArtistID != callerID {
		return nil, errors.NewForbiddenError("only the campaign's artist can report revenue")
	}
	if campaign.FundingStatus != types.FundingLive && campaign.FundingStatus != types.FundingFunded {
		return nil, errors.NewCampaignNotActiveError(campaignID, campaign.FundingStatus)
	}

	event := &models.RevenueEvent{
		CampaignID:       campaignID,
		ReportingEventID: reportingEventID,
		Source:           source,
		Amount:           amount,
	}
	if event.ReportingEventID == "" {
		event.ReportingEventID = uuid.New().String()
	}

	if err := s.revenue.CreateEvent(ctx, event); err != nil {
		if stderrors.Is(err, storage.ErrDuplicate) {
			return nil, errors.NewConflictError("revenue event was already reported")
		}
		return nil, errors.NewDatabaseError("report revenue", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"campaignId":       campaignID,
		"reportingEventId": event.ReportingEventID,
		"amount":           amount.Rupees(),
	}).Info("Revenue reported")

	return event, nil
}

// Distribute settles one reported revenue event. Replaying a settled event
// yields AlreadyDistributed and no wallet mutations.
func (s *DistributionService) Distribute(ctx context.Context, callerID, reportingEventID string) (*models.Distribution, error) {
	var distribution *models.Distribution
	var campaignID string

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		event, err := s.revenue.GetEventByReportingIDTx(ctx, tx, reportingEventID)
		if err != nil {
			if stderrors.Is(err, storage.ErrNotFound) {
				return errors.NewNotFoundError("revenue event", reportingEventID)
			}
			return errors.NewDatabaseError("distribution", err)
		}
		if event.Processed {
			return errors.NewAlreadyDistributedError(reportingEventID)
		}
		campaignID = event.CampaignID

		campaign, err := s.campaigns.GetForUpdateTx(ctx, tx, event.CampaignID)
		if err != nil {
			return errors.NewDatabaseError("distribution", err)
		}
		if campaign.ArtistID != callerID {
			return errors.NewForbiddenError("only the campaign's artist can distribute revenue")
		}
		if campaign.FundingStatus != types.FundingLive && campaign.FundingStatus != types.FundingFunded {
			return errors.NewCampaignNotActiveError(campaign.ID, campaign.FundingStatus)
		}

		holdingsList, err := s.holdings.ListByCampaignTx(ctx, tx, campaign.ID)
		if err != nil {
			return errors.NewDatabaseError("distribution", err)
		}
		if len(holdingsList) == 0 {
			return errors.NewNoInvestorsError(campaign.ID)
		}

		fee := percentOf(event.Amount, s.policy.PlatformFeePct)
		pool := percentOf(event.Amount, campaign.RevenueSharePct)
		artistAmount := event.Amount - fee - pool
		if artistAmount < 0 {
			return errors.NewInvalidConfigurationError("platform fee and revenue share exceed reported revenue")
		}

		shares := allocateShares(pool, holdingsList)

		payouts := make([]models.InvestorPayout, len(holdingsList))
		for i, h := range holdingsList {
			payouts[i] = models.InvestorPayout{
				HoldingID:       h.ID,
				InvestorID:      h.InvestorID,
				PartitionsOwned: h.PartitionsOwned,
				Amount:          shares[i],
			}
		}

		// Every wallet touched by this distribution, the artist's included,
		// is locked in a single user-id ordered pass so concurrent
		// distributions with overlapping users cannot deadlock.
		credits := creditOrder(payouts, campaign.ArtistID, artistAmount)

		for _, c := range credits {
			wallet, err := s.wallets.GetForUpdateTx(ctx, tx, c.userID)
			if err != nil {
				return errors.NewDatabaseError("distribution", err)
			}
			entry := &models.WalletTransaction{
				Type:       types.TxRevenuePayout,
				Amount:     c.amount,
				CampaignID: &campaign.ID,
			}
			if err := s.wallets.ApplyEntryTx(ctx, tx, wallet, entry); err != nil {
				return errors.NewDatabaseError("distribution", err)
			}
		}

		if err := s.revenue.MarkProcessedTx(ctx, tx, event.ID, time.Now()); err != nil {
			return errors.NewDatabaseError("distribution", err)
		}

		distribution = &models.Distribution{
			RevenueEventID: event.ID,
			CampaignID:     campaign.ID,
			ReportedAmount: event.Amount,
			InvestorPool:   pool,
			PlatformFee:    fee,
			ArtistAmount:   artistAmount,
			Payouts:        payouts,
		}
		if err := s.revenue.CreateDistributionTx(ctx, tx, distribution); err != nil {
			return errors.NewDatabaseError("distribution", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateCampaign(ctx, campaignID); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate campaign cache")
	}

	s.logger.WithFields(map[string]interface{}{
		"campaignId":       campaignID,
		"reportingEventId": reportingEventID,
		"pool":             distribution.InvestorPool.Rupees(),
		"artistAmount":     distribution.ArtistAmount.Rupees(),
		"investors":        len(distribution.Payouts),
	}).Info("Revenue distributed")

	s.audit.Record(&storage.AuditEvent{
		EventType:  storage.AuditDistribution,
		ActorID:    callerID,
		CampaignID: campaignID,
		Amount:     distribution.ReportedAmount,
		Metadata: map[string]interface{}{
			"reportingEventId": reportingEventID,
			"investors":        len(distribution.Payouts),
		},
	})

	return distribution, nil
}

type walletCredit struct {
	userID string
	amount types.Money
}

// creditOrder lists the non-zero wallet credits of a distribution sorted by
// user id. The ordering is the deadlock guard for the locking pass in
// Distribute.
func creditOrder(payouts []models.InvestorPayout, artistID string, artistAmount types.Money) []walletCredit {
	credits := make([]walletCredit, 0, len(payouts)+1)
	for _, p := range payouts {
		if p.Amount == 0 {
			continue
		}
		credits = append(credits, walletCredit{userID: p.InvestorID, amount: p.Amount})
	}
	if artistAmount > 0 {
		credits = append(credits, walletCredit{userID: artistID, amount: artistAmount})
	}
	sort.Slice(credits, func(i, j int) bool {
		return credits[i].userID < credits[j].userID
	})
	return credits
}

// percentOf takes pct percent of amount, computed in integer basis points
// and floored to the paise.
func percentOf(amount types.Money, pct float64) types.Money {
	bp := int64(math.Round(pct * 100))
	return types.Money(int64(amount) * bp / 10000)
}

// allocateShares divides pool pro-rata by partitions owned. Each share is
// floored to the paise; the residual paise from flooring go one each to the
// earliest holdings in id order, so the shares always sum to pool exactly.
func allocateShares(pool types.Money, holdings []*models.Holding) []types.Money {
	var totalPartitions int64
	for _, h := range holdings {
		totalPartitions += h.PartitionsOwned
	}

	shares := make([]types.Money, len(holdings))
	if totalPartitions <= 0 || pool <= 0 {
		return shares
	}

	// Split the pool as q*partitions plus the scaled remainder to stay
	// within int64 even for large pools.
	q := int64(pool) / totalPartitions
	r := int64(pool) % totalPartitions

	var allocated types.Money
	for i, h := range holdings {
		share := types.Money(q*h.PartitionsOwned + r*h.PartitionsOwned/totalPartitions)
		shares[i] = share
		allocated += share
	}

	for i := 0; allocated < pool && i < len(shares); i++ {
		shares[i]++
		allocated++
	}
	return shares
}
