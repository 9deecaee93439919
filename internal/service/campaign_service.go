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

// CreateCampaignInput carries the authoring surface's campaign attributes.
// Monetary fields are rupees.
type CreateCampaignInput struct {
	Title                string            `json:"title"`
	Description          *string           `json:"description,omitempty"`
	Genre                types.Genre       `json:"genre"`
	TargetAmount         float64           `json:"targetAmount"`
	PartitionPrice       float64           `json:"partitionPrice"`
	RevenueSharePct      float64           `json:"revenueSharePct"`
	MinPartitionsPerUser int64             `json:"minPartitionsPerUser"`
	MarketingBudget      float64           `json:"marketingBudget"`
	VideoBudget          float64           `json:"videoBudget"`
	ArtistFollowers      int64             `json:"artistFollowers"`
	ViralFactor          types.ViralFactor `json:"viralFactor"`
	DurationMonths       int               `json:"durationMonths"`
	StartDate            *time.Time        `json:"startDate,omitempty"`
	EndDate              *time.Time        `json:"endDate,omitempty"`
}

// CampaignDetails is a campaign snapshot with its derived economics
type CampaignDetails struct {
	Campaign            *models.Campaign   `json:"campaign"`
	FundingPct          float64            `json:"fundingPct"`
	RawFundingPct       float64            `json:"rawFundingPct"`
	AvailablePartitions int64              `json:"availablePartitions"`
	Prediction          *RevenuePrediction `json:"prediction,omitempty"`
}

// CampaignService manages campaign authoring and lifecycle. Lifecycle
// transitions are irreversible: draft -> live -> {funded, failed} -> closed.
type CampaignService struct {
	db         *storage.PostgresDB
	campaigns  *storage.CampaignRepository
	holdings   *storage.HoldingRepository
	revenue    *storage.RevenueRepository
	users      *storage.UserRepository
	economics  *EconomicsService
	prediction *PredictionService
	cache      *storage.CacheService
	audit      *AuditService
	auditRepo  *storage.AuditRepository
	logger     *logging.Logger
}

// NewCampaignService creates a new campaign service
func NewCampaignService(
	db *storage.PostgresDB,
	campaigns *storage.CampaignRepository,
	holdings *storage.HoldingRepository,
	revenue *storage.RevenueRepository,
	users *storage.UserRepository,
	economics *EconomicsService,
	prediction *PredictionService,
	cache *storage.CacheService,
	audit *AuditService,
	auditRepo *storage.AuditRepository,
	logger *logging.Logger,
) *CampaignService {
	return &CampaignService{
		db:         db,
		campaigns:  campaigns,
		holdings:   holdings,
		revenue:    revenue,
		users:      users,
		economics:  economics,
		prediction: prediction,
		cache:      cache,
		audit:      audit,
		auditRepo:  auditRepo,
		logger:     logger,
	}
}

// Create validates the configuration, derives the partition count, runs the
// forecast and persists the campaign in draft.
func (s *CampaignService) Create(ctx context.Context, artistID string, in CreateCampaignInput) (*CampaignDetails, error) {
	artist, err := s.users.GetByID(ctx, artistID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return nil, errors.NewNotFoundError("user", artistID)
		}
		return nil, errors.NewDatabaseError("create campaign", err)
	}
	if artist.Role != types.RoleArtist {
		return nil, errors.NewForbiddenError("only artists can create campaigns")
	}

	if in.Title == "" {
		return nil, errors.NewInvalidParameterError("title", "is required")
	}
	if in.RevenueSharePct < 1 || in.RevenueSharePct > 100 {
		return nil, errors.NewInvalidParameterError("revenueSharePct", "must be within [1, 100]")
	}
	if in.MinPartitionsPerUser < 0 {
		return nil, errors.NewInvalidParameterError("minPartitionsPerUser", "must not be negative")
	}
	if in.MinPartitionsPerUser == 0 {
		in.MinPartitionsPerUser = 1
	}
	if in.StartDate != nil && in.EndDate != nil && !in.EndDate.After(*in.StartDate) {
		return nil, errors.NewInvalidConfigurationError("end date must be after start date")
	}

	target := types.MoneyFromRupees(in.TargetAmount)
	price := types.MoneyFromRupees(in.PartitionPrice)
	if target <= 0 {
		return nil, errors.NewInvalidConfigurationError("target amount must be positive")
	}

	totalPartitions, err := s.economics.TotalPartitions(target, price)
	if err != nil {
		return nil, err
	}
	if totalPartitions == 0 {
		return nil, errors.NewInvalidConfigurationError("partition price exceeds target amount")
	}

	pred, err := s.prediction.Predict(PredictionInput{
		Genre:           in.Genre,
		MarketingBudget: in.MarketingBudget,
		VideoBudget:     in.VideoBudget,
		ArtistFollowers: in.ArtistFollowers,
		ViralFactor:     in.ViralFactor,
		DurationMonths:  in.DurationMonths,
		RevenueSharePct: in.RevenueSharePct,
	})
	if err != nil {
		return nil, err
	}

	campaign := &models.Campaign{
		ArtistID:             artistID,
		Title:                in.Title,
		Description:          in.Description,
		Genre:                in.Genre,
		TargetAmount:         target,
		PartitionPrice:       price,
		RevenueSharePct:      in.RevenueSharePct,
		TotalPartitions:      totalPartitions,
		MinPartitionsPerUser: in.MinPartitionsPerUser,
		FundingStatus:        types.FundingDraft,
		MarketingBudget:      types.MoneyFromRupees(in.MarketingBudget),
		VideoBudget:          types.MoneyFromRupees(in.VideoBudget),
		ArtistFollowers:      in.ArtistFollowers,
		ViralFactor:          in.ViralFactor,
		DurationMonths:       in.DurationMonths,
		StartDate:            in.StartDate,
		EndDate:              in.EndDate,
	}

	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, errors.NewDatabaseError("create campaign", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"campaignId": campaign.ID,
		"artistId":   artistID,
		"partitions": totalPartitions,
	}).Info("Campaign created")

	return &CampaignDetails{
		Campaign:            campaign,
		FundingPct:          0,
		RawFundingPct:       0,
		AvailablePartitions: totalPartitions,
		Prediction:          pred,
	}, nil
}

// Get returns a campaign with derived economics, read through the cache.
func (s *CampaignService) Get(ctx context.Context, campaignID string) (*CampaignDetails, error) {
	cacheKey := s.cache.GenerateCampaignKey(campaignID)
	var cached CampaignDetails
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return nil, errors.NewNotFoundError("campaign", campaignID)
		}
		return nil, errors.NewDatabaseError("get campaign", err)
	}

	details, err := s.details(campaign)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, details); err != nil {
		s.logger.WithError(err).Warn("Failed to cache campaign")
	}
	return details, nil
}

// ListLive returns all live campaigns with derived economics.
func (s *CampaignService) ListLive(ctx context.Context) ([]*CampaignDetails, error) {
	cacheKey := s.cache.GenerateCampaignListKey()
	var cached []*CampaignDetails
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	campaigns, err := s.campaigns.ListByStatus(ctx, types.FundingLive)
	if err != nil {
		return nil, errors.NewDatabaseError("list campaigns", err)
	}

	list := make([]*CampaignDetails, 0, len(campaigns))
	for _, c := range campaigns {
		d, err := s.details(c)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}

	if err := s.cache.Set(ctx, cacheKey, list); err != nil {
		s.logger.WithError(err).Warn("Failed to cache campaign list")
	}
	return list, nil
}

// ListByArtist returns an artist's campaigns with derived economics.
func (s *CampaignService) ListByArtist(ctx context.Context, artistID string) ([]*CampaignDetails, error) {
	campaigns, err := s.campaigns.ListByArtist(ctx, artistID)
	if err != nil {
		return nil, errors.NewDatabaseError("list campaigns", err)
	}

	list := make([]*CampaignDetails, 0, len(campaigns))
	for _, c := range campaigns {
		d, err := s.details(c)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, nil
}

func (s *CampaignService) details(c *models.Campaign) (*CampaignDetails, error) {
	rawPct, err := s.economics.RawFundingPercentage(c.AmountRaised, c.TargetAmount)
	if err != nil {
		return nil, err
	}
	pct, err := s.economics.FundingPercentage(c.AmountRaised, c.TargetAmount)
	if err != nil {
		return nil, err
	}

	return &CampaignDetails{
		Campaign:            c,
		FundingPct:          pct,
		RawFundingPct:       rawPct,
		AvailablePartitions: s.economics.AvailablePartitions(c.TotalPartitions, c.PartitionsSold),
	}, nil
}

// Predict returns the forecast for a stored campaign, read through the cache.
func (s *CampaignService) Predict(ctx context.Context, campaignID string) (*RevenuePrediction, error) {
	cacheKey := s.cache.GeneratePredictionKey(campaignID)
	var cached RevenuePrediction
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return nil, errors.NewNotFoundError("campaign", campaignID)
		}
		return nil, errors.NewDatabaseError("predict", err)
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
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, pred); err != nil {
		s.logger.WithError(err).Warn("Failed to cache prediction")
	}
	return pred, nil
}

// Publish moves a draft campaign live. Only the owning artist may publish,
// and the investment window must be configured.
func (s *CampaignService) Publish(ctx context.Context, callerID, campaignID string, startDate, endDate *time.Time) (*models.Campaign, error) {
	var campaign *models.Campaign

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		c, err := s.campaigns.GetForUpdateTx(ctx, tx, campaignID)
		if err != nil {
			if stderrors.Is(err, storage.ErrNotFound) {
				return errors.NewNotFoundError("campaign", campaignID)
			}
			return errors.NewDatabaseError("publish campaign", err)
		}
		if c.ArtistID != callerID {
			return errors.NewForbiddenError("only the campaign's artist can publish it")
		}
		if c.FundingStatus != types.FundingDraft {
			return errors.NewInvalidStateTransitionError(c.FundingStatus, types.FundingLive)
		}

		if startDate != nil {
			c.StartDate = startDate
		}
		if endDate != nil {
			c.EndDate = endDate
		}
		if c.StartDate == nil || c.EndDate == nil {
			return errors.NewInvalidConfigurationError("start and end dates are required to publish")
		}
		if !c.EndDate.After(*c.StartDate) {
			return errors.NewInvalidConfigurationError("end date must be after start date")
		}

		c.FundingStatus = types.FundingLive
		query := `UPDATE campaigns SET funding_status = $2, start_date = $3, end_date = $4, updated_at = $5 WHERE id = $1`
		if _, err := tx.Exec(ctx, query, c.ID, c.FundingStatus, c.StartDate, c.EndDate, time.Now()); err != nil {
			return errors.NewDatabaseError("publish campaign", err)
		}
		campaign = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, campaignID)
	s.logger.WithField("campaignId", campaignID).Info("Campaign published")
	s.audit.Record(&storage.AuditEvent{
		EventType:  storage.AuditLifecycle,
		ActorID:    callerID,
		CampaignID: campaignID,
		Metadata:   map[string]interface{}{"to": types.FundingLive},
	})

	return campaign, nil
}

// Close settles a funded or failed campaign. Only the owning artist may
// close it.
func (s *CampaignService) Close(ctx context.Context, callerID, campaignID string) (*models.Campaign, error) {
	var campaign *models.Campaign

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		c, err := s.campaigns.GetForUpdateTx(ctx, tx, campaignID)
		if err != nil {
			if stderrors.Is(err, storage.ErrNotFound) {
				return errors.NewNotFoundError("campaign", campaignID)
			}
			return errors.NewDatabaseError("close campaign", err)
		}
		if c.ArtistID != callerID {
			return errors.NewForbiddenError("only the campaign's artist can close it")
		}
		if c.FundingStatus != types.FundingFunded && c.FundingStatus != types.FundingFailed {
			return errors.NewInvalidStateTransitionError(c.FundingStatus, types.FundingClosed)
		}

		c.FundingStatus = types.FundingClosed
		if err := s.campaigns.UpdateStatusTx(ctx, tx, c.ID, types.FundingClosed); err != nil {
			return errors.NewDatabaseError("close campaign", err)
		}
		campaign = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, campaignID)
	s.logger.WithField("campaignId", campaignID).Info("Campaign closed")
	s.audit.Record(&storage.AuditEvent{
		EventType:  storage.AuditLifecycle,
		ActorID:    callerID,
		CampaignID: campaignID,
		Metadata:   map[string]interface{}{"to": types.FundingClosed},
	})

	return campaign, nil
}

// ExpireStale sweeps live campaigns whose window closed below target to
// failed. Intended to be run periodically.
func (s *CampaignService) ExpireStale(ctx context.Context) (int64, error) {
	expired, err := s.campaigns.ExpireStale(ctx, time.Now())
	if err != nil {
		return 0, errors.NewDatabaseError("expire campaigns", err)
	}
	if expired > 0 {
		s.logger.WithField("count", expired).Info("Expired stale campaigns")
		if err := s.cache.Invalidate(ctx, s.cache.GenerateCampaignListKey()); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate campaign list cache")
		}
	}
	return expired, nil
}

// RunExpirySweep blocks, sweeping at the given interval until ctx ends.
func (s *CampaignService) RunExpirySweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ExpireStale(ctx); err != nil {
				s.logger.WithError(err).Error("Expiry sweep failed")
			}
		}
	}
}

// CampaignAnalytics summarizes a campaign's performance
type CampaignAnalytics struct {
	CampaignID          string                         `json:"campaignId"`
	FundingPct          float64                        `json:"fundingPct"`
	RawFundingPct       float64                        `json:"rawFundingPct"`
	AvailablePartitions int64                          `json:"availablePartitions"`
	Investors           int64                          `json:"investors"`
	Revenue             *storage.CampaignRevenueTotals `json:"revenue"`
	ExpectedRevenue3M   float64                        `json:"expectedRevenue3m"`
	ActivityByType      []storage.EventTypeCount       `json:"activityByType,omitempty"`
}

// Analytics aggregates funding progress, investor count, reported revenue
// and the forecast baseline for a campaign. Activity counts come from the
// analytics store and are omitted when it is unavailable.
func (s *CampaignService) Analytics(ctx context.Context, campaignID string) (*CampaignAnalytics, error) {
	cacheKey := s.cache.GenerateAnalyticsKey(campaignID)
	var cached CampaignAnalytics
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	details, err := s.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	investors, err := s.holdings.CountByCampaign(ctx, campaignID)
	if err != nil {
		return nil, errors.NewDatabaseError("campaign analytics", err)
	}
	revenue, err := s.revenue.TotalsByCampaign(ctx, campaignID)
	if err != nil {
		return nil, errors.NewDatabaseError("campaign analytics", err)
	}

	pred, err := s.Predict(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	analytics := &CampaignAnalytics{
		CampaignID:          campaignID,
		FundingPct:          details.FundingPct,
		RawFundingPct:       details.RawFundingPct,
		AvailablePartitions: details.AvailablePartitions,
		Investors:           investors,
		Revenue:             revenue,
		ExpectedRevenue3M:   pred.GrossRevenue3M,
	}

	if s.auditRepo != nil {
		if counts, err := s.auditRepo.CountsByCampaign(ctx, campaignID); err == nil {
			analytics.ActivityByType = counts
		} else {
			s.logger.WithError(err).Warn("Audit store unavailable for analytics")
		}
	}

	if err := s.cache.Set(ctx, cacheKey, analytics); err != nil {
		s.logger.WithError(err).Warn("Failed to cache analytics")
	}
	return analytics, nil
}

func (s *CampaignService) invalidate(ctx context.Context, campaignID string) {
	if err := s.cache.InvalidateCampaign(ctx, campaignID); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate campaign cache")
	}
}
