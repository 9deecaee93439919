package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fanbacker/internal/models"
	"github.com/fanbacker/internal/types"
)

const campaignColumns = `
	id, artist_id, title, description, genre,
	target_amount, partition_price, revenue_share_pct,
	total_partitions, partitions_sold, amount_raised, min_partitions_per_user,
	funding_status, marketing_budget, video_budget,
	artist_followers, viral_factor, duration_months,
	start_date, end_date, created_at, updated_at`

// CampaignRepository handles campaign data persistence
type CampaignRepository struct {
	db *PostgresDB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *PostgresDB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(
		&c.ID, &c.ArtistID, &c.Title, &c.Description, &c.Genre,
		&c.TargetAmount, &c.PartitionPrice, &c.RevenueSharePct,
		&c.TotalPartitions, &c.PartitionsSold, &c.AmountRaised, &c.MinPartitionsPerUser,
		&c.FundingStatus, &c.MarketingBudget, &c.VideoBudget,
		&c.ArtistFollowers, &c.ViralFactor, &c.DurationMonths,
		&c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create creates a new campaign
func (r *CampaignRepository) Create(ctx context.Context, c *models.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO campaigns (
			id, artist_id, title, description, genre,
			target_amount, partition_price, revenue_share_pct,
			total_partitions, partitions_sold, amount_raised, min_partitions_per_user,
			funding_status, marketing_budget, video_budget,
			artist_followers, viral_factor, duration_months,
			start_date, end_date, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		c.ID, c.ArtistID, c.Title, c.Description, c.Genre,
		c.TargetAmount, c.PartitionPrice, c.RevenueSharePct,
		c.TotalPartitions, c.PartitionsSold, c.AmountRaised, c.MinPartitionsPerUser,
		c.FundingStatus, c.MarketingBudget, c.VideoBudget,
		c.ArtistFollowers, c.ViralFactor, c.DurationMonths,
		c.StartDate, c.EndDate, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	return nil
}

// GetByID retrieves a campaign by ID
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	c, err := scanCampaign(r.db.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return c, nil
}

// GetForUpdateTx retrieves a campaign by ID, locking its row for the duration
// of the transaction. Investment and distribution serialize on this lock.
func (r *CampaignRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1 FOR UPDATE`

	c, err := scanCampaign(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock campaign: %w", err)
	}
	return c, nil
}

// ListByStatus lists campaigns in a given funding status, newest first
func (r *CampaignRepository) ListByStatus(ctx context.Context, status types.FundingStatus) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE funding_status = $1 ORDER BY created_at DESC`

	rows, err := r.db.Pool().Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// ListByArtist lists an artist's campaigns, newest first
func (r *CampaignRepository) ListByArtist(ctx context.Context, artistID string) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE artist_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Pool().Query(ctx, query, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// Update persists mutable campaign fields
func (r *CampaignRepository) Update(ctx context.Context, c *models.Campaign) error {
	c.UpdatedAt = time.Now()

	query := `
		UPDATE campaigns
		SET title = $2, description = $3, genre = $4,
		    target_amount = $5, partition_price = $6, revenue_share_pct = $7,
		    total_partitions = $8, min_partitions_per_user = $9,
		    marketing_budget = $10, video_budget = $11,
		    artist_followers = $12, viral_factor = $13, duration_months = $14,
		    start_date = $15, end_date = $16, funding_status = $17, updated_at = $18
		WHERE id = $1
	`

	tag, err := r.db.Pool().Exec(ctx, query,
		c.ID, c.Title, c.Description, c.Genre,
		c.TargetAmount, c.PartitionPrice, c.RevenueSharePct,
		c.TotalPartitions, c.MinPartitionsPerUser,
		c.MarketingBudget, c.VideoBudget,
		c.ArtistFollowers, c.ViralFactor, c.DurationMonths,
		c.StartDate, c.EndDate, c.FundingStatus, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("campaign %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

// ApplyPurchaseTx advances inventory counters inside the caller's transaction.
// The caller must hold the campaign row lock.
func (r *CampaignRepository) ApplyPurchaseTx(ctx context.Context, tx pgx.Tx, campaignID string, partitions int64, amount types.Money, newStatus types.FundingStatus) error {
	query := `
		UPDATE campaigns
		SET partitions_sold = partitions_sold + $2,
		    amount_raised = amount_raised + $3,
		    funding_status = $4,
		    updated_at = $5
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, campaignID, partitions, amount, newStatus, time.Now())
	if err != nil {
		return fmt.Errorf("failed to apply purchase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("campaign %s: %w", campaignID, ErrNotFound)
	}
	return nil
}

// UpdateStatusTx moves the campaign to a new funding status inside the
// caller's transaction.
func (r *CampaignRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, campaignID string, status types.FundingStatus) error {
	query := `UPDATE campaigns SET funding_status = $2, updated_at = $3 WHERE id = $1`

	tag, err := tx.Exec(ctx, query, campaignID, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update campaign status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("campaign %s: %w", campaignID, ErrNotFound)
	}
	return nil
}

// ExpireStale moves live campaigns past their end date that missed target to
// failed. Returns the number of campaigns expired.
func (r *CampaignRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE campaigns
		SET funding_status = $1, updated_at = $2
		WHERE funding_status = $3
		  AND end_date IS NOT NULL
		  AND end_date <= $2
		  AND amount_raised < target_amount
	`

	tag, err := r.db.Pool().Exec(ctx, query, types.FundingFailed, now, types.FundingLive)
	if err != nil {
		return 0, fmt.Errorf("failed to expire campaigns: %w", err)
	}
	return tag.RowsAffected(), nil
}
