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

const holdingColumns = `
	id, campaign_id, investor_id, partitions_owned, investment_amount,
	first_invested_at, updated_at`

// HoldingRepository handles investor holding persistence
type HoldingRepository struct {
	db *PostgresDB
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *PostgresDB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

func scanHolding(row pgx.Row) (*models.Holding, error) {
	var h models.Holding
	err := row.Scan(
		&h.ID, &h.CampaignID, &h.InvestorID, &h.PartitionsOwned, &h.InvestmentAmount,
		&h.FirstInvestedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// UpsertTx folds a purchase into the investor's holding inside the caller's
// transaction, creating the row on first investment.
func (r *HoldingRepository) UpsertTx(ctx context.Context, tx pgx.Tx, campaignID, investorID string, partitions int64, amount types.Money) (*models.Holding, error) {
	query := `
		INSERT INTO holdings (id, campaign_id, investor_id, partitions_owned,
		                      investment_amount, first_invested_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (campaign_id, investor_id) DO UPDATE
		SET partitions_owned = holdings.partitions_owned + EXCLUDED.partitions_owned,
		    investment_amount = holdings.investment_amount + EXCLUDED.investment_amount,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + holdingColumns

	h, err := scanHolding(tx.QueryRow(ctx, query,
		uuid.New().String(), campaignID, investorID, partitions, amount, time.Now(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert holding: %w", err)
	}
	return h, nil
}

// ListByCampaignTx lists a campaign's holdings in holding-id order inside the
// caller's transaction. The order fixes residual paise assignment during
// distribution.
func (r *HoldingRepository) ListByCampaignTx(ctx context.Context, tx pgx.Tx, campaignID string) ([]*models.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE campaign_id = $1 ORDER BY id ASC`

	rows, err := tx.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*models.Holding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// GetByCampaignAndInvestor retrieves one investor's holding on a campaign
func (r *HoldingRepository) GetByCampaignAndInvestor(ctx context.Context, campaignID, investorID string) (*models.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE campaign_id = $1 AND investor_id = $2`

	h, err := scanHolding(r.db.Pool().QueryRow(ctx, query, campaignID, investorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("holding for investor %s on campaign %s: %w", investorID, campaignID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return h, nil
}

// ListByInvestor lists all of an investor's holdings, newest first
func (r *HoldingRepository) ListByInvestor(ctx context.Context, investorID string) ([]*models.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE investor_id = $1 ORDER BY first_invested_at DESC`

	rows, err := r.db.Pool().Query(ctx, query, investorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*models.Holding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// CountByCampaign returns the number of distinct investors on a campaign
func (r *HoldingRepository) CountByCampaign(ctx context.Context, campaignID string) (int64, error) {
	var count int64
	err := r.db.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM holdings WHERE campaign_id = $1`, campaignID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count holdings: %w", err)
	}
	return count, nil
}
