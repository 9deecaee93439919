package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fanbacker/internal/models"
	"github.com/fanbacker/internal/types"
)

// ErrDuplicate is wrapped by inserts that violate an idempotency key.
var ErrDuplicate = errors.New("duplicate")

const revenueEventColumns = `
	id, campaign_id, reporting_event_id, source, amount,
	processed, processed_at, created_at`

// RevenueRepository handles revenue event and distribution persistence
type RevenueRepository struct {
	db *PostgresDB
}

// NewRevenueRepository creates a new revenue repository
func NewRevenueRepository(db *PostgresDB) *RevenueRepository {
	return &RevenueRepository{db: db}
}

func scanRevenueEvent(row pgx.Row) (*models.RevenueEvent, error) {
	var e models.RevenueEvent
	err := row.Scan(
		&e.ID, &e.CampaignID, &e.ReportingEventID, &e.Source, &e.Amount,
		&e.Processed, &e.ProcessedAt, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEvent records a reported revenue event. A reporting event ID that was
// seen before yields ErrDuplicate.
func (r *RevenueRepository) CreateEvent(ctx context.Context, e *models.RevenueEvent) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now()

	query := `
		INSERT INTO revenue_events (id, campaign_id, reporting_event_id, source,
		                            amount, processed, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6)
		ON CONFLICT (reporting_event_id) DO NOTHING
	`

	tag, err := r.db.Pool().Exec(ctx, query,
		e.ID, e.CampaignID, e.ReportingEventID, e.Source, e.Amount, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create revenue event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("revenue event %s: %w", e.ReportingEventID, ErrDuplicate)
	}
	return nil
}

// GetEventByReportingIDTx retrieves and locks a revenue event by its
// idempotency key. Distribution replays serialize on this lock.
func (r *RevenueRepository) GetEventByReportingIDTx(ctx context.Context, tx pgx.Tx, reportingEventID string) (*models.RevenueEvent, error) {
	query := `SELECT ` + revenueEventColumns + ` FROM revenue_events WHERE reporting_event_id = $1 FOR UPDATE`

	e, err := scanRevenueEvent(tx.QueryRow(ctx, query, reportingEventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("revenue event %s: %w", reportingEventID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock revenue event: %w", err)
	}
	return e, nil
}

// MarkProcessedTx marks a revenue event as distributed inside the caller's
// transaction.
func (r *RevenueRepository) MarkProcessedTx(ctx context.Context, tx pgx.Tx, eventID string, processedAt time.Time) error {
	query := `UPDATE revenue_events SET processed = true, processed_at = $2 WHERE id = $1`

	tag, err := tx.Exec(ctx, query, eventID, processedAt)
	if err != nil {
		return fmt.Errorf("failed to mark revenue event processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("revenue event %s: %w", eventID, ErrNotFound)
	}
	return nil
}

// ListEventsByCampaign lists a campaign's revenue events, newest first
func (r *RevenueRepository) ListEventsByCampaign(ctx context.Context, campaignID string) ([]*models.RevenueEvent, error) {
	query := `SELECT ` + revenueEventColumns + ` FROM revenue_events WHERE campaign_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Pool().Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list revenue events: %w", err)
	}
	defer rows.Close()

	var events []*models.RevenueEvent
	for rows.Next() {
		e, err := scanRevenueEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan revenue event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CreateDistributionTx records a settled distribution inside the caller's
// transaction. Payouts are stored as JSONB alongside the money buckets.
func (r *RevenueRepository) CreateDistributionTx(ctx context.Context, tx pgx.Tx, d *models.Distribution) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.CreatedAt = time.Now()

	payoutsJSON, err := json.Marshal(d.Payouts)
	if err != nil {
		return fmt.Errorf("failed to marshal payouts: %w", err)
	}

	query := `
		INSERT INTO distributions (id, revenue_event_id, campaign_id, reported_amount,
		                           investor_pool, platform_fee, artist_amount, payouts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if _, err := tx.Exec(ctx, query,
		d.ID, d.RevenueEventID, d.CampaignID, d.ReportedAmount,
		d.InvestorPool, d.PlatformFee, d.ArtistAmount, payoutsJSON, d.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create distribution: %w", err)
	}
	return nil
}

// ListDistributionsByCampaign lists a campaign's distributions, newest first
func (r *RevenueRepository) ListDistributionsByCampaign(ctx context.Context, campaignID string) ([]*models.Distribution, error) {
	query := `
		SELECT id, revenue_event_id, campaign_id, reported_amount,
		       investor_pool, platform_fee, artist_amount, payouts, created_at
		FROM distributions
		WHERE campaign_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool().Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list distributions: %w", err)
	}
	defer rows.Close()

	var distributions []*models.Distribution
	for rows.Next() {
		var d models.Distribution
		var payoutsJSON []byte
		if err := rows.Scan(
			&d.ID, &d.RevenueEventID, &d.CampaignID, &d.ReportedAmount,
			&d.InvestorPool, &d.PlatformFee, &d.ArtistAmount, &payoutsJSON, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan distribution: %w", err)
		}
		if len(payoutsJSON) > 0 {
			if err := json.Unmarshal(payoutsJSON, &d.Payouts); err != nil {
				return nil, fmt.Errorf("failed to unmarshal payouts: %w", err)
			}
		}
		distributions = append(distributions, &d)
	}
	return distributions, rows.Err()
}

// CampaignRevenueTotals summarizes reported and distributed revenue for a campaign
type CampaignRevenueTotals struct {
	Reported    types.Money `json:"reported"`
	Distributed types.Money `json:"distributed"`
	Events      int64       `json:"events"`
}

// TotalsByCampaign aggregates the revenue history of a campaign
func (r *RevenueRepository) TotalsByCampaign(ctx context.Context, campaignID string) (*CampaignRevenueTotals, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0),
		       COALESCE(SUM(amount) FILTER (WHERE processed), 0),
		       COUNT(*)
		FROM revenue_events
		WHERE campaign_id = $1
	`

	var totals CampaignRevenueTotals
	err := r.db.Pool().QueryRow(ctx, query, campaignID).Scan(
		&totals.Reported, &totals.Distributed, &totals.Events,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	return &totals, nil
}
