package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fanbacker/internal/types"
)

// AuditEvent is one analytics record of a money-moving operation. Audit
// events are written best-effort after commit; Postgres stays the source of
// truth for balances.
type AuditEvent struct {
	ID         string                 `json:"id"`
	EventType  string                 `json:"eventType"`
	ActorID    string                 `json:"actorId"`
	CampaignID string                 `json:"campaignId,omitempty"`
	Amount     types.Money            `json:"amount"`
	Partitions int64                  `json:"partitions,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// Audit event types
const (
	AuditDeposit      = "wallet_deposit"
	AuditWithdrawal   = "wallet_withdrawal"
	AuditInvestment   = "investment"
	AuditDistribution = "distribution"
	AuditLifecycle    = "campaign_lifecycle"
)

// AuditRepository writes audit events to ClickHouse for analytics queries
type AuditRepository struct {
	db *ClickHouseDB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *ClickHouseDB) *AuditRepository {
	return &AuditRepository{db: db}
}

// EnsureSchema creates the audit table if it does not exist
func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS audit_events (
			id String,
			event_type LowCardinality(String),
			actor_id String,
			campaign_id String,
			amount Int64,
			partitions Int64,
			metadata String,
			created_at DateTime64(3)
		) ENGINE = MergeTree()
		ORDER BY (campaign_id, created_at)
	`
	if err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create audit schema: %w", err)
	}
	return nil
}

// Insert writes a single audit event
func (r *AuditRepository) Insert(ctx context.Context, e *AuditEvent) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	metadataJSON := []byte("{}")
	if e.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
	}

	query := `
		INSERT INTO audit_events (id, event_type, actor_id, campaign_id,
		                          amount, partitions, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := r.db.Exec(ctx, query,
		e.ID,
		e.EventType,
		e.ActorID,
		e.CampaignID,
		int64(e.Amount),
		e.Partitions,
		string(metadataJSON),
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// EventTypeCount is one row of the per-type event summary
type EventTypeCount struct {
	EventType string      `json:"eventType"`
	Count     uint64      `json:"count"`
	Total     types.Money `json:"total"`
}

// CountsByCampaign summarizes audit events per type for one campaign
func (r *AuditRepository) CountsByCampaign(ctx context.Context, campaignID string) ([]EventTypeCount, error) {
	query := `
		SELECT event_type, count(), sum(amount)
		FROM audit_events
		WHERE campaign_id = ?
		GROUP BY event_type
		ORDER BY event_type
	`

	rows, err := r.db.Conn().Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit counts: %w", err)
	}
	defer rows.Close()

	var counts []EventTypeCount
	for rows.Next() {
		var c EventTypeCount
		var total int64
		if err := rows.Scan(&c.EventType, &c.Count, &total); err != nil {
			return nil, fmt.Errorf("failed to scan audit count: %w", err)
		}
		c.Total = types.Money(total)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
