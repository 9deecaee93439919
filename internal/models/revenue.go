package models

import (
	"time"

	"github.com/fanbacker/internal/types"
)

// RevenueEvent represents one revenue report from an artist. ReportingEventID
// is the external idempotency key; the database enforces its uniqueness.
type RevenueEvent struct {
	ID               string      `json:"id" db:"id"`
	CampaignID       string      `json:"campaignId" db:"campaign_id"`
	ReportingEventID string      `json:"reportingEventId" db:"reporting_event_id"`
	Source           string      `json:"source" db:"source"`
	Amount           types.Money `json:"amount" db:"amount"`
	Processed        bool        `json:"processed" db:"processed"`
	ProcessedAt      *time.Time  `json:"processedAt,omitempty" db:"processed_at"`
	CreatedAt        time.Time   `json:"createdAt" db:"created_at"`
}

// InvestorPayout represents one investor's credited share of a distribution.
type InvestorPayout struct {
	HoldingID       string      `json:"holdingId"`
	InvestorID      string      `json:"investorId"`
	PartitionsOwned int64       `json:"partitionsOwned"`
	Amount          types.Money `json:"amount"`
}

// Distribution represents the settled split of one revenue event. The three
// buckets always sum to the reported amount exactly:
//
//	InvestorPool + PlatformFee + ArtistAmount == reported amount
type Distribution struct {
	ID             string           `json:"id" db:"id"`
	RevenueEventID string           `json:"revenueEventId" db:"revenue_event_id"`
	CampaignID     string           `json:"campaignId" db:"campaign_id"`
	ReportedAmount types.Money      `json:"reportedAmount" db:"reported_amount"`
	InvestorPool   types.Money      `json:"investorPool" db:"investor_pool"`
	PlatformFee    types.Money      `json:"platformFee" db:"platform_fee"`
	ArtistAmount   types.Money      `json:"artistAmount" db:"artist_amount"`
	Payouts        []InvestorPayout `json:"payouts" db:"payouts"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
}
