package models

import (
	"time"

	"github.com/fanbacker/internal/types"
)

// Campaign represents a fundraising campaign for a music release.
//
// Partition inventory invariants, maintained under row locks by the
// investment path:
//
//	0 <= PartitionsSold <= TotalPartitions
//	AmountRaised <= TotalPartitions * PartitionPrice
type Campaign struct {
	ID                   string              `json:"id" db:"id"`
	ArtistID             string              `json:"artistId" db:"artist_id"`
	Title                string              `json:"title" db:"title"`
	Description          *string             `json:"description,omitempty" db:"description"`
	Genre                types.Genre         `json:"genre" db:"genre"`
	TargetAmount         types.Money         `json:"targetAmount" db:"target_amount"`
	PartitionPrice       types.Money         `json:"partitionPrice" db:"partition_price"`
	RevenueSharePct      float64             `json:"revenueSharePct" db:"revenue_share_pct"`
	TotalPartitions      int64               `json:"totalPartitions" db:"total_partitions"`
	PartitionsSold       int64               `json:"partitionsSold" db:"partitions_sold"`
	AmountRaised         types.Money         `json:"amountRaised" db:"amount_raised"`
	MinPartitionsPerUser int64               `json:"minPartitionsPerUser" db:"min_partitions_per_user"`
	FundingStatus        types.FundingStatus `json:"fundingStatus" db:"funding_status"`
	MarketingBudget      types.Money         `json:"marketingBudget" db:"marketing_budget"`
	VideoBudget          types.Money         `json:"videoBudget" db:"video_budget"`
	ArtistFollowers      int64               `json:"artistFollowers" db:"artist_followers"`
	ViralFactor          types.ViralFactor   `json:"viralFactor" db:"viral_factor"`
	DurationMonths       int                 `json:"durationMonths" db:"duration_months"`
	StartDate            *time.Time          `json:"startDate,omitempty" db:"start_date"`
	EndDate              *time.Time          `json:"endDate,omitempty" db:"end_date"`
	CreatedAt            time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time           `json:"updatedAt" db:"updated_at"`
}

// AvailablePartitions returns the unsold partition count.
func (c *Campaign) AvailablePartitions() int64 {
	if avail := c.TotalPartitions - c.PartitionsSold; avail > 0 {
		return avail
	}
	return 0
}

// InvestmentWindowOpen reports whether investments are accepted at the given
// instant. The start bound is inclusive, the end bound exclusive.
func (c *Campaign) InvestmentWindowOpen(now time.Time) bool {
	if c.FundingStatus != types.FundingLive {
		return false
	}
	if c.StartDate == nil || c.EndDate == nil {
		return false
	}
	return !now.Before(*c.StartDate) && now.Before(*c.EndDate)
}
