package models

import (
	"time"

	"github.com/fanbacker/internal/types"
)

// Holding represents an investor's accumulated position in one campaign.
// There is at most one holding per (campaign, investor) pair; repeat
// investments fold into the existing row.
type Holding struct {
	ID               string      `json:"id" db:"id"`
	CampaignID       string      `json:"campaignId" db:"campaign_id"`
	InvestorID       string      `json:"investorId" db:"investor_id"`
	PartitionsOwned  int64       `json:"partitionsOwned" db:"partitions_owned"`
	InvestmentAmount types.Money `json:"investmentAmount" db:"investment_amount"`
	FirstInvestedAt  time.Time   `json:"firstInvestedAt" db:"first_invested_at"`
	UpdatedAt        time.Time   `json:"updatedAt" db:"updated_at"`
}
