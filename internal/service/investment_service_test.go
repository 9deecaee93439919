package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanbacker/internal/errors"
	"github.com/fanbacker/internal/models"
	"github.com/fanbacker/internal/types"
)

func liveCampaign(now time.Time) *models.Campaign {
	start := now.Add(-time.Hour)
	end := now.Add(24 * time.Hour)
	return &models.Campaign{
		ID:                   "campaign-1",
		ArtistID:             "artist-1",
		FundingStatus:        types.FundingLive,
		TargetAmount:         types.MoneyFromRupees(20000),
		PartitionPrice:       types.MoneyFromRupees(1000),
		TotalPartitions:      20,
		PartitionsSold:       5,
		MinPartitionsPerUser: 2,
		StartDate:            &start,
		EndDate:              &end,
	}
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	ce := errors.Categorize(err)
	assert.Equal(t, code, ce.Code)
}

func TestValidatePurchaseAccepts(t *testing.T) {
	now := time.Now()
	c := liveCampaign(now)

	assert.NoError(t, validatePurchase(c, "investor-1", 2, now))
	assert.NoError(t, validatePurchase(c, "investor-1", 15, now), "Buying out the inventory is allowed")
}

func TestValidatePurchaseWindowClosed(t *testing.T) {
	now := time.Now()

	c := liveCampaign(now)
	c.FundingStatus = types.FundingDraft
	assertErrorCode(t, validatePurchase(c, "investor-1", 2, now), "CAMPAIGN_NOT_ACTIVE")

	c = liveCampaign(now)
	end := now.Add(-time.Minute)
	c.EndDate = &end
	assertErrorCode(t, validatePurchase(c, "investor-1", 2, now), "CAMPAIGN_NOT_ACTIVE")

	c = liveCampaign(now)
	start := now.Add(time.Hour)
	c.StartDate = &start
	assertErrorCode(t, validatePurchase(c, "investor-1", 2, now), "CAMPAIGN_NOT_ACTIVE")
}

func TestValidatePurchaseBelowMinimum(t *testing.T) {
	now := time.Now()
	c := liveCampaign(now)

	// The partition minimum has its own code, distinct from the rupee
	// minimum the returns calculator enforces.
	assertErrorCode(t, validatePurchase(c, "investor-1", 1, now), "BELOW_MINIMUM")
}

func TestValidatePurchaseInsufficientInventory(t *testing.T) {
	now := time.Now()
	c := liveCampaign(now)

	assertErrorCode(t, validatePurchase(c, "investor-1", 16, now), "INSUFFICIENT_INVENTORY")
}

func TestValidatePurchaseSelfInvestment(t *testing.T) {
	now := time.Now()
	c := liveCampaign(now)

	assertErrorCode(t, validatePurchase(c, c.ArtistID, 2, now), "SELF_INVESTMENT_FORBIDDEN")
}

// The preconditions have a contractual order; when several fail at once the
// earliest one must win.
func TestValidatePurchaseOrdering(t *testing.T) {
	now := time.Now()

	// Closed window beats everything else.
	c := liveCampaign(now)
	c.FundingStatus = types.FundingFailed
	c.PartitionsSold = c.TotalPartitions
	assertErrorCode(t, validatePurchase(c, c.ArtistID, 1, now), "CAMPAIGN_NOT_ACTIVE")

	// Below-minimum beats inventory and self-investment.
	c = liveCampaign(now)
	c.PartitionsSold = c.TotalPartitions
	assertErrorCode(t, validatePurchase(c, c.ArtistID, 1, now), "BELOW_MINIMUM")

	// Inventory beats self-investment.
	c = liveCampaign(now)
	c.PartitionsSold = c.TotalPartitions
	assertErrorCode(t, validatePurchase(c, c.ArtistID, 2, now), "INSUFFICIENT_INVENTORY")
}
