package models

import (
	"testing"
	"time"

	"github.com/fanbacker/internal/types"
)

func TestInvestmentWindowOpen(t *testing.T) {
	now := time.Now()
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)

	c := &Campaign{FundingStatus: types.FundingLive, StartDate: &start, EndDate: &end}

	if !c.InvestmentWindowOpen(now) {
		t.Error("Live campaign within dates should be open")
	}
	if !c.InvestmentWindowOpen(start) {
		t.Error("Start bound is inclusive")
	}
	if c.InvestmentWindowOpen(end) {
		t.Error("End bound is exclusive")
	}
	if c.InvestmentWindowOpen(end.Add(time.Minute)) {
		t.Error("Past the end date should be closed")
	}

	c.FundingStatus = types.FundingFunded
	if c.InvestmentWindowOpen(now) {
		t.Error("Only live campaigns accept investments")
	}

	c.FundingStatus = types.FundingLive
	c.EndDate = nil
	if c.InvestmentWindowOpen(now) {
		t.Error("Without an end date the window is closed")
	}
}

func TestCampaignAvailablePartitions(t *testing.T) {
	c := &Campaign{TotalPartitions: 20, PartitionsSold: 5}
	if got := c.AvailablePartitions(); got != 15 {
		t.Errorf("Expected 15 available, got %d", got)
	}

	c.PartitionsSold = 25
	if got := c.AvailablePartitions(); got != 0 {
		t.Errorf("Oversold campaign should report 0 available, got %d", got)
	}
}
