package service

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/fanbacker/internal/models"
	"github.com/fanbacker/internal/types"
)

func holdingsFixture(partitions ...int64) []*models.Holding {
	hs := make([]*models.Holding, len(partitions))
	for i, p := range partitions {
		hs[i] = &models.Holding{
			ID:              string(rune('a' + i)),
			InvestorID:      string(rune('A' + i)),
			PartitionsOwned: p,
		}
	}
	return hs
}

func sumShares(shares []types.Money) types.Money {
	var total types.Money
	for _, s := range shares {
		total += s
	}
	return total
}

func TestAllocateSharesProRata(t *testing.T) {
	// Revenue of 10000 rupees, a 40 percent investor pool, no platform fee:
	// the pool is 4000 and two holders with 3 and 7 of 10 sold partitions
	// receive 1200 and 2800. The artist keeps the remaining 6000.
	reported := types.MoneyFromRupees(10000)
	pool := percentOf(reported, 40)
	assert.Equal(t, types.MoneyFromRupees(4000), pool)

	shares := allocateShares(pool, holdingsFixture(3, 7))
	assert.Equal(t, types.MoneyFromRupees(1200), shares[0])
	assert.Equal(t, types.MoneyFromRupees(2800), shares[1])

	artist := reported - pool
	assert.Equal(t, types.MoneyFromRupees(6000), artist)
}

func TestAllocateSharesResidualPaise(t *testing.T) {
	// 100 paise over three equal holders does not divide evenly. Every
	// paisa must still land somewhere, earliest holdings first.
	shares := allocateShares(types.Money(100), holdingsFixture(1, 1, 1))

	assert.Equal(t, types.Money(100), sumShares(shares))
	assert.Equal(t, types.Money(34), shares[0])
	assert.Equal(t, types.Money(33), shares[1])
	assert.Equal(t, types.Money(33), shares[2])
}

func TestAllocateSharesSingleHolder(t *testing.T) {
	shares := allocateShares(types.Money(99999), holdingsFixture(12))
	assert.Equal(t, types.Money(99999), shares[0])
}

func TestAllocateSharesZeroPool(t *testing.T) {
	shares := allocateShares(0, holdingsFixture(3, 7))
	assert.Equal(t, types.Money(0), shares[0])
	assert.Equal(t, types.Money(0), shares[1])
}

func TestAllocateSharesConservation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	genHoldings := gen.SliceOfN(5, gen.Int64Range(1, 10_000)).Map(func(ps []int64) []*models.Holding {
		return holdingsFixture(ps...)
	})

	properties.Property("shares sum to the pool exactly", prop.ForAll(
		func(pool int64, hs []*models.Holding) bool {
			shares := allocateShares(types.Money(pool), hs)
			return sumShares(shares) == types.Money(pool)
		},
		gen.Int64Range(1, 1_000_000_000_00),
		genHoldings,
	))

	properties.Property("each share is within one paisa of exact pro-rata", prop.ForAll(
		func(pool int64, hs []*models.Holding) bool {
			var total int64
			for _, h := range hs {
				total += h.PartitionsOwned
			}
			shares := allocateShares(types.Money(pool), hs)
			for i, h := range hs {
				exact := float64(pool) * float64(h.PartitionsOwned) / float64(total)
				diff := float64(shares[i]) - exact
				if diff < -1 || diff > 1 {
					return false
				}
			}
			return true
		},
		gen.Int64Range(1, 1_000_000_000_00),
		genHoldings,
	))

	properties.TestingRun(t)
}

func TestCreditOrderSortsArtistWithInvestors(t *testing.T) {
	// The artist credit must take part in the same user-id ordered locking
	// pass as the investor payouts, or two overlapping distributions can
	// lock wallets in opposite orders.
	payouts := []models.InvestorPayout{
		{InvestorID: "user-c", Amount: types.Money(1200)},
		{InvestorID: "user-a", Amount: types.Money(2800)},
		{InvestorID: "user-e", Amount: 0},
	}

	credits := creditOrder(payouts, "user-b", types.Money(6000))

	ids := make([]string, len(credits))
	for i, c := range credits {
		ids[i] = c.userID
	}
	assert.Equal(t, []string{"user-a", "user-b", "user-c"}, ids, "credits must be sorted by user id with zero payouts dropped")

	var total types.Money
	for _, c := range credits {
		total += c.amount
	}
	assert.Equal(t, types.Money(10000), total)
}

func TestCreditOrderSkipsZeroArtistAmount(t *testing.T) {
	payouts := []models.InvestorPayout{{InvestorID: "user-a", Amount: types.Money(100)}}
	credits := creditOrder(payouts, "user-b", 0)
	assert.Len(t, credits, 1)
	assert.Equal(t, "user-a", credits[0].userID)
}

func TestPercentOf(t *testing.T) {
	assert.Equal(t, types.Money(500), percentOf(types.Money(10000), 5))
	assert.Equal(t, types.Money(0), percentOf(types.Money(10000), 0))
	assert.Equal(t, types.Money(10000), percentOf(types.Money(10000), 100))
	// Fractional percentages floor to the paise.
	assert.Equal(t, types.Money(25), percentOf(types.Money(1001), 2.5))
}
