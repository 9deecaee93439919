package service

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanbacker/internal/types"
)

func validPredictionInput() PredictionInput {
	return PredictionInput{
		Genre:           types.GenrePop,
		MarketingBudget: 100000,
		VideoBudget:     50000,
		ArtistFollowers: 40000,
		ViralFactor:     types.ViralMedium,
		DurationMonths:  3,
		RevenueSharePct: 40,
	}
}

func TestPredictDeterministic(t *testing.T) {
	svc := NewPredictionService()
	in := validPredictionInput()

	first, err := svc.Predict(in)
	require.NoError(t, err)
	second, err := svc.Predict(in)
	require.NoError(t, err)

	assert.Equal(t, first, second, "Identical inputs must produce identical forecasts")
	assert.Equal(t, PredictionModelVersion, first.ModelVersion)
}

func TestPredictValidation(t *testing.T) {
	svc := NewPredictionService()

	tests := []struct {
		name   string
		mutate func(*PredictionInput)
	}{
		{"negative marketing budget", func(in *PredictionInput) { in.MarketingBudget = -1 }},
		{"negative video budget", func(in *PredictionInput) { in.VideoBudget = -1 }},
		{"negative followers", func(in *PredictionInput) { in.ArtistFollowers = -1 }},
		{"unknown viral factor", func(in *PredictionInput) { in.ViralFactor = "nuclear" }},
		{"bad duration", func(in *PredictionInput) { in.DurationMonths = 9 }},
		{"share below range", func(in *PredictionInput) { in.RevenueSharePct = 0.5 }},
		{"share above range", func(in *PredictionInput) { in.RevenueSharePct = 101 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validPredictionInput()
			tt.mutate(&in)
			_, err := svc.Predict(in)
			assert.Error(t, err)
		})
	}
}

func TestPredictPlatformSplitSumsToTotal(t *testing.T) {
	svc := NewPredictionService()

	pred, err := svc.Predict(validPredictionInput())
	require.NoError(t, err)

	sum := pred.Streaming.YouTube.Streams + pred.Streaming.Spotify.Streams +
		pred.Streaming.OtherPlatforms.Streams + pred.Streaming.AppleMusic.Streams
	assert.Equal(t, pred.TotalStreams3M, sum)
}

func TestPredictHorizonsNonDecreasing(t *testing.T) {
	svc := NewPredictionService()

	pred, err := svc.Predict(validPredictionInput())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, pred.GrossRevenue6M, pred.GrossRevenue3M)
	assert.GreaterOrEqual(t, pred.GrossRevenue12M, pred.GrossRevenue6M)
	assert.GreaterOrEqual(t, pred.InvestorShare6M, pred.InvestorShare3M)
	assert.GreaterOrEqual(t, pred.InvestorShare12M, pred.InvestorShare6M)
}

func TestPredictDegenerateInput(t *testing.T) {
	svc := NewPredictionService()

	pred, err := svc.Predict(PredictionInput{
		Genre:           types.GenreIndie,
		ViralFactor:     types.ViralLow,
		DurationMonths:  3,
		RevenueSharePct: 10,
	})
	require.NoError(t, err, "Zero budgets and followers are a valid low forecast, not an error")

	assert.Zero(t, pred.TotalStreams3M)
	assert.Zero(t, pred.GrossRevenue3M)
	assert.Zero(t, pred.BreakevenStreams)
}

func TestPredictUnknownGenreNeutral(t *testing.T) {
	svc := NewPredictionService()

	in := validPredictionInput()
	in.Genre = "polka"
	pred, err := svc.Predict(in)
	require.NoError(t, err)
	assert.Positive(t, pred.TotalStreams3M)
}

func TestPredictSyncThresholds(t *testing.T) {
	svc := NewPredictionService()

	in := validPredictionInput()
	in.MarketingBudget = 400000
	in.VideoBudget = 150000
	in.ViralFactor = types.ViralHigh
	pred, err := svc.Predict(in)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pred.Additional.SyncLicensing.Deals)

	in.MarketingBudget = 150000
	in.VideoBudget = 60000
	in.ViralFactor = types.ViralMedium
	pred, err = svc.Predict(in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pred.Additional.SyncLicensing.Deals)

	in.MarketingBudget = 50000
	in.VideoBudget = 10000
	pred, err = svc.Predict(in)
	require.NoError(t, err)
	assert.Zero(t, pred.Additional.SyncLicensing.Deals)
}

func TestPredictConfidenceOrdering(t *testing.T) {
	svc := NewPredictionService()

	low := validPredictionInput()
	low.ArtistFollowers = 100
	low.MarketingBudget = 1000
	low.VideoBudget = 0
	low.ViralFactor = types.ViralLow

	high := validPredictionInput()
	high.ArtistFollowers = 500000
	high.MarketingBudget = 800000
	high.VideoBudget = 200000
	high.ViralFactor = types.ViralViral
	high.DurationMonths = 6

	lowPred, err := svc.Predict(low)
	require.NoError(t, err)
	highPred, err := svc.Predict(high)
	require.NoError(t, err)

	assert.Greater(t, highPred.ConfidenceScore, lowPred.ConfidenceScore)
	assert.GreaterOrEqual(t, lowPred.ConfidenceScore, 0)
	assert.LessOrEqual(t, highPred.ConfidenceScore, 100)
}

func TestPredictProperties(t *testing.T) {
	svc := NewPredictionService()
	properties := gopter.NewProperties(nil)

	genInput := gopter.CombineGens(
		gen.Int64Range(0, 2_000_000),
		gen.Float64Range(0, 2_000_000),
		gen.Float64Range(0, 1_000_000),
	).Map(func(vals []interface{}) PredictionInput {
		return PredictionInput{
			Genre:           types.GenrePop,
			ArtistFollowers: vals[0].(int64),
			MarketingBudget: vals[1].(float64),
			VideoBudget:     vals[2].(float64),
			ViralFactor:     types.ViralMedium,
			DurationMonths:  3,
			RevenueSharePct: 40,
		}
	})

	properties.Property("streams grow with marketing spend", prop.ForAll(
		func(in PredictionInput) bool {
			base, err := svc.Predict(in)
			if err != nil {
				return false
			}
			more := in
			more.MarketingBudget += 100000
			bigger, err := svc.Predict(more)
			if err != nil {
				return false
			}
			return bigger.TotalStreams3M >= base.TotalStreams3M
		},
		genInput,
	))

	properties.Property("platform split conserves streams", prop.ForAll(
		func(in PredictionInput) bool {
			pred, err := svc.Predict(in)
			if err != nil {
				return false
			}
			sum := pred.Streaming.YouTube.Streams + pred.Streaming.Spotify.Streams +
				pred.Streaming.OtherPlatforms.Streams + pred.Streaming.AppleMusic.Streams
			return sum == pred.TotalStreams3M
		},
		genInput,
	))

	properties.Property("confidence stays within bounds", prop.ForAll(
		func(in PredictionInput) bool {
			pred, err := svc.Predict(in)
			if err != nil {
				return false
			}
			return pred.ConfidenceScore >= 0 && pred.ConfidenceScore <= 100
		},
		genInput,
	))

	properties.TestingRun(t)
}
