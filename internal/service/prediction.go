package service

import (
	"math"

	"github.com/fanbacker/internal/errors"
	"github.com/fanbacker/internal/types"
)

// PredictionModelVersion identifies the coefficient set below. Bump it when
// any coefficient changes so stored forecasts stay comparable.
const PredictionModelVersion = "v1"

// Model coefficients. Revenue figures are whole rupees; streams are counts.
// Everything here is deliberately a plain constant so that recalibration is
// an explicit, reviewable change.
const (
	streamsPerFollower       = 2.5
	streamsPerMarketingRupee = 0.9
	streamsPerVideoRupee     = 0.45

	youtubeStreamShare = 0.45
	spotifyStreamShare = 0.28
	otherStreamShare   = 0.22
	// Apple Music takes the remainder of the split below.

	youtubeRevenuePerStream = 0.10
	spotifyRevenuePerStream = 0.29
	otherRevenuePerStream   = 0.06
	appleRevenuePerStream   = 0.50

	revenuePerReelUse   = 0.35
	revenuePerSyncDeal  = 75000.0
	revenuePerMerchSale = 600.0

	cumulative6MonthFactor  = 1.55
	cumulative12MonthFactor = 2.10
)

var genreMultipliers = map[types.Genre]float64{
	types.GenreDHH:        1.30,
	types.GenrePop:        1.25,
	types.GenrePunjabi:    1.20,
	types.GenreBollywood:  1.15,
	types.GenreIndiePop:   1.05,
	types.GenreElectronic: 0.95,
	types.GenreIndie:      0.90,
	types.GenreRock:       0.85,
}

var viralMultipliers = map[types.ViralFactor]float64{
	types.ViralLow:    0.6,
	types.ViralMedium: 1.0,
	types.ViralHigh:   1.6,
	types.ViralViral:  2.5,
}

// reelsUseRates maps virality to short-form uses per projected stream.
var reelsUseRates = map[types.ViralFactor]float64{
	types.ViralLow:    0.01,
	types.ViralMedium: 0.02,
	types.ViralHigh:   0.035,
	types.ViralViral:  0.06,
}

// PredictionInput carries the campaign attributes the model consumes.
// Budgets are rupees.
type PredictionInput struct {
	Genre           types.Genre       `json:"genre"`
	MarketingBudget float64           `json:"marketingBudget"`
	VideoBudget     float64           `json:"videoBudget"`
	ArtistFollowers int64             `json:"artistFollowers"`
	ViralFactor     types.ViralFactor `json:"viralFactor"`
	DurationMonths  int               `json:"durationMonths"`
	RevenueSharePct float64           `json:"revenueSharePct"`
}

// PlatformProjection is one streaming platform's slice of the forecast
type PlatformProjection struct {
	Streams int64   `json:"streams"`
	Revenue float64 `json:"revenue"`
}

// StreamingBreakdown splits projected streams across platforms
type StreamingBreakdown struct {
	YouTube        PlatformProjection `json:"youtube"`
	Spotify        PlatformProjection `json:"spotify"`
	OtherPlatforms PlatformProjection `json:"otherPlatforms"`
	AppleMusic     PlatformProjection `json:"appleMusic"`
}

// ReelsProjection is the short-form video revenue line
type ReelsProjection struct {
	Uses    int64   `json:"uses"`
	Revenue float64 `json:"revenue"`
}

// SyncProjection is the sync licensing revenue line
type SyncProjection struct {
	Deals   int64   `json:"deals"`
	Revenue float64 `json:"revenue"`
}

// MerchProjection is the merchandise revenue line
type MerchProjection struct {
	Sales   int64   `json:"sales"`
	Revenue float64 `json:"revenue"`
}

// LiveProjection is the live show revenue line
type LiveProjection struct {
	Revenue float64 `json:"revenue"`
}

// AdditionalBreakdown groups the non-streaming revenue lines
type AdditionalBreakdown struct {
	ReelsShorts   ReelsProjection `json:"reelsShorts"`
	SyncLicensing SyncProjection  `json:"syncLicensing"`
	Merchandise   MerchProjection `json:"merchandise"`
	LiveShows     LiveProjection  `json:"liveShows"`
}

// RevenuePrediction is the full deterministic forecast for a campaign.
// Revenue figures are whole rupees; 6 and 12 month figures are cumulative.
type RevenuePrediction struct {
	ModelVersion     string              `json:"modelVersion"`
	TotalStreams3M   int64               `json:"totalStreams3m"`
	Streaming        StreamingBreakdown  `json:"streaming"`
	Additional       AdditionalBreakdown `json:"additional"`
	GrossRevenue3M   float64             `json:"grossRevenue3m"`
	GrossRevenue6M   float64             `json:"grossRevenue6m"`
	GrossRevenue12M  float64             `json:"grossRevenue12m"`
	InvestmentTotal  float64             `json:"investmentTotal"`
	NetRevenue3M     float64             `json:"netRevenue3m"`
	ROIPercentage    float64             `json:"roiPercentage"`
	InvestorShare3M  float64             `json:"investorShare3m"`
	InvestorShare6M  float64             `json:"investorShare6m"`
	InvestorShare12M float64             `json:"investorShare12m"`
	ConfidenceScore  int                 `json:"confidenceScore"`
	BreakevenStreams int64               `json:"breakevenStreams"`
}

// PredictionService computes revenue forecasts. It is pure and safe for
// unlimited concurrency.
type PredictionService struct{}

// NewPredictionService creates a new prediction service
func NewPredictionService() *PredictionService {
	return &PredictionService{}
}

// Predict computes the forecast for the given inputs. Unknown genres fall
// back to a neutral multiplier; degenerate inputs (zero followers, zero
// budgets) produce a low-confidence, low-revenue forecast rather than an
// error.
func (s *PredictionService) Predict(in PredictionInput) (*RevenuePrediction, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	totalStreams := s.projectStreams(in)
	streaming := splitStreams(totalStreams)

	additional := AdditionalBreakdown{
		ReelsShorts:   projectReels(totalStreams, in.ViralFactor),
		SyncLicensing: projectSync(in),
		Merchandise:   projectMerch(in.ArtistFollowers),
		LiveShows:     projectLive(in.ArtistFollowers),
	}

	gross3m := streaming.YouTube.Revenue + streaming.Spotify.Revenue +
		streaming.OtherPlatforms.Revenue + streaming.AppleMusic.Revenue +
		additional.ReelsShorts.Revenue + additional.SyncLicensing.Revenue +
		additional.Merchandise.Revenue + additional.LiveShows.Revenue

	gross6m := math.Round(gross3m * cumulative6MonthFactor)
	gross12m := math.Round(gross3m * cumulative12MonthFactor)

	investmentTotal := in.MarketingBudget + in.VideoBudget
	net3m := gross3m - investmentTotal

	roi := 0.0
	if investmentTotal > 0 {
		roi = 100 * net3m / investmentTotal
	}

	pred := &RevenuePrediction{
		ModelVersion:     PredictionModelVersion,
		TotalStreams3M:   totalStreams,
		Streaming:        streaming,
		Additional:       additional,
		GrossRevenue3M:   gross3m,
		GrossRevenue6M:   gross6m,
		GrossRevenue12M:  gross12m,
		InvestmentTotal:  investmentTotal,
		NetRevenue3M:     net3m,
		ROIPercentage:    roi,
		InvestorShare3M:  gross3m * in.RevenueSharePct / 100,
		InvestorShare6M:  gross6m * in.RevenueSharePct / 100,
		InvestorShare12M: gross12m * in.RevenueSharePct / 100,
		ConfidenceScore:  confidenceScore(in),
		BreakevenStreams: breakevenStreams(investmentTotal, gross3m, totalStreams),
	}

	return pred, nil
}

func (s *PredictionService) validate(in PredictionInput) error {
	if in.MarketingBudget < 0 {
		return errors.NewInvalidParameterError("marketingBudget", "must not be negative")
	}
	if in.VideoBudget < 0 {
		return errors.NewInvalidParameterError("videoBudget", "must not be negative")
	}
	if in.ArtistFollowers < 0 {
		return errors.NewInvalidParameterError("artistFollowers", "must not be negative")
	}
	if !in.ViralFactor.Valid() {
		return errors.NewInvalidParameterError("viralFactor", "must be one of low, medium, high, viral")
	}
	if in.DurationMonths != 3 && in.DurationMonths != 6 {
		return errors.NewInvalidParameterError("durationMonths", "must be 3 or 6")
	}
	if in.RevenueSharePct < 1 || in.RevenueSharePct > 100 {
		return errors.NewInvalidParameterError("revenueSharePct", "must be within [1, 100]")
	}
	return nil
}

// projectStreams is the core reach formula: a weighted sum of audience and
// spend, scaled by genre, virality and campaign length. Every term is
// non-negative and every multiplier grows with its tier, which keeps the
// projection monotonic in each input.
func (s *PredictionService) projectStreams(in PredictionInput) int64 {
	base := float64(in.ArtistFollowers)*streamsPerFollower +
		in.MarketingBudget*streamsPerMarketingRupee +
		in.VideoBudget*streamsPerVideoRupee

	genreMult, ok := genreMultipliers[in.Genre]
	if !ok {
		genreMult = 1.0
	}

	durationMult := 1.0
	if in.DurationMonths >= 6 {
		durationMult = 1.15
	}

	return int64(math.Round(base * genreMult * viralMultipliers[in.ViralFactor] * durationMult))
}

// splitStreams divides the total across platforms. YouTube takes the
// remainder so the platform counts always sum back to the total.
func splitStreams(total int64) StreamingBreakdown {
	spotify := int64(float64(total) * spotifyStreamShare)
	other := int64(float64(total) * otherStreamShare)
	apple := int64(float64(total) * (1 - youtubeStreamShare - spotifyStreamShare - otherStreamShare))
	youtube := total - spotify - other - apple

	return StreamingBreakdown{
		YouTube:        PlatformProjection{Streams: youtube, Revenue: math.Round(float64(youtube) * youtubeRevenuePerStream)},
		Spotify:        PlatformProjection{Streams: spotify, Revenue: math.Round(float64(spotify) * spotifyRevenuePerStream)},
		OtherPlatforms: PlatformProjection{Streams: other, Revenue: math.Round(float64(other) * otherRevenuePerStream)},
		AppleMusic:     PlatformProjection{Streams: apple, Revenue: math.Round(float64(apple) * appleRevenuePerStream)},
	}
}

func projectReels(totalStreams int64, viral types.ViralFactor) ReelsProjection {
	uses := int64(float64(totalStreams) * reelsUseRates[viral])
	return ReelsProjection{
		Uses:    uses,
		Revenue: math.Round(float64(uses) * revenuePerReelUse),
	}
}

// projectSync models label interest as budget thresholds. Thresholds only
// unlock more deals as budget or virality grows.
func projectSync(in PredictionInput) SyncProjection {
	budget := in.MarketingBudget + in.VideoBudget
	viralRank := viralMultipliers[in.ViralFactor]

	var deals int64
	switch {
	case budget >= 500000 && viralRank >= viralMultipliers[types.ViralHigh]:
		deals = 2
	case budget >= 200000 && viralRank >= viralMultipliers[types.ViralMedium]:
		deals = 1
	}

	return SyncProjection{
		Deals:   deals,
		Revenue: float64(deals) * revenuePerSyncDeal,
	}
}

func projectMerch(followers int64) MerchProjection {
	if followers < 50000 {
		return MerchProjection{}
	}
	sales := followers / 1000
	return MerchProjection{
		Sales:   sales,
		Revenue: float64(sales) * revenuePerMerchSale,
	}
}

func projectLive(followers int64) LiveProjection {
	switch {
	case followers >= 100000:
		return LiveProjection{Revenue: 150000}
	case followers >= 25000:
		return LiveProjection{Revenue: 40000}
	default:
		return LiveProjection{}
	}
}

// confidenceScore grades how many signals back the forecast. Scores are
// clamped to [0, 100].
func confidenceScore(in PredictionInput) int {
	score := 20.0

	// Audience signal, saturating around a million followers.
	if in.ArtistFollowers > 0 {
		score += math.Min(25, 5*math.Log10(float64(in.ArtistFollowers)+1))
	}

	switch in.ViralFactor {
	case types.ViralMedium:
		score += 8
	case types.ViralHigh:
		score += 16
	case types.ViralViral:
		score += 24
	}

	budget := in.MarketingBudget + in.VideoBudget
	score += math.Min(15, budget/50000*5)

	if in.DurationMonths >= 6 {
		score += 3
	}

	if mult, ok := genreMultipliers[in.Genre]; ok {
		if mult >= 1.15 {
			score += 5
		} else if mult >= 1.0 {
			score += 3
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(score)
}

// breakevenStreams returns the stream count at which cumulative revenue
// covers the investment, assuming the 3-month blended revenue per stream.
// With no projected revenue per stream there is no break-even point and the
// result is 0.
func breakevenStreams(investmentTotal, gross3m float64, totalStreams int64) int64 {
	if investmentTotal <= 0 {
		return 0
	}
	if totalStreams <= 0 || gross3m <= 0 {
		return 0
	}
	perStream := gross3m / float64(totalStreams)
	return int64(math.Ceil(investmentTotal / perStream))
}
