// Package types provides common type definitions for the campaign economics engine.
package types

import (
	"fmt"
	"math"
)

// Money is a monetary amount in paise (1/100 INR). Ledger arithmetic is
// integral so that conserved sums stay exact.
type Money int64

// MoneyFromRupees converts a rupee amount to Money, rounding half away from zero.
func MoneyFromRupees(rupees float64) Money {
	return Money(math.Round(rupees * 100))
}

// Rupees returns the amount in rupees as a float.
func (m Money) Rupees() float64 {
	return float64(m) / 100
}

// String formats the amount as a rupee string, e.g. "1234.50".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// UserRole represents the role of a platform account
type UserRole string

const (
	// RoleArtist represents an account that creates campaigns and reports revenue
	RoleArtist UserRole = "artist"
	// RoleInvestor represents an account that buys campaign partitions
	RoleInvestor UserRole = "investor"
)

// Valid reports whether the role is a known role.
func (r UserRole) Valid() bool {
	return r == RoleArtist || r == RoleInvestor
}

// FundingStatus represents the lifecycle state of a campaign
type FundingStatus string

const (
	// FundingDraft represents a campaign being edited, not yet open for investment
	FundingDraft FundingStatus = "draft"
	// FundingLive represents a campaign open for investment
	FundingLive FundingStatus = "live"
	// FundingFunded represents a campaign that reached its target amount
	FundingFunded FundingStatus = "funded"
	// FundingFailed represents a campaign whose window closed below target
	FundingFailed FundingStatus = "failed"
	// FundingClosed represents a settled campaign
	FundingClosed FundingStatus = "closed"
)

// Genre represents a music genre recognized by the prediction model
type Genre string

const (
	GenreDHH        Genre = "dhh"
	GenreIndiePop   Genre = "indie pop"
	GenrePop        Genre = "pop"
	GenreIndie      Genre = "indie"
	GenreBollywood  Genre = "bollywood"
	GenrePunjabi    Genre = "punjabi"
	GenreElectronic Genre = "electronic"
	GenreRock       Genre = "rock"
)

// ViralFactor represents the expected virality tier of a release
type ViralFactor string

const (
	// ViralLow represents minimal organic spread
	ViralLow ViralFactor = "low"
	// ViralMedium represents typical organic spread
	ViralMedium ViralFactor = "medium"
	// ViralHigh represents strong organic spread
	ViralHigh ViralFactor = "high"
	// ViralViral represents breakout spread
	ViralViral ViralFactor = "viral"
)

// Valid reports whether the factor is a known tier.
func (v ViralFactor) Valid() bool {
	switch v {
	case ViralLow, ViralMedium, ViralHigh, ViralViral:
		return true
	}
	return false
}

// WalletTxType represents the kind of a wallet ledger entry
type WalletTxType string

const (
	// TxDeposit represents funds added from outside the platform
	TxDeposit WalletTxType = "deposit"
	// TxWithdrawal represents funds taken out of the platform
	TxWithdrawal WalletTxType = "withdrawal"
	// TxInvestment represents funds debited into a campaign
	TxInvestment WalletTxType = "investment"
	// TxRevenuePayout represents a distribution credit from a campaign
	TxRevenuePayout WalletTxType = "revenue_payout"
)

// FundingSource represents where investment funds are drawn from
type FundingSource string

const (
	// SourceWallet draws the investment from the investor's platform wallet
	SourceWallet FundingSource = "wallet"
	// SourceExternal records an investment settled outside the wallet ledger
	SourceExternal FundingSource = "external"
)

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}
