package models

import (
	"time"

	"github.com/fanbacker/internal/types"
)

// Wallet represents a user's platform wallet. Balance is derived state over
// the ledger and must always satisfy
//
//	Balance == TotalDeposited + TotalEarnings - TotalInvested - TotalWithdrawn
//
// with Balance >= 0. Every balance change appends a WalletTransaction in the
// same database transaction.
type Wallet struct {
	ID             string      `json:"id" db:"id"`
	UserID         string      `json:"userId" db:"user_id"`
	Balance        types.Money `json:"balance" db:"balance"`
	TotalDeposited types.Money `json:"totalDeposited" db:"total_deposited"`
	TotalInvested  types.Money `json:"totalInvested" db:"total_invested"`
	TotalEarnings  types.Money `json:"totalEarnings" db:"total_earnings"`
	TotalWithdrawn types.Money `json:"totalWithdrawn" db:"total_withdrawn"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time   `json:"updatedAt" db:"updated_at"`
}

// ConsistentTotals reports whether the balance matches the running totals.
func (w *Wallet) ConsistentTotals() bool {
	return w.Balance == w.TotalDeposited+w.TotalEarnings-w.TotalInvested-w.TotalWithdrawn &&
		w.Balance >= 0
}

// WalletTransaction represents one append-only ledger entry. Amount is always
// positive; Type determines the direction.
type WalletTransaction struct {
	ID           string             `json:"id" db:"id"`
	WalletID     string             `json:"walletId" db:"wallet_id"`
	Type         types.WalletTxType `json:"type" db:"tx_type"`
	Amount       types.Money        `json:"amount" db:"amount"`
	BalanceAfter types.Money        `json:"balanceAfter" db:"balance_after"`
	CampaignID   *string            `json:"campaignId,omitempty" db:"campaign_id"`
	Description  *string            `json:"description,omitempty" db:"description"`
	CreatedAt    time.Time          `json:"createdAt" db:"created_at"`
}
