package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fanbacker/internal/models"
	"github.com/fanbacker/internal/types"
)

// pgFKViolation is the Postgres foreign_key_violation SQLSTATE.
const pgFKViolation = "23503"

const walletColumns = `
	id, user_id, balance, total_deposited, total_invested,
	total_earnings, total_withdrawn, created_at, updated_at`

// WalletRepository handles wallet and ledger persistence. All balance
// mutations go through transaction-scoped methods so that the balance update
// and its ledger entry commit together.
type WalletRepository struct {
	db *PostgresDB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *PostgresDB) *WalletRepository {
	return &WalletRepository{db: db}
}

func scanWallet(row pgx.Row) (*models.Wallet, error) {
	var w models.Wallet
	err := row.Scan(
		&w.ID, &w.UserID, &w.Balance, &w.TotalDeposited, &w.TotalInvested,
		&w.TotalEarnings, &w.TotalWithdrawn, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetByUserID retrieves a user's wallet without locking
func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`

	w, err := scanWallet(r.db.Pool().QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("wallet for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return w, nil
}

// GetForUpdateTx retrieves a user's wallet, creating it on first use, and
// locks its row for the duration of the transaction. Wallet operations for a
// single user serialize on this lock. Provisioning for an unknown user yields
// ErrNotFound rather than a raw constraint failure.
func (r *WalletRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, userID string) (*models.Wallet, error) {
	insert := `
		INSERT INTO wallets (id, user_id, balance, total_deposited, total_invested,
		                     total_earnings, total_withdrawn, created_at, updated_at)
		VALUES ($1, $2, 0, 0, 0, 0, 0, $3, $3)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, insert, uuid.New().String(), userID, time.Now()); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgFKViolation {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to provision wallet: %w", err)
	}

	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE`

	w, err := scanWallet(tx.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return w, nil
}

// ApplyEntryTx applies a ledger entry to a locked wallet: it updates the
// balance and totals and appends the wallet transaction atomically. The
// entry's WalletID and BalanceAfter are filled in from the wallet.
func (r *WalletRepository) ApplyEntryTx(ctx context.Context, tx pgx.Tx, w *models.Wallet, entry *models.WalletTransaction) error {
	if entry.Amount <= 0 {
		return fmt.Errorf("ledger entry amount must be positive, got %s", entry.Amount)
	}

	switch entry.Type {
	case types.TxDeposit:
		w.Balance += entry.Amount
		w.TotalDeposited += entry.Amount
	case types.TxRevenuePayout:
		w.Balance += entry.Amount
		w.TotalEarnings += entry.Amount
	case types.TxInvestment:
		w.Balance -= entry.Amount
		w.TotalInvested += entry.Amount
	case types.TxWithdrawal:
		w.Balance -= entry.Amount
		w.TotalWithdrawn += entry.Amount
	default:
		return fmt.Errorf("unknown ledger entry type %q", entry.Type)
	}

	if w.Balance < 0 {
		return fmt.Errorf("ledger entry would drive balance negative: %s", w.Balance)
	}

	now := time.Now()
	w.UpdatedAt = now

	update := `
		UPDATE wallets
		SET balance = $2, total_deposited = $3, total_invested = $4,
		    total_earnings = $5, total_withdrawn = $6, updated_at = $7
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, update,
		w.ID, w.Balance, w.TotalDeposited, w.TotalInvested,
		w.TotalEarnings, w.TotalWithdrawn, now,
	); err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.WalletID = w.ID
	entry.BalanceAfter = w.Balance
	entry.CreatedAt = now

	insert := `
		INSERT INTO wallet_transactions (id, wallet_id, tx_type, amount, balance_after,
		                                 campaign_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.Exec(ctx, insert,
		entry.ID, entry.WalletID, entry.Type, entry.Amount, entry.BalanceAfter,
		entry.CampaignID, entry.Description, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return nil
}

// ListTransactions returns a page of a wallet's ledger, newest first
func (r *WalletRepository) ListTransactions(ctx context.Context, walletID string, limit, offset int) ([]*models.WalletTransaction, error) {
	query := `
		SELECT id, wallet_id, tx_type, amount, balance_after, campaign_id, description, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool().Query(ctx, query, walletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.WalletTransaction
	for rows.Next() {
		var e models.WalletTransaction
		if err := rows.Scan(
			&e.ID, &e.WalletID, &e.Type, &e.Amount, &e.BalanceAfter,
			&e.CampaignID, &e.Description, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// EarningsByCampaign sums a user's revenue payout entries grouped by the
// campaign they came from
func (r *WalletRepository) EarningsByCampaign(ctx context.Context, userID string) (map[string]types.Money, error) {
	query := `
		SELECT wt.campaign_id, COALESCE(SUM(wt.amount), 0)
		FROM wallet_transactions wt
		JOIN wallets w ON w.id = wt.wallet_id
		WHERE w.user_id = $1 AND wt.tx_type = $2 AND wt.campaign_id IS NOT NULL
		GROUP BY wt.campaign_id
	`

	rows, err := r.db.Pool().Query(ctx, query, userID, types.TxRevenuePayout)
	if err != nil {
		return nil, fmt.Errorf("failed to sum earnings: %w", err)
	}
	defer rows.Close()

	earnings := make(map[string]types.Money)
	for rows.Next() {
		var campaignID string
		var amount types.Money
		if err := rows.Scan(&campaignID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan earnings row: %w", err)
		}
		earnings[campaignID] = amount
	}
	return earnings, rows.Err()
}

// CountTransactions returns the total number of ledger entries for a wallet
func (r *WalletRepository) CountTransactions(ctx context.Context, walletID string) (int64, error) {
	var count int64
	err := r.db.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM wallet_transactions WHERE wallet_id = $1`, walletID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	return count, nil
}
