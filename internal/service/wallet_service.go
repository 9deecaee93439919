package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fanbacker/internal/config"
	"github.com/fanbacker/internal/errors"
	"github.com/fanbacker/internal/logging"
	"github.com/fanbacker/internal/models"
	"github.com/fanbacker/internal/storage"
	"github.com/fanbacker/internal/types"
)

// WalletService implements the append-only wallet ledger. Every operation
// locks the wallet row, validates, applies the balance change and appends
// the ledger entry in one transaction, so the invariant
// balance = deposited + earnings - invested - withdrawn holds on every exit
// path.
type WalletService struct {
	db      *storage.PostgresDB
	wallets *storage.WalletRepository
	audit   *AuditService
	policy  config.PolicyConfig
	logger  *logging.Logger
}

// NewWalletService creates a new wallet service
func NewWalletService(db *storage.PostgresDB, wallets *storage.WalletRepository, audit *AuditService, policy config.PolicyConfig, logger *logging.Logger) *WalletService {
	return &WalletService{
		db:      db,
		wallets: wallets,
		audit:   audit,
		policy:  policy,
		logger:  logger,
	}
}

// walletLookupError distinguishes an unknown user from a database failure
// when provisioning or locking a wallet.
func walletLookupError(op, userID string, err error) error {
	if stderrors.Is(err, storage.ErrNotFound) {
		return errors.NewNotFoundError("user", userID)
	}
	return errors.NewDatabaseError(op, err)
}

// Deposit adds funds to the user's wallet. The amount must lie within the
// platform's deposit bounds.
func (s *WalletService) Deposit(ctx context.Context, userID string, amount types.Money) (*models.Wallet, *models.WalletTransaction, error) {
	if amount < s.policy.MinDeposit || amount > s.policy.MaxDeposit {
		return nil, nil, errors.NewInvalidAmountError(fmt.Sprintf(
			"deposit must be between %s and %s rupees", s.policy.MinDeposit, s.policy.MaxDeposit))
	}

	var wallet *models.Wallet
	entry := &models.WalletTransaction{Type: types.TxDeposit, Amount: amount}

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		w, err := s.wallets.GetForUpdateTx(ctx, tx, userID)
		if err != nil {
			return walletLookupError("deposit", userID, err)
		}
		if err := s.wallets.ApplyEntryTx(ctx, tx, w, entry); err != nil {
			return errors.NewDatabaseError("deposit", err)
		}
		wallet = w
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"userId": userID,
		"amount": amount.Rupees(),
	}).Info("Wallet deposit settled")

	s.audit.Record(&storage.AuditEvent{
		EventType: storage.AuditDeposit,
		ActorID:   userID,
		Amount:    amount,
	})

	return wallet, entry, nil
}

// Withdraw removes funds from the user's wallet.
func (s *WalletService) Withdraw(ctx context.Context, userID string, amount types.Money) (*models.Wallet, *models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, nil, errors.NewInvalidAmountError("withdrawal amount must be positive")
	}

	var wallet *models.Wallet
	entry := &models.WalletTransaction{Type: types.TxWithdrawal, Amount: amount}

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		w, err := s.wallets.GetForUpdateTx(ctx, tx, userID)
		if err != nil {
			return walletLookupError("withdraw", userID, err)
		}
		if amount > w.Balance {
			return errors.NewInsufficientFundsError(w.Balance, amount)
		}
		if err := s.wallets.ApplyEntryTx(ctx, tx, w, entry); err != nil {
			return errors.NewDatabaseError("withdraw", err)
		}
		wallet = w
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"userId": userID,
		"amount": amount.Rupees(),
	}).Info("Wallet withdrawal settled")

	s.audit.Record(&storage.AuditEvent{
		EventType: storage.AuditWithdrawal,
		ActorID:   userID,
		Amount:    amount,
	})

	return wallet, entry, nil
}

// GetWallet returns the user's wallet, provisioning an empty one on first
// access.
func (s *WalletService) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !stderrors.Is(err, storage.ErrNotFound) {
		return nil, errors.NewDatabaseError("get wallet", err)
	}

	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		w, err := s.wallets.GetForUpdateTx(ctx, tx, userID)
		if err != nil {
			return walletLookupError("provision wallet", userID, err)
		}
		wallet = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// WalletHistory is one page of a wallet's ledger, newest first
type WalletHistory struct {
	Entries  []*models.WalletTransaction `json:"entries"`
	Total    int64                       `json:"total"`
	Page     int                         `json:"page"`
	PageSize int                         `json:"pageSize"`
}

// History returns a page of the user's ledger in reverse chronological
// order. Each entry carries the balance snapshot taken at write time.
func (s *WalletService) History(ctx context.Context, userID string, page, pageSize int) (*WalletHistory, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.wallets.ListTransactions(ctx, wallet.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, errors.NewDatabaseError("wallet history", err)
	}
	total, err := s.wallets.CountTransactions(ctx, wallet.ID)
	if err != nil {
		return nil, errors.NewDatabaseError("wallet history", err)
	}

	return &WalletHistory{
		Entries:  entries,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
