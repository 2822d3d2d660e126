package ledger

import (
	"context"
	"fmt"
	"time"

	"kobopay/internal/errors"
	"kobopay/internal/events"
	"kobopay/internal/models"
	"kobopay/internal/repositories"
	"kobopay/internal/repositories/cache"
	"kobopay/internal/services/fees"

	"github.com/shopspring/decimal"
)

// Service exposes the ledger actions as standalone atomic operations and
// implements the synchronous wallet-to-wallet transfer.
type Service struct {
	repo      repositories.WalletRepository
	fees      *fees.Calculator
	cache     *cache.CacheService
	publisher events.Publisher
}

func NewService(repo repositories.WalletRepository, calc *fees.Calculator, cacheSvc *cache.CacheService, publisher events.Publisher) *Service {
	if repo == nil {
		panic("repo is required")
	}
	if calc == nil {
		panic("fee calculator is required")
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		fees:      calc,
		cache:     cacheSvc,
		publisher: publisher,
	}
}

// Deposit runs the deposit action as its own unit of work.
func (s *Service) Deposit(ctx context.Context, walletUUID string, amount decimal.Decimal, transactionID uint) (*Mutation, error) {
	var mutation *Mutation
	err := s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		var err error
		mutation, err = Deposit(tx, walletUUID, amount, transactionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, walletUUID)
	return mutation, nil
}

// Withdraw runs the withdraw action as its own unit of work.
func (s *Service) Withdraw(ctx context.Context, walletUUID string, amount decimal.Decimal, transactionID uint) (*Mutation, error) {
	var mutation *Mutation
	err := s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		var err error
		mutation, err = Withdraw(tx, walletUUID, amount, transactionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, walletUUID)
	return mutation, nil
}

// Reversal runs the reversal action as its own unit of work.
func (s *Service) Reversal(ctx context.Context, transactionID uint) (*Mutation, error) {
	var mutation *Mutation
	var walletUUID string
	err := s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		var err error
		mutation, err = Reversal(tx, transactionID)
		if err != nil {
			return err
		}
		wallet, err := tx.GetByID(mutation.WalletID)
		if err != nil {
			return err
		}
		walletUUID = wallet.UUID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, walletUUID)
	return mutation, nil
}

// TransferRequest describes a synchronous transfer between two wallets.
// The acting user is passed explicitly; there is no ambient session state.
type TransferRequest struct {
	UserID     uint
	SourceUUID string
	DestUUID   string
	Amount     decimal.Decimal
}

// TransferResult reports both legs of a committed transfer.
type TransferResult struct {
	SourceTransaction *models.Transaction
	DestTransaction   *models.Transaction
	Fee               decimal.Decimal
	SourceBalance     decimal.Decimal
	DestBalance       decimal.Decimal
}

// Transfer debits the source by amount plus one transfer fee and credits
// the destination by amount minus the same fee. Both legs, their
// transactions, and their audit rows commit as one unit; insufficient
// funds aborts with no mutation.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if req.Amount.Sign() <= 0 {
		return nil, errors.ErrInvalidAmount
	}
	if req.SourceUUID == req.DestUUID {
		return nil, fmt.Errorf("%w: cannot transfer to the same wallet", errors.ErrInvalidAmount)
	}

	var result *TransferResult
	err := s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		// Lock both wallets in a deterministic order so two opposing
		// transfers cannot deadlock.
		first, second := req.SourceUUID, req.DestUUID
		if second < first {
			first, second = second, first
		}
		if _, err := tx.GetByUUIDForUpdate(first); err != nil {
			return err
		}
		if _, err := tx.GetByUUIDForUpdate(second); err != nil {
			return err
		}

		source, err := tx.GetByUUIDForUpdate(req.SourceUUID)
		if err != nil {
			return err
		}
		dest, err := tx.GetByUUIDForUpdate(req.DestUUID)
		if err != nil {
			return err
		}

		if source.TransactionLimit != nil && req.Amount.GreaterThan(*source.TransactionLimit) {
			return errors.ErrTransactionLimitExceeded
		}

		fee := s.fees.Fee(req.Amount, source.Currency, fees.OpTransfer)
		totalDebit := req.Amount.Add(fee)
		if source.Balance.LessThan(totalDebit) {
			return errors.ErrInsufficientFunds
		}

		sourceTx := &models.Transaction{
			UserID:    req.UserID,
			WalletID:  source.ID,
			Type:      models.TransactionTypeTransferWithdraw,
			Status:    models.TransactionStatusSuccess,
			Amount:    req.Amount,
			Fee:       fee,
			Currency:  source.Currency,
			Reference: models.GenerateReference(),
			Narration: fmt.Sprintf("%s Wallet Transfer", source.Currency),
		}
		if err := tx.CreateTransaction(sourceTx); err != nil {
			return err
		}

		previous := source.Balance
		source.Balance = source.Balance.Sub(totalDebit)
		if err := tx.Update(source); err != nil {
			return fmt.Errorf("failed to debit source wallet: %w", err)
		}
		if err := appendHistory(tx, source, previous, totalDebit, models.HistoryTypeTransferWithdraw, sourceTx.ID); err != nil {
			return err
		}

		credit := req.Amount.Sub(fee)
		destTx := &models.Transaction{
			UserID:    dest.UserID,
			WalletID:  dest.ID,
			Type:      models.TransactionTypeTransferDeposit,
			Status:    models.TransactionStatusSuccess,
			Amount:    req.Amount,
			Fee:       fee,
			Currency:  dest.Currency,
			Reference: models.GenerateReference(),
			Narration: fmt.Sprintf("%s Wallet Transfer", dest.Currency),
		}
		if err := tx.CreateTransaction(destTx); err != nil {
			return err
		}

		previous = dest.Balance
		dest.Balance = dest.Balance.Add(credit)
		if err := tx.Update(dest); err != nil {
			return fmt.Errorf("failed to credit destination wallet: %w", err)
		}
		if err := appendHistory(tx, dest, previous, credit, models.HistoryTypeTransferDeposit, destTx.ID); err != nil {
			return err
		}

		result = &TransferResult{
			SourceTransaction: sourceTx,
			DestTransaction:   destTx,
			Fee:               fee,
			SourceBalance:     source.Balance,
			DestBalance:       dest.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, req.SourceUUID)
	s.invalidate(ctx, req.DestUUID)
	s.publishCompleted(ctx, req.SourceUUID, result.SourceTransaction)
	s.publishCompleted(ctx, req.DestUUID, result.DestTransaction)
	return result, nil
}

func (s *Service) invalidate(ctx context.Context, walletUUID string) {
	if s.cache == nil || walletUUID == "" {
		return
	}
	_ = s.cache.InvalidateWallet(ctx, walletUUID)
}

func (s *Service) publishCompleted(ctx context.Context, walletUUID string, tx *models.Transaction) {
	_ = s.publisher.TransactionCompleted(ctx, events.TransactionCompleted{
		TransactionID: tx.ID,
		WalletUUID:    walletUUID,
		Type:          tx.Type,
		Status:        tx.Status,
		Amount:        tx.Amount,
		Fee:           tx.Fee,
		Currency:      tx.Currency,
		Reference:     tx.Reference,
		CompletedAt:   time.Now().UTC(),
	})
}
