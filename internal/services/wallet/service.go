package wallet

import (
	"context"
	"fmt"

	"kobopay/internal/errors"
	"kobopay/internal/models"
	"kobopay/internal/providers"
	"kobopay/internal/repositories"
	"kobopay/internal/repositories/cache"
	"kobopay/internal/services/fees"
	"kobopay/internal/services/ledger"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type service struct {
	repo     repositories.WalletRepository
	registry *providers.Registry
	fees     *fees.Calculator
	cache    *cache.CacheService
	log      *logrus.Logger
}

// NewService creates the wallet orchestration service.
func NewService(
	repo repositories.WalletRepository,
	registry *providers.Registry,
	calc *fees.Calculator,
	cacheSvc *cache.CacheService,
	log *logrus.Logger,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if registry == nil {
		panic("provider registry is required")
	}
	if calc == nil {
		panic("fee calculator is required")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &service{
		repo:     repo,
		registry: registry,
		fees:     calc,
		cache:    cacheSvc,
		log:      log,
	}
}

func (s *service) CreateWallet(ctx context.Context, userID uint, currency string) (*models.Wallet, error) {
	if !s.fees.Supports(currency, fees.OpDeposit) {
		return nil, fmt.Errorf("no fee policy configured for currency %q", currency)
	}
	wallet := &models.Wallet{
		UserID:   userID,
		Currency: currency,
		Balance:  decimal.Zero,
	}
	if err := s.repo.Create(wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.CacheWallet(ctx, wallet)
	}
	return wallet, nil
}

func (s *service) GetWallet(ctx context.Context, walletUUID string) (*models.Wallet, error) {
	if s.cache != nil {
		if wallet, ok := s.cache.GetWallet(ctx, walletUUID); ok {
			return wallet, nil
		}
	}
	wallet, err := s.repo.GetByUUID(walletUUID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.CacheWallet(ctx, wallet)
	}
	return wallet, nil
}

// InitiateDeposit builds the provider payment request and hands back the
// payment handle. The wallet is untouched: the credit happens only when the
// provider's webhook is verified and reconciled.
func (s *service) InitiateDeposit(ctx context.Context, user *models.User, wallet *models.Wallet, amount decimal.Decimal) (*DepositInitiation, error) {
	if amount.Sign() <= 0 {
		return nil, errors.ErrInvalidAmount
	}
	if wallet.TransactionLimit != nil && amount.GreaterThan(*wallet.TransactionLimit) {
		return nil, errors.ErrTransactionLimitExceeded
	}

	provider := s.registry.Deposit()
	initiation, err := provider.InitiateDeposit(ctx, providers.InitiateDepositRequest{
		Reference:  models.GenerateReference(),
		Currency:   wallet.Currency,
		Email:      user.Email,
		WalletUUID: wallet.UUID,
		Amount:     amount,
	})
	if err != nil {
		s.log.WithError(err).WithField("provider", provider.Name()).Warn("deposit initiation rejected")
		return nil, fmt.Errorf("%w: %v", errors.ErrProviderInitiationFailed, err)
	}
	if initiation.PaymentURL == "" {
		return nil, errors.ErrProviderInitiationFailed
	}

	return &DepositInitiation{
		PaymentURL: initiation.PaymentURL,
		Reference:  initiation.Reference,
	}, nil
}

// InitiateWithdraw debits the wallet optimistically by amount plus fee,
// records a pending transaction, and asks the provider to pay out the
// amount. Any failure, including a provider rejection, rolls the whole
// unit back.
func (s *service) InitiateWithdraw(ctx context.Context, user *models.User, wallet *models.Wallet, amount decimal.Decimal) (*WithdrawInitiation, error) {
	if amount.Sign() <= 0 {
		return nil, errors.ErrInvalidAmount
	}
	if wallet.TransactionLimit != nil && amount.GreaterThan(*wallet.TransactionLimit) {
		return nil, errors.ErrTransactionLimitExceeded
	}

	reference := models.GenerateReference()
	fee := s.fees.Fee(amount, wallet.Currency, fees.OpWithdraw)
	totalDebit := amount.Add(fee)
	provider := s.registry.Withdraw()

	var result *WithdrawInitiation
	err := s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		transaction := &models.Transaction{
			UserID:    user.ID,
			WalletID:  wallet.ID,
			Type:      models.TransactionTypeWithdraw,
			Status:    models.TransactionStatusPending,
			Amount:    amount,
			Fee:       fee,
			Currency:  wallet.Currency,
			Reference: reference,
			Narration: fmt.Sprintf("%s Wallet Withdraw", wallet.Currency),
		}
		if err := tx.CreateTransaction(transaction); err != nil {
			return err
		}

		if _, err := ledger.Withdraw(tx, wallet.UUID, totalDebit, transaction.ID); err != nil {
			return err
		}

		bank, err := tx.GetBankDetail(wallet.ID)
		if err != nil {
			return err
		}

		initiation, err := provider.InitiateWithdraw(ctx, providers.InitiateWithdrawRequest{
			Reference:  reference,
			Currency:   wallet.Currency,
			BankDetail: *bank,
			WalletUUID: wallet.UUID,
			Amount:     amount,
		})
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"provider":  provider.Name(),
				"reference": reference,
			}).Warn("withdraw initiation rejected, rolling back")
			return fmt.Errorf("%w: %v", errors.ErrProviderInitiationFailed, err)
		}

		result = &WithdrawInitiation{
			Reference:   reference,
			ProviderRef: initiation.ProviderRef,
			Amount:      amount,
			Fee:         fee,
			TotalDebit:  totalDebit,
			Currency:    wallet.Currency,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateWallet(ctx, wallet.UUID)
	}
	return result, nil
}

func (s *service) GetHistory(ctx context.Context, walletUUID string, limit, offset int) ([]models.WalletHistory, error) {
	wallet, err := s.repo.GetByUUID(walletUUID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetHistory(wallet.ID, limit, offset)
}

func (s *service) GetTransactions(ctx context.Context, walletUUID string, limit, offset int) ([]models.Transaction, error) {
	wallet, err := s.repo.GetByUUID(walletUUID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetTransactions(wallet.ID, limit, offset)
}
