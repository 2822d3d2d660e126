// Package webhook reconciles provider webhook deliveries against the
// ledger. Every delivery is logged raw before anything else, then
// authenticated, re-verified with the provider server-side, and only then
// allowed to touch a balance. Amounts and statuses in the payload itself
// are never trusted.
package webhook

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"kobopay/internal/errors"
	"kobopay/internal/events"
	"kobopay/internal/models"
	"kobopay/internal/providers"
	"kobopay/internal/repositories"
	"kobopay/internal/services/fees"
	"kobopay/internal/services/ledger"

	"github.com/sirupsen/logrus"
)

// Log notes persisted on the webhook log row. The "OK - " prefix marks
// deliveries that were understood and deliberately not applied.
const (
	noteValidationFailed   = "Request could not be validated."
	noteVerificationFailed = "Transaction could not be verified."
	noteDuplicate          = "Transaction already exists"
	noteNotSuccessful      = "OK - Transaction is not successful"
	noteUnknownTransaction = "Transaction does not exist"
	noteAlreadyCompleted   = "OK - Transaction already completed"
	noteWalletUnresolved   = "Wallet could not be resolved."
	noteOK                 = "OK"
)

// errRedelivered aborts a unit of work when the status transition lost the
// race against a concurrent delivery of the same webhook.
var errRedelivered = stderrors.New("transaction already transitioned")

// Service processes incoming provider webhooks.
type Service interface {
	Process(ctx context.Context, providerName string, delivery providers.WebhookDelivery) Outcome
}

// Cache is the read-cache surface the pipeline touches. Satisfied by
// repositories/cache.CacheService.
type Cache interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, bool)
	CacheUser(ctx context.Context, user *models.User) error
	InvalidateWallet(ctx context.Context, uuid string) error
}

type service struct {
	repo      repositories.WalletRepository
	users     repositories.UserRepository
	registry  *providers.Registry
	fees      *fees.Calculator
	cache     Cache
	publisher events.Publisher
	log       *logrus.Logger
}

// NewService creates the webhook reconciliation service.
func NewService(
	repo repositories.WalletRepository,
	users repositories.UserRepository,
	registry *providers.Registry,
	calc *fees.Calculator,
	cacheSvc Cache,
	publisher events.Publisher,
	log *logrus.Logger,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if users == nil {
		panic("user repository is required")
	}
	if registry == nil {
		panic("provider registry is required")
	}
	if calc == nil {
		panic("fee calculator is required")
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &service{
		repo:      repo,
		users:     users,
		registry:  registry,
		fees:      calc,
		cache:     cacheSvc,
		publisher: publisher,
		log:       log,
	}
}

// Process runs one delivery through the pipeline: log, validate, verify,
// classify, reconcile. The raw-payload log row is committed before
// validation and survives every failure path.
func (s *service) Process(ctx context.Context, providerName string, delivery providers.WebhookDelivery) Outcome {
	logEntry := s.recordDelivery(providerName, delivery)

	provider, err := s.registry.Get(providerName)
	if err != nil {
		s.note(logEntry, noteValidationFailed)
		return rejected(noteValidationFailed, errors.ErrUnknownProvider)
	}

	validation, err := provider.ValidateWebhook(delivery)
	if err != nil {
		s.log.WithError(err).WithField("provider", providerName).Warn("webhook validation failed")
		s.note(logEntry, noteValidationFailed)
		return rejected(noteValidationFailed, errors.ErrValidationFailed)
	}

	switch provider.ClassifyWebhook(delivery) {
	case providers.WebhookWithdraw:
		return s.reconcileWithdraw(ctx, provider, validation, logEntry)
	default:
		return s.reconcileDeposit(ctx, provider, validation, logEntry)
	}
}

// reconcileDeposit settles an inbound payment. The credit is the verified
// amount minus the deposit fee; duplicate deliveries are caught by the
// unique reference index rather than a pre-check alone.
func (s *service) reconcileDeposit(ctx context.Context, provider providers.Provider, validation *providers.WebhookValidation, logEntry *models.IncomingWebhookLog) Outcome {
	verification, err := provider.VerifyDeposit(ctx, validation.Reference, validation.ProviderRef)
	if err != nil {
		s.log.WithError(err).WithField("provider", provider.Name()).Warn("deposit verification failed")
		s.note(logEntry, noteVerificationFailed)
		return rejected(noteVerificationFailed, errors.ErrVerificationFailed)
	}

	// Duplicate check comes before the status check: a redelivery for an
	// already-settled reference is a duplicate regardless of the status it
	// carries this time.
	if _, err := s.repo.GetTransactionByReference(verification.Reference); err == nil {
		s.note(logEntry, noteDuplicate)
		return skipped(noteDuplicate)
	}

	if verification.Status != providers.StatusSuccess {
		s.note(logEntry, noteNotSuccessful)
		return skipped(noteNotSuccessful)
	}

	wallet, err := s.resolveWallet(ctx, verification)
	if err != nil {
		s.log.WithError(err).WithField("reference", verification.Reference).Warn("deposit wallet resolution failed")
		s.note(logEntry, noteWalletUnresolved)
		return rejected(noteWalletUnresolved, err)
	}

	if !s.fees.Supports(wallet.Currency, fees.OpDeposit) {
		s.note(logEntry, noteVerificationFailed)
		return rejected(noteVerificationFailed, fmt.Errorf("no fee policy configured for currency %q", wallet.Currency))
	}
	fee := s.fees.Fee(verification.Amount, wallet.Currency, fees.OpDeposit)
	credit := verification.Amount.Sub(fee)

	// The transaction records the net credited amount; the gross payment is
	// amount plus fee.
	transaction := &models.Transaction{
		UserID:    wallet.UserID,
		WalletID:  wallet.ID,
		Type:      models.TransactionTypeDeposit,
		Status:    models.TransactionStatusSuccess,
		Amount:    credit,
		Fee:       fee,
		Currency:  wallet.Currency,
		Reference: verification.Reference,
		Narration: fmt.Sprintf("%s Wallet Deposit", wallet.Currency),
	}

	err = s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		if err := tx.CreateTransaction(transaction); err != nil {
			return err
		}
		if _, err := ledger.Deposit(tx, wallet.UUID, credit, transaction.ID); err != nil {
			return err
		}
		return tx.UpdateWebhookLog(logEntry.ID, noteOK)
	})
	if err != nil {
		if stderrors.Is(err, errors.ErrDuplicateTransaction) {
			s.note(logEntry, noteDuplicate)
			return skipped(noteDuplicate)
		}
		s.log.WithError(err).WithField("reference", verification.Reference).Error("deposit reconciliation failed")
		s.note(logEntry, noteVerificationFailed)
		return rejected(noteVerificationFailed, err)
	}

	s.invalidate(ctx, wallet.UUID)
	s.publishCompleted(ctx, wallet.UUID, transaction)
	return applied(noteOK)
}

// reconcileWithdraw settles a pending withdrawal created at initiation.
// The funds were already debited then, so success only flips the status
// while failure refunds amount plus fee through a reversal. The transition
// is a compare-and-set: a redelivered webhook that loses the race commits
// nothing.
func (s *service) reconcileWithdraw(ctx context.Context, provider providers.Provider, validation *providers.WebhookValidation, logEntry *models.IncomingWebhookLog) Outcome {
	verification, err := provider.VerifyWithdraw(ctx, validation.Reference, validation.ProviderRef)
	if err != nil {
		s.log.WithError(err).WithField("provider", provider.Name()).Warn("withdraw verification failed")
		s.note(logEntry, noteVerificationFailed)
		return rejected(noteVerificationFailed, errors.ErrVerificationFailed)
	}

	transaction, err := s.repo.GetTransactionByReference(verification.Reference)
	if err != nil {
		s.note(logEntry, noteUnknownTransaction)
		return rejected(noteUnknownTransaction, errors.ErrTransactionNotFound)
	}

	if transaction.Terminal() {
		s.note(logEntry, noteAlreadyCompleted)
		return skipped(noteAlreadyCompleted)
	}

	wallet, err := s.repo.GetByID(transaction.WalletID)
	if err != nil {
		s.note(logEntry, noteWalletUnresolved)
		return rejected(noteWalletUnresolved, err)
	}

	switch verification.Status {
	case providers.StatusFailed:
		err = s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
			moved, err := tx.TransitionTransactionStatus(transaction.ID, models.TransactionStatusPending, models.TransactionStatusFailed)
			if err != nil {
				return err
			}
			if !moved {
				return errRedelivered
			}
			if _, err := ledger.Reversal(tx, transaction.ID); err != nil {
				return err
			}
			return tx.UpdateWebhookLog(logEntry.ID, noteOK)
		})
		if err != nil {
			if stderrors.Is(err, errRedelivered) {
				s.note(logEntry, noteAlreadyCompleted)
				return skipped(noteAlreadyCompleted)
			}
			s.log.WithError(err).WithField("reference", verification.Reference).Error("withdraw reversal failed")
			s.note(logEntry, noteVerificationFailed)
			return rejected(noteVerificationFailed, err)
		}
		transaction.Status = models.TransactionStatusFailed
		s.invalidate(ctx, wallet.UUID)
		s.publishCompleted(ctx, wallet.UUID, transaction)
		return applied(noteOK)

	case providers.StatusSuccess:
		err = s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
			moved, err := tx.TransitionTransactionStatus(transaction.ID, models.TransactionStatusPending, models.TransactionStatusSuccess)
			if err != nil {
				return err
			}
			if !moved {
				return errRedelivered
			}
			return tx.UpdateWebhookLog(logEntry.ID, noteOK)
		})
		if err != nil {
			if stderrors.Is(err, errRedelivered) {
				s.note(logEntry, noteAlreadyCompleted)
				return skipped(noteAlreadyCompleted)
			}
			s.log.WithError(err).WithField("reference", verification.Reference).Error("withdraw completion failed")
			s.note(logEntry, noteVerificationFailed)
			return rejected(noteVerificationFailed, err)
		}
		transaction.Status = models.TransactionStatusSuccess
		s.publishCompleted(ctx, wallet.UUID, transaction)
		return applied(noteOK)

	default:
		// Still pending on the provider side. Leave the ledger untouched;
		// the terminal webhook will arrive later.
		s.note(logEntry, noteOK)
		return skipped(noteOK)
	}
}

// resolveWallet locates the deposit target from the provider's verified
// identifiers, never from the raw payload. User lookups go through the
// read cache when one is configured.
func (s *service) resolveWallet(ctx context.Context, verification *providers.DepositVerification) (*models.Wallet, error) {
	if verification.WalletUUID != "" {
		return s.repo.GetByUUID(verification.WalletUUID)
	}
	if verification.Email == "" {
		return nil, errors.ErrWalletNotFound
	}

	if s.cache != nil {
		if user, ok := s.cache.GetUserByEmail(ctx, verification.Email); ok {
			return s.repo.GetByUserID(user.ID)
		}
	}
	user, err := s.users.GetByEmail(verification.Email)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.CacheUser(ctx, user)
	}
	return s.repo.GetByUserID(user.ID)
}

// recordDelivery commits the raw payload before any validation so the
// delivery stays visible even when processing fails.
func (s *service) recordDelivery(providerName string, delivery providers.WebhookDelivery) *models.IncomingWebhookLog {
	payload := models.JSON{}
	if err := json.Unmarshal(delivery.Body, &payload); err != nil {
		payload = models.JSON{"raw": string(delivery.Body)}
	}
	entry := &models.IncomingWebhookLog{
		Provider: providerName,
		Request:  payload,
	}
	if err := s.repo.CreateWebhookLog(entry); err != nil {
		s.log.WithError(err).WithField("provider", providerName).Error("failed to record webhook delivery")
	}
	return entry
}

// note records the processing result on the log row outside any unit of
// work, so failure notes survive rollbacks.
func (s *service) note(entry *models.IncomingWebhookLog, response string) {
	if entry.ID == 0 {
		return
	}
	if err := s.repo.UpdateWebhookLog(entry.ID, response); err != nil {
		s.log.WithError(err).WithField("log_id", entry.ID).Error("failed to update webhook log")
	}
}

func (s *service) invalidate(ctx context.Context, walletUUID string) {
	if s.cache == nil || walletUUID == "" {
		return
	}
	_ = s.cache.InvalidateWallet(ctx, walletUUID)
}

func (s *service) publishCompleted(ctx context.Context, walletUUID string, tx *models.Transaction) {
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
