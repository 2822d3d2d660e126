package repositories

import (
	"kobopay/internal/models"
)

// WalletRepository is the unit-of-work surface for the ledger. A repository
// obtained inside ExecuteInTransaction is scoped to that database
// transaction; everything done through it commits or rolls back as one.
type WalletRepository interface {
	// Wallet operations
	Create(wallet *models.Wallet) error
	GetByID(id uint) (*models.Wallet, error)
	GetByUUID(uuid string) (*models.Wallet, error)
	GetByUserID(userID uint) (*models.Wallet, error)
	// ForUpdate variants take the exclusive row lock that serializes all
	// mutations of one wallet. Only meaningful inside ExecuteInTransaction.
	GetByUUIDForUpdate(uuid string) (*models.Wallet, error)
	GetByIDForUpdate(id uint) (*models.Wallet, error)
	Update(wallet *models.Wallet) error

	// Transaction operations
	CreateTransaction(tx *models.Transaction) error
	GetTransactionByID(id uint) (*models.Transaction, error)
	GetTransactionByReference(reference string) (*models.Transaction, error)
	// TransitionTransactionStatus moves a transaction from one status to
	// another and reports whether the row actually changed. Status
	// transitions are monotonic; a redelivered webhook observing false has
	// lost the race and must not re-apply the effect.
	TransitionTransactionStatus(id uint, fromStatus, toStatus string) (bool, error)
	GetTransactions(walletID uint, limit, offset int) ([]models.Transaction, error)

	// Audit operations
	CreateHistory(h *models.WalletHistory) error
	GetHistory(walletID uint, limit, offset int) ([]models.WalletHistory, error)

	// Bank details
	GetBankDetail(walletID uint) (*models.BankDetail, error)

	// Webhook log. CreateWebhookLog on the base repository commits
	// immediately; UpdateWebhookLog inside a unit of work joins it.
	CreateWebhookLog(l *models.IncomingWebhookLog) error
	UpdateWebhookLog(id uint, response string) error

	// ExecuteInTransaction runs fn against a transaction-scoped repository
	// and rolls the whole unit back if fn returns an error.
	ExecuteInTransaction(fn func(WalletRepository) error) error
}
