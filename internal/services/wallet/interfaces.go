// Package wallet orchestrates wallet lifecycle and the initiation of
// provider-backed deposits and withdrawals.
package wallet

import (
	"context"

	"kobopay/internal/models"

	"github.com/shopspring/decimal"
)

// DepositInitiation is the provider payment handle returned to the caller.
// No ledger mutation has happened yet; the credit is applied only when the
// provider's webhook is reconciled.
type DepositInitiation struct {
	PaymentURL string `json:"payment_url"`
	Reference  string `json:"reference"`
}

// WithdrawInitiation reports an accepted withdrawal. The wallet has already
// been debited by amount plus fee: funds are committed pending settlement,
// and a failed settlement is compensated by a reversal.
type WithdrawInitiation struct {
	Reference   string          `json:"reference"`
	ProviderRef string          `json:"provider_reference"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	Currency    string          `json:"currency"`
}

// Service is the wallet orchestration API. The acting user and wallet are
// always passed explicitly.
type Service interface {
	CreateWallet(ctx context.Context, userID uint, currency string) (*models.Wallet, error)
	GetWallet(ctx context.Context, walletUUID string) (*models.Wallet, error)
	InitiateDeposit(ctx context.Context, user *models.User, wallet *models.Wallet, amount decimal.Decimal) (*DepositInitiation, error)
	InitiateWithdraw(ctx context.Context, user *models.User, wallet *models.Wallet, amount decimal.Decimal) (*WithdrawInitiation, error)
	GetHistory(ctx context.Context, walletUUID string, limit, offset int) ([]models.WalletHistory, error)
	GetTransactions(ctx context.Context, walletUUID string, limit, offset int) ([]models.Transaction, error)
}
