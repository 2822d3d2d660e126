// Package events publishes ledger lifecycle events for downstream
// consumers. Publishing is best-effort and happens after the owning unit of
// work has committed; a failed publish never rolls back a balance change.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCompleted is emitted when a transaction reaches a terminal
// status with its ledger effect applied.
type TransactionCompleted struct {
	TransactionID uint            `json:"transaction_id"`
	WalletUUID    string          `json:"wallet_uuid"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Fee           decimal.Decimal `json:"fee"`
	Currency      string          `json:"currency"`
	Reference     string          `json:"reference"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// Publisher delivers events to a broker.
type Publisher interface {
	TransactionCompleted(ctx context.Context, event TransactionCompleted) error
}

// NopPublisher discards all events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) TransactionCompleted(ctx context.Context, event TransactionCompleted) error {
	return nil
}
