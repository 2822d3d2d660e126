package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet history types
const (
	HistoryTypeDeposit          = "deposit"
	HistoryTypeWithdraw         = "withdraw"
	HistoryTypeReversal         = "reversal"
	HistoryTypeTransferDeposit  = "transfer_deposit"
	HistoryTypeTransferWithdraw = "transfer_withdraw"
)

// WalletHistory is an append-only audit row written in the same atomic unit
// as the balance change it describes.
type WalletHistory struct {
	ID              uint            `gorm:"primarykey"`
	WalletID        uint            `gorm:"index;not null"`
	PreviousBalance decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	CurrentBalance  decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Type            string          `gorm:"not null"`
	TransactionID   uint            `gorm:"index;not null"`
	CreatedAt       time.Time
}
