package models

import "time"

// BankDetail is the payout destination attached to a wallet, forwarded to
// the provider when a withdrawal is initiated.
type BankDetail struct {
	ID            uint   `gorm:"primarykey"`
	WalletID      uint   `gorm:"uniqueIndex;not null"`
	BankCode      string `gorm:"not null"`
	AccountNumber string `gorm:"not null"`
	AccountName   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
