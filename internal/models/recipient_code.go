package models

import "time"

// RecipientCode remembers the payout recipient a provider issued for a bank
// detail, so repeat withdrawals reuse it instead of registering the account
// again.
type RecipientCode struct {
	ID           uint   `gorm:"primarykey"`
	Provider     string `gorm:"uniqueIndex:idx_recipient_provider_bank;not null"`
	BankDetailID uint   `gorm:"uniqueIndex:idx_recipient_provider_bank;not null"`
	Code         string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
