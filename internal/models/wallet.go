package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet holds a user's balance in a single currency. The balance is only
// ever mutated by ledger actions while the row is held under a FOR UPDATE
// lock, so it can never be observed mid-mutation.
type Wallet struct {
	ID               uint             `gorm:"primarykey"`
	UUID             string           `gorm:"uniqueIndex;not null"` // opaque identifier shared with payment providers
	UserID           uint             `gorm:"index;not null"`
	Currency         string           `gorm:"not null;default:'NGN'"`
	Balance          decimal.Decimal  `gorm:"type:numeric(20,4);not null;default:0"`
	TransactionLimit *decimal.Decimal `gorm:"type:numeric(20,4)"` // optional per-transaction cap
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.UUID == "" {
		w.UUID = uuid.NewString()
	}
	return nil
}
