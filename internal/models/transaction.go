package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TransactionTypeDeposit          = "deposit"
	TransactionTypeWithdraw         = "withdraw"
	TransactionTypeTransferDeposit  = "transfer_deposit"
	TransactionTypeTransferWithdraw = "transfer_withdraw"
)

// Transaction statuses. Transitions are monotonic: pending moves to success
// or failed exactly once and never changes again.
const (
	TransactionStatusPending = "pending"
	TransactionStatusSuccess = "success"
	TransactionStatusFailed  = "failed"
)

// Transaction records a single balance-affecting operation. The reference is
// assigned once at creation; the unique index makes duplicate webhook
// deliveries fail at the database rather than relying on a pre-check.
type Transaction struct {
	ID        uint            `gorm:"primarykey"`
	UserID    uint            `gorm:"index;not null"`
	WalletID  uint            `gorm:"index;not null"`
	Type      string          `gorm:"not null"`
	Status    string          `gorm:"not null;default:'pending'"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Fee       decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	Currency  string          `gorm:"not null"`
	Reference string          `gorm:"uniqueIndex;not null"`
	Narration string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Terminal reports whether the transaction has reached a final status.
func (t *Transaction) Terminal() bool {
	return t.Status == TransactionStatusSuccess || t.Status == TransactionStatusFailed
}

// GenerateReference returns a globally unique transaction reference,
// e.g. TRF-KBP-20240521203147-9F2C1A.
func GenerateReference() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("TRF-KBP-%s-%s", time.Now().UTC().Format("20060102150405"), suffix)
}
