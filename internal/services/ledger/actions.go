// Package ledger implements the atomic balance mutations. Every action
// locks the target wallet row, validates its precondition, and writes the
// new balance together with an audit row. Callers compose actions inside
// their own unit of work; nothing here is observable half-applied.
package ledger

import (
	"fmt"

	"kobopay/internal/errors"
	"kobopay/internal/models"
	"kobopay/internal/repositories"

	"github.com/shopspring/decimal"
)

// Mutation reports the balance movement an action produced.
type Mutation struct {
	WalletID        uint
	PreviousBalance decimal.Decimal
	CurrentBalance  decimal.Decimal
}

// Deposit credits amount to the wallet and appends a deposit audit row.
// Must run inside the caller's unit of work.
func Deposit(tx repositories.WalletRepository, walletUUID string, amount decimal.Decimal, transactionID uint) (*Mutation, error) {
	if amount.Sign() <= 0 {
		return nil, errors.ErrInvalidAmount
	}

	wallet, err := tx.GetByUUIDForUpdate(walletUUID)
	if err != nil {
		return nil, err
	}

	previous := wallet.Balance
	wallet.Balance = wallet.Balance.Add(amount)
	if err := tx.Update(wallet); err != nil {
		return nil, fmt.Errorf("failed to deposit funds: %w", err)
	}

	if err := appendHistory(tx, wallet, previous, amount, models.HistoryTypeDeposit, transactionID); err != nil {
		return nil, err
	}
	return &Mutation{WalletID: wallet.ID, PreviousBalance: previous, CurrentBalance: wallet.Balance}, nil
}

// Withdraw debits amount from the wallet, failing with ErrInsufficientFunds
// when the balance cannot cover it. Must run inside the caller's unit of
// work.
func Withdraw(tx repositories.WalletRepository, walletUUID string, amount decimal.Decimal, transactionID uint) (*Mutation, error) {
	if amount.Sign() <= 0 {
		return nil, errors.ErrInvalidAmount
	}

	wallet, err := tx.GetByUUIDForUpdate(walletUUID)
	if err != nil {
		return nil, err
	}
	if wallet.Balance.LessThan(amount) {
		return nil, errors.ErrInsufficientFunds
	}

	previous := wallet.Balance
	wallet.Balance = wallet.Balance.Sub(amount)
	if err := tx.Update(wallet); err != nil {
		return nil, fmt.Errorf("failed to withdraw funds: %w", err)
	}

	if err := appendHistory(tx, wallet, previous, amount, models.HistoryTypeWithdraw, transactionID); err != nil {
		return nil, err
	}
	return &Mutation{WalletID: wallet.ID, PreviousBalance: previous, CurrentBalance: wallet.Balance}, nil
}

// Reversal credits back the amount plus fee of the given transaction,
// undoing a failed withdrawal including the fee charged at initiation. It
// takes the same wallet lock as Deposit and Withdraw.
func Reversal(tx repositories.WalletRepository, transactionID uint) (*Mutation, error) {
	transaction, err := tx.GetTransactionByID(transactionID)
	if err != nil {
		return nil, err
	}

	wallet, err := tx.GetByIDForUpdate(transaction.WalletID)
	if err != nil {
		return nil, err
	}

	refund := transaction.Amount.Add(transaction.Fee)
	previous := wallet.Balance
	wallet.Balance = wallet.Balance.Add(refund)
	if err := tx.Update(wallet); err != nil {
		return nil, fmt.Errorf("failed to reverse funds: %w", err)
	}

	if err := appendHistory(tx, wallet, previous, refund, models.HistoryTypeReversal, transactionID); err != nil {
		return nil, err
	}
	return &Mutation{WalletID: wallet.ID, PreviousBalance: previous, CurrentBalance: wallet.Balance}, nil
}

func appendHistory(tx repositories.WalletRepository, wallet *models.Wallet, previous, amount decimal.Decimal, historyType string, transactionID uint) error {
	err := tx.CreateHistory(&models.WalletHistory{
		WalletID:        wallet.ID,
		PreviousBalance: previous,
		CurrentBalance:  wallet.Balance,
		Amount:          amount,
		Type:            historyType,
		TransactionID:   transactionID,
	})
	if err != nil {
		return fmt.Errorf("failed to append wallet history: %w", err)
	}
	return nil
}
