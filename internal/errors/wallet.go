package errors

var (
	ErrWalletNotFound = &DomainError{
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
	ErrTransactionNotFound = &DomainError{
		Code:    "TRANSACTION_NOT_FOUND",
		Message: "transaction not found",
	}
	ErrUserNotFound = &DomainError{
		Code:    "USER_NOT_FOUND",
		Message: "user not found",
	}
	ErrBankDetailNotFound = &DomainError{
		Code:    "BANK_DETAIL_NOT_FOUND",
		Message: "bank detail not found",
	}
	ErrInsufficientFunds = &DomainError{
		Code:    "INSUFFICIENT_FUNDS",
		Message: "insufficient funds",
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
	}
	ErrTransactionLimitExceeded = &DomainError{
		Code:    "TRANSACTION_LIMIT_EXCEEDED",
		Message: "amount exceeds wallet transaction limit",
	}
	ErrDuplicateTransaction = &DomainError{
		Code:    "DUPLICATE_TRANSACTION",
		Message: "transaction reference already exists",
	}
)
