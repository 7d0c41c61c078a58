package models

import "errors"

var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrProfileNotFound        = errors.New("profile not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrAccountNotActive       = errors.New("account is not active")
	ErrDuplicateAccountNumber = errors.New("account number already exists")
	ErrTransferPartialFailure = errors.New("transfer credit leg failed after debit")
)
