package domain

const (
	AccountKindChecking = "checking"
	AccountKindSavings  = "savings"

	AccountStatusPendingVerification = "pending_verification"
	AccountStatusActive              = "active"
	AccountStatusSuspended           = "suspended"
	AccountStatusClosed              = "closed"

	ProfileStatusPending  = "pending"
	ProfileStatusVerified = "verified"
	ProfileStatusRejected = "rejected"

	TxKindCredit = "credit"
	TxKindDebit  = "debit"

	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusFailed    = "failed"

	CategoryTransfer    = "transfer"
	CategoryBonus       = "bonus"
	CategoryDeposit     = "deposit"
	CategoryBillPayment = "bill_payment"
)

// AccountNumberPrefix prefixes every externally visible account number.
const AccountNumberPrefix = "WIB"

// WelcomeBonusMicros is the one-time credit applied when a savings account
// clears verification.
const WelcomeBonusMicros = 25_000_000 // 25.00

func ValidAccountKind(kind string) bool {
	return kind == AccountKindChecking || kind == AccountKindSavings
}

func ValidAccountStatus(status string) bool {
	switch status {
	case AccountStatusPendingVerification, AccountStatusActive, AccountStatusSuspended, AccountStatusClosed:
		return true
	}
	return false
}

func ValidTxKind(kind string) bool {
	return kind == TxKindCredit || kind == TxKindDebit
}
