package ledger

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/wibank/ledger-core/internal/domain"
)

const accountNumberDigits = 8

// generateAccountNumber produces a bank-format account number: the WIB prefix
// followed by eight random digits. Uniqueness is enforced by the caller
// against the account-number index.
func generateAccountNumber() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms; a zero seed still
		// yields a valid (if predictable) number.
		binary.BigEndian.PutUint64(buf[:], 0)
	}
	n := binary.BigEndian.Uint64(buf[:]) % 100_000_000

	digits := make([]byte, accountNumberDigits)
	for i := accountNumberDigits - 1; i >= 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return domain.AccountNumberPrefix + string(digits)
}
