// internal/domain/deposit.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger notes.
const (
	NoteDefault  = "default"
	NoteGasFee   = "gas_fee"
	NoteWithdraw = "withdraw"
	NoteWallet   = "wallet"

	DepositAttemptPrefix = "deposit_attempt_"
	GasFeeAttemptPrefix  = "gas_fee_attempt_"
)

// AttemptKind selects which balance a deposit attempt targets.
type AttemptKind string

const (
	AttemptKindHome AttemptKind = "home"
	AttemptKindGas  AttemptKind = "gas"
)

// DepositRecord is an append-only ledger entry. Positive amounts are credits, negative are debits.
type DepositRecord struct {
	ID        string          `db:"id" json:"id"`
	UID       string          `db:"uid" json:"uid"`
	AmountUSD decimal.Decimal `db:"amount_usd" json:"amount_usd"`
	Note      string          `db:"note" json:"note"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// NewDepositRecord creates a new DepositRecord instance. The ID is assigned by the store.
func NewDepositRecord(uid string, amount decimal.Decimal, note string) *DepositRecord {
	return &DepositRecord{
		UID:       uid,
		AmountUSD: amount,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
}

// AttemptPrefixes lists the note prefixes of unconfirmed attempt records.
func AttemptPrefixes() []string {
	return []string{DepositAttemptPrefix, GasFeeAttemptPrefix}
}

// IsAttemptNote reports whether note marks an unconfirmed attempt record.
func IsAttemptNote(note string) bool {
	for _, p := range AttemptPrefixes() {
		if strings.HasPrefix(note, p) {
			return true
		}
	}
	return false
}

// AttemptNote builds the note of an attempt record created at the given time.
func AttemptNote(kind AttemptKind, at time.Time) (string, error) {
	switch kind {
	case AttemptKindHome:
		return fmt.Sprintf("%s%d", DepositAttemptPrefix, at.UnixMilli()), nil
	case AttemptKindGas:
		return fmt.Sprintf("%s%d", GasFeeAttemptPrefix, at.UnixMilli()), nil
	default:
		return "", fmt.Errorf("unknown attempt kind %q", kind)
	}
}
