// internal/domain/balance.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Balance holds both balances of a user. One-to-one with User.
type Balance struct {
	UID              string          `db:"uid" json:"uid"`
	BalanceUSD       decimal.Decimal `db:"balance_usd" json:"balance_usd"`               // Gas balance, used for fee-like debits and credits
	WalletBalanceUSD decimal.Decimal `db:"wallet_balance_usd" json:"wallet_balance_usd"` // Home balance, the primary spendable balance
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// NewBalance creates a new Balance instance.
func NewBalance(uid string, gas, wallet decimal.Decimal) *Balance {
	return &Balance{
		UID:              uid,
		BalanceUSD:       gas,
		WalletBalanceUSD: wallet,
		UpdatedAt:        time.Now().UTC(),
	}
}

// ZeroBalance is the balance reported for a user without a balance record.
func ZeroBalance(uid string) *Balance {
	return &Balance{UID: uid, BalanceUSD: decimal.Zero, WalletBalanceUSD: decimal.Zero}
}
