// internal/domain/profile.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile is a user joined with its balance.
type Profile struct {
	UID              string          `json:"uid"`
	Email            string          `json:"email"`
	Name             string          `json:"name,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	BalanceUSD       decimal.Decimal `json:"balance_usd"`
	WalletBalanceUSD decimal.Decimal `json:"wallet_balance_usd"`
}

// NewProfile assembles a profile; a nil balance counts as zero.
func NewProfile(user *User, balance *Balance) *Profile {
	if balance == nil {
		balance = ZeroBalance(user.UID)
	}
	return &Profile{
		UID:              user.UID,
		Email:            user.Email,
		Name:             user.Name,
		CreatedAt:        user.CreatedAt,
		BalanceUSD:       balance.BalanceUSD,
		WalletBalanceUSD: balance.WalletBalanceUSD,
	}
}
