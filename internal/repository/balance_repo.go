// internal/repository/balance_repo.go
package repository

import (
	"context"

	"balance-ledger/internal/domain"
	"balance-ledger/internal/store"

	"github.com/shopspring/decimal"
)

// BalanceRepository defines the interface for balance data operations.
type BalanceRepository interface {
	// CreateBalance writes the full balance record, replacing any existing one.
	CreateBalance(ctx context.Context, q store.Store, balance *domain.Balance) error
	// GetBalance retrieves the balance of uid. Returns util.ErrNotFound when absent.
	GetBalance(ctx context.Context, q store.Store, uid string) (*domain.Balance, error)
	// UpdateGasBalance adds delta to balance_usd.
	UpdateGasBalance(ctx context.Context, q store.Store, uid string, delta decimal.Decimal) error
	// UpdateWalletBalance adds delta to wallet_balance_usd.
	UpdateWalletBalance(ctx context.Context, q store.Store, uid string, delta decimal.Decimal) error
}
