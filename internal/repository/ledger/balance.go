package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"balance-ledger/internal/domain"
	"balance-ledger/internal/repository"
	"balance-ledger/internal/store"
	"balance-ledger/internal/util"
)

// BalanceRepository implements repository.BalanceRepository.
type BalanceRepository struct{}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository() repository.BalanceRepository {
	return &BalanceRepository{}
}

// CreateBalance writes both balances of uid.
func (r *BalanceRepository) CreateBalance(ctx context.Context, q store.Store, balance *domain.Balance) error {
	err := q.Upsert(ctx, store.Balances, balance.UID, store.Fields{
		"balance_usd":        balance.BalanceUSD,
		"wallet_balance_usd": balance.WalletBalanceUSD,
		"updated_at":         balance.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create balance for %s: %w", balance.UID, err)
	}
	return nil
}

// GetBalance retrieves the balance of uid using the provided store handle.
func (r *BalanceRepository) GetBalance(ctx context.Context, q store.Store, uid string) (*domain.Balance, error) {
	var balance domain.Balance
	if err := q.Get(ctx, store.Balances, uid, &balance); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get balance for %s: %w", uid, err)
	}
	return &balance, nil
}

// UpdateGasBalance adds delta to the gas balance of uid.
func (r *BalanceRepository) UpdateGasBalance(ctx context.Context, q store.Store, uid string, delta decimal.Decimal) error {
	return r.update(ctx, q, uid, "balance_usd", delta)
}

// UpdateWalletBalance adds delta to the home balance of uid.
func (r *BalanceRepository) UpdateWalletBalance(ctx context.Context, q store.Store, uid string, delta decimal.Decimal) error {
	return r.update(ctx, q, uid, "wallet_balance_usd", delta)
}

func (r *BalanceRepository) update(ctx context.Context, q store.Store, uid, field string, delta decimal.Decimal) error {
	if err := q.Increment(ctx, store.Balances, uid, field, delta); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return util.ErrNotFound
		}
		return fmt.Errorf("failed to update %s for %s: %w", field, uid, err)
	}
	return nil
}
