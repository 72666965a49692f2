package ledger

import (
	"context"
	"errors"
	"fmt"

	"balance-ledger/internal/domain"
	"balance-ledger/internal/repository"
	"balance-ledger/internal/store"
	"balance-ledger/internal/util"
)

// StockRepository implements repository.StockRepository.
type StockRepository struct{}

// NewStockRepository creates a new StockRepository.
func NewStockRepository() repository.StockRepository {
	return &StockRepository{}
}

func (r *StockRepository) UpsertStock(ctx context.Context, q store.Store, quote *domain.StockQuote) error {
	err := q.Upsert(ctx, store.Stocks, quote.Company, store.Fields{
		"current_price":     quote.CurrentPrice,
		"percentage_change": quote.PercentageChange,
		"direction":         string(quote.Direction),
		"updated_at":        quote.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert stock %s: %w", quote.Company, err)
	}
	return nil
}

func (r *StockRepository) ListStocks(ctx context.Context, q store.Store) ([]domain.StockQuote, error) {
	quotes := make([]domain.StockQuote, 0)
	if err := q.List(ctx, store.Stocks, store.QueryOptions{OrderBy: "company"}, &quotes); err != nil {
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}
	return quotes, nil
}

// PercentageRepository implements repository.PercentageRepository.
type PercentageRepository struct{}

// NewPercentageRepository creates a new PercentageRepository.
func NewPercentageRepository() repository.PercentageRepository {
	return &PercentageRepository{}
}

func (r *PercentageRepository) UpsertPercentage(ctx context.Context, q store.Store, setting *domain.PercentageSetting) error {
	err := q.Upsert(ctx, store.Percentages, setting.UID, store.Fields{
		"value":      setting.Value,
		"direction":  string(setting.Direction),
		"updated_at": setting.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert percentage %s: %w", setting.UID, err)
	}
	return nil
}

// GetPercentage returns the setting stored under key with its scope resolved.
func (r *PercentageRepository) GetPercentage(ctx context.Context, q store.Store, key string) (*domain.PercentageSetting, error) {
	var setting domain.PercentageSetting
	if err := q.Get(ctx, store.Percentages, key, &setting); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get percentage %s: %w", key, err)
	}
	setting.Scope = domain.ScopeUser
	if key == domain.GlobalPercentageKey {
		setting.Scope = domain.ScopeGlobal
	}
	return &setting, nil
}
