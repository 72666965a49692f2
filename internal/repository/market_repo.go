// internal/repository/market_repo.go
package repository

import (
	"context"

	"balance-ledger/internal/domain"
	"balance-ledger/internal/store"
)

// StockRepository defines the interface for stock quote operations.
type StockRepository interface {
	// UpsertStock stores the quote keyed by company.
	UpsertStock(ctx context.Context, q store.Store, quote *domain.StockQuote) error
	// ListStocks returns every quote ordered by company.
	ListStocks(ctx context.Context, q store.Store) ([]domain.StockQuote, error)
}

// PercentageRepository defines the interface for percentage setting operations.
type PercentageRepository interface {
	// UpsertPercentage stores the setting keyed by uid or the global key.
	UpsertPercentage(ctx context.Context, q store.Store, setting *domain.PercentageSetting) error
	// GetPercentage retrieves the setting stored under key. Returns util.ErrNotFound when absent.
	GetPercentage(ctx context.Context, q store.Store, key string) (*domain.PercentageSetting, error)
}
