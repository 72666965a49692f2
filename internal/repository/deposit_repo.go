// internal/repository/deposit_repo.go
package repository

import (
	"context"

	"balance-ledger/internal/domain"
	"balance-ledger/internal/store"
)

// DepositRepository defines the interface for ledger record operations.
type DepositRepository interface {
	// CreateDeposit appends a ledger record and sets its ID.
	CreateDeposit(ctx context.Context, q store.Store, record *domain.DepositRecord) error
	// GetDepositsByUID retrieves the newest visible records of uid. Attempt
	// records are skipped before limit is applied.
	GetDepositsByUID(ctx context.Context, q store.Store, uid string, limit int) ([]domain.DepositRecord, error)
}
