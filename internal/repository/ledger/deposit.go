package ledger

import (
	"context"
	"fmt"

	"balance-ledger/internal/domain"
	"balance-ledger/internal/repository"
	"balance-ledger/internal/store"
)

// DepositRepository implements repository.DepositRepository.
type DepositRepository struct{}

// NewDepositRepository creates a new DepositRepository.
func NewDepositRepository() repository.DepositRepository {
	return &DepositRepository{}
}

// CreateDeposit appends the record and sets its generated ID.
func (r *DepositRepository) CreateDeposit(ctx context.Context, q store.Store, record *domain.DepositRecord) error {
	id, err := q.Append(ctx, store.Deposits, store.Fields{
		"uid":        record.UID,
		"amount_usd": record.AmountUSD,
		"note":       record.Note,
		"created_at": record.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create deposit record: %w", err)
	}
	record.ID = id
	return nil
}

// GetDepositsByUID returns at most limit visible records of uid, newest first.
func (r *DepositRepository) GetDepositsByUID(ctx context.Context, q store.Store, uid string, limit int) ([]domain.DepositRecord, error) {
	records := make([]domain.DepositRecord, 0)
	err := q.QueryEqual(ctx, store.Deposits, "uid", uid, store.QueryOptions{
		OrderBy:         "created_at",
		Descending:      true,
		Limit:           limit,
		ExcludeField:    "note",
		ExcludePrefixes: domain.AttemptPrefixes(),
	}, &records)
	if err != nil {
		return nil, fmt.Errorf("failed to get deposits for %s: %w", uid, err)
	}
	return records, nil
}
