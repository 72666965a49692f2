package ledger

import "balance-ledger/internal/repository"

// NewSet returns the store-backed implementation of every repository.
func NewSet() repository.Set {
	return repository.Set{
		Users:       NewUserRepository(),
		Credentials: NewCredentialRepository(),
		Balances:    NewBalanceRepository(),
		Deposits:    NewDepositRepository(),
		Stocks:      NewStockRepository(),
		Percentages: NewPercentageRepository(),
	}
}
