// internal/repository/set.go
package repository

// Set groups the repositories the ledger service depends on.
type Set struct {
	Users       UserRepository
	Credentials CredentialRepository
	Balances    BalanceRepository
	Deposits    DepositRepository
	Stocks      StockRepository
	Percentages PercentageRepository
}
