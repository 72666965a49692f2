package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balance-ledger/internal/domain"
	"balance-ledger/internal/store/memory"
	"balance-ledger/internal/util"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	q := memory.New()
	repo := NewUserRepository()

	older := domain.NewUser("u1", "a@example.com", "")
	older.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := domain.NewUser("u2", "b@example.com", "Bob")
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	require.NoError(t, repo.CreateUser(ctx, q, older))
	require.NoError(t, repo.CreateUser(ctx, q, newer))

	t.Run("GetUserByUID", func(t *testing.T) {
		user, err := repo.GetUserByUID(ctx, q, "u2")
		require.NoError(t, err)
		assert.Equal(t, "Bob", user.Name)

		_, err = repo.GetUserByUID(ctx, q, "missing")
		assert.ErrorIs(t, err, util.ErrNotFound)
	})

	t.Run("UpdateUserName", func(t *testing.T) {
		require.NoError(t, repo.UpdateUserName(ctx, q, "u1", "Alice"))
		user, err := repo.GetUserByUID(ctx, q, "u1")
		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Name)
		assert.Equal(t, "a@example.com", user.Email)
	})

	t.Run("ListUsersNewestFirst", func(t *testing.T) {
		users, err := repo.ListUsers(ctx, q)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "u2", users[0].UID)
		assert.Equal(t, "u1", users[1].UID)
	})
}

func TestCredentialRepository(t *testing.T) {
	ctx := context.Background()
	q := memory.New()
	repo := NewCredentialRepository()

	require.NoError(t, repo.CreateCredential(ctx, q, domain.NewAuthCredential("u1", "a@example.com", "hash")))

	cred, err := repo.GetCredentialByEmail(ctx, q, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", cred.UID)
	assert.Equal(t, "hash", cred.PasswordHash)

	_, err = repo.GetCredentialByEmail(ctx, q, "nobody@example.com")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestBalanceRepository(t *testing.T) {
	ctx := context.Background()
	q := memory.New()
	repo := NewBalanceRepository()

	_, err := repo.GetBalance(ctx, q, "u1")
	assert.ErrorIs(t, err, util.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateGasBalance(ctx, q, "u1", decimal.NewFromInt(1)), util.ErrNotFound)

	require.NoError(t, repo.CreateBalance(ctx, q, domain.NewBalance("u1", decimal.NewFromInt(10), decimal.NewFromInt(100))))
	require.NoError(t, repo.UpdateGasBalance(ctx, q, "u1", decimal.NewFromInt(-5)))
	require.NoError(t, repo.UpdateWalletBalance(ctx, q, "u1", decimal.RequireFromString("-30.5")))

	balance, err := repo.GetBalance(ctx, q, "u1")
	require.NoError(t, err)
	assert.Equal(t, "5", balance.BalanceUSD.String())
	assert.Equal(t, "69.5", balance.WalletBalanceUSD.String())
}

func TestDepositRepository(t *testing.T) {
	ctx := context.Background()
	q := memory.New()
	repo := NewDepositRepository()

	base := time.Now().UTC()
	for i := 0; i < 25; i++ {
		rec := domain.NewDepositRecord("u1", decimal.NewFromInt(int64(i)), domain.NoteWallet)
		rec.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.CreateDeposit(ctx, q, rec))
		assert.NotEmpty(t, rec.ID)
	}
	for i := 0; i < 5; i++ {
		note, err := domain.AttemptNote(domain.AttemptKindHome, base)
		require.NoError(t, err)
		rec := domain.NewDepositRecord("u1", decimal.NewFromInt(1), note)
		rec.CreatedAt = base.Add(time.Hour)
		require.NoError(t, repo.CreateDeposit(ctx, q, rec))
	}

	records, err := repo.GetDepositsByUID(ctx, q, "u1", 20)
	require.NoError(t, err)
	require.Len(t, records, 20, "attempts must not consume the limit")
	assert.Equal(t, "24", records[0].AmountUSD.String())
	for _, r := range records {
		assert.False(t, domain.IsAttemptNote(r.Note))
	}

	none, err := repo.GetDepositsByUID(ctx, q, "u2", 20)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMarketRepositories(t *testing.T) {
	ctx := context.Background()
	q := memory.New()

	stocks := NewStockRepository()
	require.NoError(t, stocks.UpsertStock(ctx, q, domain.NewStockQuote("Globex", decimal.NewFromInt(50), decimal.Zero, domain.DirectionUp)))
	require.NoError(t, stocks.UpsertStock(ctx, q, domain.NewStockQuote("Acme", decimal.NewFromInt(100), decimal.NewFromInt(10), domain.DirectionUp)))
	require.NoError(t, stocks.UpsertStock(ctx, q, domain.NewStockQuote("Acme", decimal.NewFromInt(100), decimal.NewFromInt(10), domain.DirectionDown)))

	quotes, err := stocks.ListStocks(ctx, q)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "Acme", quotes[0].Company)
	assert.Equal(t, "90.00", quotes[0].CurrentPrice.StringFixed(2))
	assert.Equal(t, domain.DirectionDown, quotes[0].Direction)

	percentages := NewPercentageRepository()
	_, err = percentages.GetPercentage(ctx, q, domain.GlobalPercentageKey)
	assert.ErrorIs(t, err, util.ErrNotFound)

	require.NoError(t, percentages.UpsertPercentage(ctx, q, domain.NewPercentageSetting("", decimal.NewFromInt(3), domain.DirectionUp)))
	require.NoError(t, percentages.UpsertPercentage(ctx, q, domain.NewPercentageSetting("u1", decimal.NewFromInt(7), domain.DirectionNeutral)))

	global, err := percentages.GetPercentage(ctx, q, domain.GlobalPercentageKey)
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeGlobal, global.Scope)
	assert.Equal(t, "3", global.Value.String())

	user, err := percentages.GetPercentage(ctx, q, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeUser, user.Scope)
	assert.Equal(t, domain.DirectionNeutral, user.Direction)
}
