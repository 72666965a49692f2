package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"balance-ledger/internal/domain"
	"balance-ledger/internal/repository"
	"balance-ledger/internal/repository/ledger"
	"balance-ledger/internal/store"
	"balance-ledger/internal/store/memory"
	"balance-ledger/internal/util"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q store.Store, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByUID(ctx context.Context, q store.Store, uid string) (*domain.User, error) {
	args := m.Called(ctx, q, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUserName(ctx context.Context, q store.Store, uid, name string) error {
	args := m.Called(ctx, q, uid, name)
	return args.Error(0)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, q store.Store) ([]domain.User, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockBalanceRepository is a mock implementation of repository.BalanceRepository.
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) CreateBalance(ctx context.Context, q store.Store, balance *domain.Balance) error {
	args := m.Called(ctx, q, balance)
	return args.Error(0)
}

func (m *MockBalanceRepository) GetBalance(ctx context.Context, q store.Store, uid string) (*domain.Balance, error) {
	args := m.Called(ctx, q, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Balance), args.Error(1)
}

func (m *MockBalanceRepository) UpdateGasBalance(ctx context.Context, q store.Store, uid string, delta decimal.Decimal) error {
	args := m.Called(ctx, q, uid, delta)
	return args.Error(0)
}

func (m *MockBalanceRepository) UpdateWalletBalance(ctx context.Context, q store.Store, uid string, delta decimal.Decimal) error {
	args := m.Called(ctx, q, uid, delta)
	return args.Error(0)
}

// MockDepositRepository is a mock implementation of repository.DepositRepository.
type MockDepositRepository struct {
	mock.Mock
}

func (m *MockDepositRepository) CreateDeposit(ctx context.Context, q store.Store, record *domain.DepositRecord) error {
	args := m.Called(ctx, q, record)
	return args.Error(0)
}

func (m *MockDepositRepository) GetDepositsByUID(ctx context.Context, q store.Store, uid string, limit int) ([]domain.DepositRecord, error) {
	args := m.Called(ctx, q, uid, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DepositRecord), args.Error(1)
}

func decimalEq(want string) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.RequireFromString(want)) })
}

func noteIs(note, amount string) interface{} {
	return mock.MatchedBy(func(r *domain.DepositRecord) bool {
		return r.Note == note && r.AmountUSD.Equal(decimal.RequireFromString(amount))
	})
}

func newMockedService(t *testing.T) (*ledgerService, *MockUserRepository, *MockBalanceRepository, *MockDepositRepository) {
	t.Helper()
	users := new(MockUserRepository)
	balances := new(MockBalanceRepository)
	deposits := new(MockDepositRepository)

	repos := ledger.NewSet()
	repos.Users = users
	repos.Balances = balances
	repos.Deposits = deposits
	return newTestService(t, memory.New(), repos, testOptions()), users, balances, deposits
}

func TestWithdrawCallSequence(t *testing.T) {
	ctx := context.Background()
	s, users, balances, deposits := newMockedService(t)
	displayed := decimal.NewFromInt(120)

	balances.On("GetBalance", ctx, mock.Anything, "u1").
		Return(domain.NewBalance("u1", decimal.NewFromInt(10), decimal.NewFromInt(100)), nil).Once()
	balances.On("UpdateWalletBalance", ctx, mock.Anything, "u1", decimalEq("20")).Return(nil).Once()
	balances.On("UpdateWalletBalance", ctx, mock.Anything, "u1", decimalEq("-110")).Return(nil).Once()
	balances.On("UpdateGasBalance", ctx, mock.Anything, "u1", decimalEq("-2")).Return(nil).Once()
	deposits.On("CreateDeposit", ctx, mock.Anything, noteIs(domain.NoteWithdraw, "-110")).Return(nil).Once()
	deposits.On("CreateDeposit", ctx, mock.Anything, noteIs(domain.NoteGasFee, "-2")).Return(nil).Once()

	users.On("GetUserByUID", ctx, mock.Anything, "u1").Return(domain.NewUser("u1", "u1@example.com", ""), nil).Once()
	balances.On("GetBalance", ctx, mock.Anything, "u1").
		Return(domain.NewBalance("u1", decimal.NewFromInt(8), decimal.NewFromInt(10)), nil).Once()

	profile, err := s.Withdraw(ctx, WithdrawRequest{
		UID:          "u1",
		Amount:       decimal.NewFromInt(110),
		Gas:          decimal.NewFromInt(2),
		DisplayedUSD: &displayed,
	})
	require.NoError(t, err)
	assert.Equal(t, "10", profile.WalletBalanceUSD.String())

	balances.AssertExpectations(t)
	deposits.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestStoreErrorsBecomeStoreFailure(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("connection reset by peer")

	t.Run("Withdraw", func(t *testing.T) {
		s, _, balances, deposits := newMockedService(t)
		balances.On("GetBalance", ctx, mock.Anything, "u1").Return(nil, cause).Once()

		_, err := s.Withdraw(ctx, WithdrawRequest{UID: "u1", Amount: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, util.ErrStoreFailure)
		assert.ErrorIs(t, err, cause)
		deposits.AssertNotCalled(t, "CreateDeposit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CreditGas", func(t *testing.T) {
		s, users, balances, deposits := newMockedService(t)
		users.On("GetUserByUID", ctx, mock.Anything, "u1").Return(domain.NewUser("u1", "u1@example.com", ""), nil).Once()
		deposits.On("CreateDeposit", ctx, mock.Anything, noteIs(domain.NoteGasFee, "5")).Return(nil).Once()
		balances.On("UpdateGasBalance", ctx, mock.Anything, "u1", decimalEq("5")).Return(cause).Once()

		_, err := s.CreditGas(ctx, "u1", decimal.NewFromInt(5))
		assert.ErrorIs(t, err, util.ErrStoreFailure)
		balances.AssertNotCalled(t, "CreateBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("GetProfile", func(t *testing.T) {
		s, users, _, _ := newMockedService(t)
		users.On("GetUserByUID", ctx, mock.Anything, "u1").Return(nil, cause).Once()

		_, err := s.GetProfile(ctx, "u1")
		assert.ErrorIs(t, err, util.ErrStoreFailure)
		assert.Contains(t, err.Error(), "get_profile")
	})

	t.Run("DomainErrorsPassThrough", func(t *testing.T) {
		s, users, _, _ := newMockedService(t)
		users.On("GetUserByUID", ctx, mock.Anything, "u1").Return(nil, util.ErrNotFound).Once()

		_, err := s.GetProfile(ctx, "u1")
		assert.ErrorIs(t, err, util.ErrUserNotFound)
		assert.False(t, errors.Is(err, util.ErrStoreFailure))
	})
}

func TestCreditWalletCreatesMissingBalance(t *testing.T) {
	ctx := context.Background()
	s, users, balances, deposits := newMockedService(t)
	user := domain.NewUser("u1", "u1@example.com", "")

	users.On("GetUserByUID", ctx, mock.Anything, "u1").Return(user, nil)
	deposits.On("CreateDeposit", ctx, mock.Anything, noteIs("promo", "15")).Return(nil).Once()
	balances.On("UpdateWalletBalance", ctx, mock.Anything, "u1", decimalEq("15")).Return(util.ErrNotFound).Once()
	balances.On("CreateBalance", ctx, mock.Anything, mock.MatchedBy(func(b *domain.Balance) bool {
		return b.UID == "u1" && b.WalletBalanceUSD.Equal(decimal.NewFromInt(15)) && b.BalanceUSD.IsZero()
	})).Return(nil).Once()
	balances.On("GetBalance", ctx, mock.Anything, "u1").
		Return(domain.NewBalance("u1", decimal.Zero, decimal.NewFromInt(15)), nil).Once()

	profile, err := s.CreditWallet(ctx, "u1", decimal.NewFromInt(15), " promo ")
	require.NoError(t, err)
	assert.Equal(t, "15", profile.WalletBalanceUSD.String())
	balances.AssertExpectations(t)
	deposits.AssertExpectations(t)
}

var _ repository.UserRepository = (*MockUserRepository)(nil)
