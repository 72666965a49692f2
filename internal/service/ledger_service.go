// internal/service/ledger_service.go
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"balance-ledger/internal/domain"
	"balance-ledger/internal/metrics"
	"balance-ledger/internal/repository"
	"balance-ledger/internal/store"
	"balance-ledger/internal/util"
)

// LedgerService defines the business operations on accounts, balances and the
// market settings. Every entry point goes through this one implementation.
type LedgerService interface {
	Signup(ctx context.Context, email, password, name string) (*domain.Profile, error)
	Login(ctx context.Context, email, password string) (*domain.Profile, error)
	GetProfile(ctx context.Context, uid string) (*domain.Profile, error)
	UpdateName(ctx context.Context, uid, name string) (*domain.Profile, error)
	ListUsers(ctx context.Context) ([]domain.Profile, error)

	CreditGas(ctx context.Context, uid string, amount decimal.Decimal) (*domain.Profile, error)
	CreditWallet(ctx context.Context, uid string, amount decimal.Decimal, note string) (*domain.Profile, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (*domain.Profile, error)
	RecordDepositAttempt(ctx context.Context, uid string, amount decimal.Decimal, kind domain.AttemptKind) (*domain.DepositRecord, error)
	ListDeposits(ctx context.Context, uid string) ([]domain.DepositRecord, error)

	UpdateStock(ctx context.Context, company string, currentPrice, percentage decimal.Decimal, dir domain.Direction) (*domain.StockQuote, error)
	ListStocks(ctx context.Context) ([]domain.StockQuote, error)
	UpdatePercentage(ctx context.Context, uid string, value decimal.Decimal, dir domain.Direction) (*domain.PercentageSetting, error)
	ResolvePercentage(ctx context.Context, uid string) (*domain.PercentageSetting, error)

	// Ping checks the backing store.
	Ping(ctx context.Context) error
}

// WithdrawRequest carries the inputs of a withdrawal. DisplayedUSD is the home
// balance the client showed the user, if any.
type WithdrawRequest struct {
	UID          string
	Amount       decimal.Decimal
	Gas          decimal.Decimal
	DisplayedUSD *decimal.Decimal
}

// Options tunes the service.
type Options struct {
	BcryptCost          int
	SerializeMutations  bool // per-uid lock around read-check-write sequences
	DepositHistoryLimit int
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		BcryptCost:          bcrypt.DefaultCost,
		SerializeMutations:  true,
		DepositHistoryLimit: 20,
	}
}

const maxNameLength = 100

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	backend        store.Backend // For transactions and non-transactional reads
	userRepo       repository.UserRepository
	credentialRepo repository.CredentialRepository
	balanceRepo    repository.BalanceRepository
	depositRepo    repository.DepositRepository
	stockRepo      repository.StockRepository
	percentageRepo repository.PercentageRepository
	opts           Options
	locks          *keyedMutex
	logger         *zerolog.Logger
	now            func() time.Time
	newUID         func() (string, error)
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(backend store.Backend, repos repository.Set, opts Options, logger *zerolog.Logger) LedgerService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.DepositHistoryLimit <= 0 {
		opts.DepositHistoryLimit = 20
	}
	return &ledgerService{
		backend:        backend,
		userRepo:       repos.Users,
		credentialRepo: repos.Credentials,
		balanceRepo:    repos.Balances,
		depositRepo:    repos.Deposits,
		stockRepo:      repos.Stocks,
		percentageRepo: repos.Percentages,
		opts:           opts,
		locks:          newKeyedMutex(),
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
		newUID:         newUID,
	}
}

// newUID returns a UUIDv7: a millisecond timestamp followed by random bits.
func newUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *ledgerService) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// lock serializes mutations on key when enabled.
func (s *ledgerService) lock(key string) func() {
	if !s.opts.SerializeMutations {
		return func() {}
	}
	return s.locks.Lock(key)
}

// assemble builds the profile of uid from the user and balance records.
// A missing balance reads as zero.
func (s *ledgerService) assemble(ctx context.Context, q store.Store, uid string) (*domain.Profile, error) {
	user, err := s.requireUser(ctx, q, uid)
	if err != nil {
		return nil, err
	}
	balance, err := s.balanceRepo.GetBalance(ctx, q, uid)
	if err != nil && !errors.Is(err, util.ErrNotFound) {
		return nil, err
	}
	return domain.NewProfile(user, balance), nil
}

func (s *ledgerService) requireUser(ctx context.Context, q store.Store, uid string) (*domain.User, error) {
	if uid == "" {
		return nil, util.InvalidInput("uid is required")
	}
	user, err := s.userRepo.GetUserByUID(ctx, q, uid)
	if errors.Is(err, util.ErrNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

// observe records metrics for op and logs storage failures. It is deferred
// with a pointer to the operation's named error.
func (s *ledgerService) observe(op string, start time.Time, errp *error) {
	err := *errp
	metrics.RecordOperation(op, outcome(err), time.Since(start))
	if err != nil && errors.Is(err, util.ErrStoreFailure) {
		s.logger.Error().Err(err).Str("op", op).Msg("Ledger operation failed")
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, util.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, util.ErrEmailExists):
		return "email_exists"
	case errors.Is(err, util.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, util.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, util.ErrInsufficientHomeBalance):
		return "insufficient_home"
	case errors.Is(err, util.ErrInsufficientGasBalance):
		return "insufficient_gas"
	case errors.Is(err, util.ErrStoreFailure):
		return "store_failure"
	}
	return "error"
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Bounds on caller-supplied decimals. maxScale and maxIntegerDigits are checked
// on the exponent and coefficient length before any comparison, since comparing
// a value like 1e5000000 expands it into a huge integer.
const (
	maxScale         = 18
	maxIntegerDigits = 16
)

// maxAmount is the largest accepted amount, price or percentage.
var maxAmount = decimal.New(1, 15)

// requireBounded rejects values whose magnitude or precision cannot be a real amount.
func requireBounded(field string, v decimal.Decimal) error {
	exp := int(v.Exponent())
	if exp < -maxScale {
		return util.InvalidInput("%s has more than %d decimal places", field, maxScale)
	}
	if v.NumDigits()+exp > maxIntegerDigits || v.Abs().GreaterThan(maxAmount) {
		return util.InvalidInput("%s must not exceed %s in magnitude", field, maxAmount.String())
	}
	return nil
}

func requirePositive(field string, v decimal.Decimal) error {
	if err := requireBounded(field, v); err != nil {
		return err
	}
	if !v.IsPositive() {
		return util.InvalidInput("%s must be positive, got %s", field, v.String())
	}
	return nil
}

func requireNonNegative(field string, v decimal.Decimal) error {
	if err := requireBounded(field, v); err != nil {
		return err
	}
	if v.IsNegative() {
		return util.InvalidInput("%s must not be negative, got %s", field, v.String())
	}
	return nil
}
