package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"balance-ledger/internal/domain"
	"balance-ledger/internal/store"
	"balance-ledger/internal/util"
)

// CreditGas adds amount to the gas balance of uid and records a "gas_fee"
// ledger entry.
func (s *ledgerService) CreditGas(ctx context.Context, uid string, amount decimal.Decimal) (profile *domain.Profile, err error) {
	defer s.observe("credit_gas", time.Now(), &err)

	if err := requirePositive("amount", amount); err != nil {
		return nil, err
	}
	profile, err = s.credit(ctx, uid, amount, domain.NoteGasFee, true)
	return profile, util.StoreFailure("credit_gas", err)
}

// CreditWallet adds amount to the home balance of uid. note defaults to "wallet".
func (s *ledgerService) CreditWallet(ctx context.Context, uid string, amount decimal.Decimal, note string) (profile *domain.Profile, err error) {
	defer s.observe("credit_wallet", time.Now(), &err)

	if err := requirePositive("amount", amount); err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		note = domain.NoteWallet
	}
	if domain.IsAttemptNote(note) {
		return nil, util.InvalidInput("note %q is reserved for deposit attempts", note)
	}
	profile, err = s.credit(ctx, uid, amount, note, false)
	return profile, util.StoreFailure("credit_wallet", err)
}

func (s *ledgerService) credit(ctx context.Context, uid string, amount decimal.Decimal, note string, gas bool) (*domain.Profile, error) {
	unlock := s.lock(uid)
	defer unlock()

	err := s.backend.RunInTx(ctx, func(ctx context.Context, q store.Store) error {
		if _, err := s.requireUser(ctx, q, uid); err != nil {
			return err
		}
		if err := s.depositRepo.CreateDeposit(ctx, q, domain.NewDepositRecord(uid, amount, note)); err != nil {
			return err
		}

		update := s.balanceRepo.UpdateWalletBalance
		initial := domain.NewBalance(uid, decimal.Zero, amount)
		if gas {
			update = s.balanceRepo.UpdateGasBalance
			initial = domain.NewBalance(uid, amount, decimal.Zero)
		}
		err := update(ctx, q, uid, amount)
		if errors.Is(err, util.ErrNotFound) {
			return s.balanceRepo.CreateBalance(ctx, q, initial)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("op", "credit").Str("uid", uid).Str("amount", amount.String()).
		Str("note", note).Bool("gas", gas).Msg("Balance credited")
	return s.assemble(ctx, s.backend, uid)
}

// Withdraw debits the home balance by req.Amount and the gas balance by
// req.Gas. A displayed home balance above the stored one is honored by first
// topping the stored balance up to it; that top-up has no ledger entry.
func (s *ledgerService) Withdraw(ctx context.Context, req WithdrawRequest) (profile *domain.Profile, err error) {
	defer s.observe("withdraw", time.Now(), &err)

	if err := requirePositive("amount", req.Amount); err != nil {
		return nil, err
	}
	if err := requireNonNegative("gas", req.Gas); err != nil {
		return nil, err
	}
	// A displayed balance only matters when it exceeds the stored one, so a
	// negative value is accepted and ignored.
	if req.DisplayedUSD != nil {
		if err := requireBounded("displayed balance", *req.DisplayedUSD); err != nil {
			return nil, err
		}
	}
	if req.UID == "" {
		return nil, util.InvalidInput("uid is required")
	}

	unlock := s.lock(req.UID)
	defer unlock()

	err = s.backend.RunInTx(ctx, func(ctx context.Context, q store.Store) error {
		balance, err := s.balanceRepo.GetBalance(ctx, q, req.UID)
		if errors.Is(err, util.ErrNotFound) {
			return util.ErrUserNotFound
		}
		if err != nil {
			return err
		}

		home := balance.WalletBalanceUSD
		if req.DisplayedUSD != nil && req.DisplayedUSD.GreaterThan(home) {
			home = *req.DisplayedUSD
		}
		if home.LessThan(req.Amount) {
			return util.ErrInsufficientHomeBalance
		}
		if balance.BalanceUSD.LessThan(req.Gas) {
			return util.ErrInsufficientGasBalance
		}

		if topUp := home.Sub(balance.WalletBalanceUSD); topUp.IsPositive() {
			if err := s.balanceRepo.UpdateWalletBalance(ctx, q, req.UID, topUp); err != nil {
				return err
			}
		}
		if err := s.balanceRepo.UpdateWalletBalance(ctx, q, req.UID, req.Amount.Neg()); err != nil {
			return err
		}
		if req.Gas.IsPositive() {
			if err := s.balanceRepo.UpdateGasBalance(ctx, q, req.UID, req.Gas.Neg()); err != nil {
				return err
			}
		}
		if err := s.depositRepo.CreateDeposit(ctx, q, domain.NewDepositRecord(req.UID, req.Amount.Neg(), domain.NoteWithdraw)); err != nil {
			return err
		}
		if req.Gas.IsPositive() {
			return s.depositRepo.CreateDeposit(ctx, q, domain.NewDepositRecord(req.UID, req.Gas.Neg(), domain.NoteGasFee))
		}
		return nil
	})
	if err != nil {
		return nil, util.StoreFailure("withdraw", err)
	}

	s.logger.Info().Str("op", "withdraw").Str("uid", req.UID).
		Str("amount", req.Amount.String()).Str("gas", req.Gas.String()).Msg("Withdrawal applied")

	profile, err = s.assemble(ctx, s.backend, req.UID)
	return profile, util.StoreFailure("withdraw", err)
}

// RecordDepositAttempt appends a marker that a deposit was started. It changes
// no balance and is hidden from deposit listings.
func (s *ledgerService) RecordDepositAttempt(ctx context.Context, uid string, amount decimal.Decimal, kind domain.AttemptKind) (record *domain.DepositRecord, err error) {
	defer s.observe("deposit_attempt", time.Now(), &err)

	if err := requirePositive("amount", amount); err != nil {
		return nil, err
	}
	now := s.now()
	note, err := domain.AttemptNote(kind, now)
	if err != nil {
		return nil, util.InvalidInput("%v", err)
	}

	unlock := s.lock(uid)
	defer unlock()

	if _, err := s.requireUser(ctx, s.backend, uid); err != nil {
		return nil, util.StoreFailure("deposit_attempt", err)
	}

	record = domain.NewDepositRecord(uid, amount, note)
	record.CreatedAt = now
	if err := s.depositRepo.CreateDeposit(ctx, s.backend, record); err != nil {
		return nil, util.StoreFailure("deposit_attempt", err)
	}
	return record, nil
}

// ListDeposits returns the newest visible ledger records of uid.
func (s *ledgerService) ListDeposits(ctx context.Context, uid string) (records []domain.DepositRecord, err error) {
	defer s.observe("list_deposits", time.Now(), &err)

	if _, err := s.requireUser(ctx, s.backend, uid); err != nil {
		return nil, util.StoreFailure("list_deposits", err)
	}
	records, err = s.depositRepo.GetDepositsByUID(ctx, s.backend, uid, s.opts.DepositHistoryLimit)
	if err != nil {
		return nil, util.StoreFailure("list_deposits", err)
	}
	return records, nil
}
