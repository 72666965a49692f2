package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"balance-ledger/internal/domain"
	"balance-ledger/internal/store"
	"balance-ledger/internal/util"
)

const minPasswordLength = 6

// Signup creates a user with zero balances and an initial "default" ledger
// record, and returns the new profile.
func (s *ledgerService) Signup(ctx context.Context, email, password, name string) (profile *domain.Profile, err error) {
	defer s.observe("signup", time.Now(), &err)

	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	switch {
	case email == "":
		return nil, util.InvalidInput("email is required")
	case password == "":
		return nil, util.InvalidInput("password is required")
	case utf8.RuneCountInString(password) < minPasswordLength:
		return nil, util.InvalidInput("password must be at least %d characters", minPasswordLength)
	case utf8.RuneCountInString(name) > maxNameLength:
		return nil, util.InvalidInput("name must be at most %d characters", maxNameLength)
	}

	unlock := s.lock("email:" + email)
	defer unlock()

	_, err = s.credentialRepo.GetCredentialByEmail(ctx, s.backend, email)
	switch {
	case err == nil:
		return nil, util.ErrEmailExists
	case !errors.Is(err, util.ErrNotFound):
		return nil, util.StoreFailure("signup", err)
	}

	uid, err := s.newUID()
	if err != nil {
		return nil, util.StoreFailure("signup", err)
	}
	hash, err := hashPassword(password, s.opts.BcryptCost)
	if err != nil {
		return nil, util.StoreFailure("signup", err)
	}

	user := domain.NewUser(uid, email, name)
	err = s.backend.RunInTx(ctx, func(ctx context.Context, q store.Store) error {
		if err := s.userRepo.CreateUser(ctx, q, user); err != nil {
			return err
		}
		if err := s.credentialRepo.CreateCredential(ctx, q, domain.NewAuthCredential(uid, email, hash)); err != nil {
			return err
		}
		if err := s.balanceRepo.CreateBalance(ctx, q, domain.NewBalance(uid, decimal.Zero, decimal.Zero)); err != nil {
			return err
		}
		return s.depositRepo.CreateDeposit(ctx, q, domain.NewDepositRecord(uid, decimal.Zero, domain.NoteDefault))
	})
	if err != nil {
		return nil, util.StoreFailure("signup", err)
	}

	s.logger.Info().Str("op", "signup").Str("uid", uid).Msg("User signed up")

	profile, err = s.assemble(ctx, s.backend, uid)
	return profile, util.StoreFailure("signup", err)
}

// Login verifies the password of email and returns the profile. No session is
// created.
func (s *ledgerService) Login(ctx context.Context, email, password string) (profile *domain.Profile, err error) {
	defer s.observe("login", time.Now(), &err)

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, util.InvalidInput("email and password are required")
	}

	cred, err := s.credentialRepo.GetCredentialByEmail(ctx, s.backend, email)
	if errors.Is(err, util.ErrNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, util.StoreFailure("login", err)
	}
	if err := checkPassword(cred.PasswordHash, password); err != nil {
		return nil, util.StoreFailure("login", err)
	}

	profile, err = s.assemble(ctx, s.backend, cred.UID)
	return profile, util.StoreFailure("login", err)
}

// GetProfile joins the user and balance records of uid.
func (s *ledgerService) GetProfile(ctx context.Context, uid string) (profile *domain.Profile, err error) {
	defer s.observe("get_profile", time.Now(), &err)

	profile, err = s.assemble(ctx, s.backend, uid)
	return profile, util.StoreFailure("get_profile", err)
}

// UpdateName sets the display name of uid. An empty name clears it.
func (s *ledgerService) UpdateName(ctx context.Context, uid, name string) (profile *domain.Profile, err error) {
	defer s.observe("update_name", time.Now(), &err)

	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, util.InvalidInput("name must be at most %d characters", maxNameLength)
	}
	if _, err := s.requireUser(ctx, s.backend, uid); err != nil {
		return nil, util.StoreFailure("update_name", err)
	}
	if err := s.userRepo.UpdateUserName(ctx, s.backend, uid, name); err != nil {
		return nil, util.StoreFailure("update_name", err)
	}

	profile, err = s.assemble(ctx, s.backend, uid)
	return profile, util.StoreFailure("update_name", err)
}

// ListUsers returns every user's profile, newest first.
func (s *ledgerService) ListUsers(ctx context.Context) (profiles []domain.Profile, err error) {
	defer s.observe("list_users", time.Now(), &err)

	users, err := s.userRepo.ListUsers(ctx, s.backend)
	if err != nil {
		return nil, util.StoreFailure("list_users", err)
	}

	profiles = make([]domain.Profile, 0, len(users))
	for i := range users {
		balance, err := s.balanceRepo.GetBalance(ctx, s.backend, users[i].UID)
		if err != nil && !errors.Is(err, util.ErrNotFound) {
			return nil, util.StoreFailure("list_users", err)
		}
		profiles = append(profiles, *domain.NewProfile(&users[i], balance))
	}
	return profiles, nil
}
