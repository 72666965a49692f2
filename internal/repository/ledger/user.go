// Package ledger implements the repository interfaces on top of a store.Store,
// so the same code serves the PostgreSQL, SurrealDB and in-memory backends.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"balance-ledger/internal/domain"
	"balance-ledger/internal/repository"
	"balance-ledger/internal/store"
	"balance-ledger/internal/util"
)

// UserRepository implements repository.UserRepository.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository.
func NewUserRepository() repository.UserRepository {
	return &UserRepository{}
}

// CreateUser writes the user record using the provided store handle.
func (r *UserRepository) CreateUser(ctx context.Context, q store.Store, user *domain.User) error {
	err := q.Upsert(ctx, store.Users, user.UID, store.Fields{
		"email":      user.Email,
		"name":       user.Name,
		"created_at": user.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByUID retrieves a user by uid using the provided store handle.
func (r *UserRepository) GetUserByUID(ctx context.Context, q store.Store, uid string) (*domain.User, error) {
	var user domain.User
	if err := q.Get(ctx, store.Users, uid, &user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by uid %s: %w", uid, err)
	}
	return &user, nil
}

// UpdateUserName sets the name of an existing user.
func (r *UserRepository) UpdateUserName(ctx context.Context, q store.Store, uid, name string) error {
	if err := q.Upsert(ctx, store.Users, uid, store.Fields{"name": name}); err != nil {
		return fmt.Errorf("failed to update name for user %s: %w", uid, err)
	}
	return nil
}

// ListUsers returns every user ordered by created_at descending.
func (r *UserRepository) ListUsers(ctx context.Context, q store.Store) ([]domain.User, error) {
	users := make([]domain.User, 0)
	err := q.List(ctx, store.Users, store.QueryOptions{OrderBy: "created_at", Descending: true}, &users)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CredentialRepository implements repository.CredentialRepository.
type CredentialRepository struct{}

// NewCredentialRepository creates a new CredentialRepository.
func NewCredentialRepository() repository.CredentialRepository {
	return &CredentialRepository{}
}

func (r *CredentialRepository) CreateCredential(ctx context.Context, q store.Store, cred *domain.AuthCredential) error {
	err := q.Upsert(ctx, store.Credentials, cred.UID, store.Fields{
		"email":         cred.Email,
		"password_hash": cred.PasswordHash,
		"created_at":    cred.CreatedAt,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return util.ErrEmailExists
		}
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) GetCredentialByEmail(ctx context.Context, q store.Store, email string) (*domain.AuthCredential, error) {
	var creds []domain.AuthCredential
	if err := q.QueryEqual(ctx, store.Credentials, "email", email, store.QueryOptions{Limit: 1}, &creds); err != nil {
		return nil, fmt.Errorf("failed to get credential by email: %w", err)
	}
	if len(creds) == 0 {
		return nil, util.ErrNotFound
	}
	return &creds[0], nil
}
