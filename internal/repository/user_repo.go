// internal/repository/user_repo.go
package repository

import (
	"context"

	"balance-ledger/internal/domain"
	"balance-ledger/internal/store"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// CreateUser adds a new user using the provided store handle.
	CreateUser(ctx context.Context, q store.Store, user *domain.User) error
	// GetUserByUID retrieves a user by uid. Returns util.ErrNotFound when absent.
	GetUserByUID(ctx context.Context, q store.Store, uid string) (*domain.User, error)
	// UpdateUserName sets the display name of an existing user.
	UpdateUserName(ctx context.Context, q store.Store, uid, name string) error
	// ListUsers returns every user, newest first.
	ListUsers(ctx context.Context, q store.Store) ([]domain.User, error)
}

// CredentialRepository defines the interface for auth credential operations.
type CredentialRepository interface {
	// CreateCredential stores the credential. Returns util.ErrEmailExists when
	// the store rejects a duplicate email.
	CreateCredential(ctx context.Context, q store.Store, cred *domain.AuthCredential) error
	// GetCredentialByEmail retrieves the credential for a normalized email.
	GetCredentialByEmail(ctx context.Context, q store.Store, email string) (*domain.AuthCredential, error)
}
