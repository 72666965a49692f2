// internal/domain/user.go
package domain

import "time"

// User represents a registered user of the ledger.
type User struct {
	UID       string    `db:"uid" json:"uid"`               // Opaque stable identifier generated at signup
	Email     string    `db:"email" json:"email"`           // Unique, lower-cased email
	Name      string    `db:"name" json:"name,omitempty"`   // Optional display name, the only mutable field
	CreatedAt time.Time `db:"created_at" json:"created_at"` // Timestamp of signup
}

// NewUser creates a new User instance.
func NewUser(uid, email, name string) *User {
	return &User{
		UID:       uid,
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// AuthCredential holds the password hash for a user. One-to-one with User.
type AuthCredential struct {
	UID          string    `db:"uid" json:"uid"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"password_hash"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// NewAuthCredential creates a new AuthCredential instance.
func NewAuthCredential(uid, email, passwordHash string) *AuthCredential {
	return &AuthCredential{
		UID:          uid,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}
