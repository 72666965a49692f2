// internal/util/errors.go
package util

import (
	"errors"
	"fmt"
)

// Common application-specific errors.
var (
	ErrNotFound                = errors.New("resource not found")
	ErrInvalidInput            = errors.New("invalid input provided")
	ErrEmailExists             = errors.New("email already registered")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInsufficientHomeBalance = errors.New("insufficient home balance")
	ErrInsufficientGasBalance  = errors.New("insufficient gas balance")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrStoreFailure            = errors.New("store failure")
)

// IsError reports whether any error in err's chain matches target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// InvalidInput wraps ErrInvalidInput with a short description of the offending field.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// OpError is a storage error caught at an operation boundary. It matches
// ErrStoreFailure and unwraps to the underlying cause.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrStoreFailure, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func (e *OpError) Is(target error) bool {
	return target == ErrStoreFailure
}

// StoreFailure converts a storage error into an OpError. Domain errors that
// already carry one of the sentinels above are returned unchanged.
func StoreFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, domainErr := range []error{
		ErrInvalidInput, ErrEmailExists, ErrUserNotFound, ErrInvalidCredentials,
		ErrInsufficientHomeBalance, ErrInsufficientGasBalance, ErrUnauthorized, ErrStoreFailure,
	} {
		if errors.Is(err, domainErr) {
			return err
		}
	}
	return &OpError{Op: op, Err: err}
}
