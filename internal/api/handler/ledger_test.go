package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balance-ledger/internal/util"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"InvalidInput", util.InvalidInput("amount must be positive"), http.StatusBadRequest, "invalid input provided: amount must be positive"},
		{"EmailExists", util.ErrEmailExists, http.StatusConflict, "email already registered"},
		{"UserNotFound", util.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{"InvalidCredentials", util.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"Unauthorized", util.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"InsufficientHome", util.ErrInsufficientHomeBalance, http.StatusPaymentRequired, "insufficient home balance"},
		{"InsufficientGas", util.ErrInsufficientGasBalance, http.StatusPaymentRequired, "insufficient gas balance"},
		{"StoreFailureIsOpaque", util.StoreFailure("withdraw", errors.New("dial tcp: refused")), http.StatusInternalServerError, "Internal server error"},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, message := statusFor(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestDecode(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		var req CreditRequest
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"uid": "u1", "amount": "12.50"}`))
		require.NoError(t, decode(r, &req))
		assert.Equal(t, "u1", req.UID)
		assert.Equal(t, "12.5", req.Amount.String())
	})

	t.Run("UnknownField", func(t *testing.T) {
		var req CreditRequest
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"uid": "u1", "currency": "USD"}`))
		assert.ErrorIs(t, decode(r, &req), util.ErrInvalidInput)
	})

	t.Run("TrailingData", func(t *testing.T) {
		var req CreditRequest
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"uid": "u1"} {"uid": "u2"}`))
		assert.ErrorIs(t, decode(r, &req), util.ErrInvalidInput)
	})

	t.Run("BadAmount", func(t *testing.T) {
		var req CreditRequest
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"uid": "u1", "amount": "ten"}`))
		assert.ErrorIs(t, decode(r, &req), util.ErrInvalidInput)
	})
}
