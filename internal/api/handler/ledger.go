// internal/api/handler/ledger.go
package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/shopspring/decimal"

	"balance-ledger/internal/api/types"
	"balance-ledger/internal/domain"
	"balance-ledger/internal/service"
	"balance-ledger/internal/util"
)

// DefaultTimeout bounds the handling of a single request.
const DefaultTimeout = 30 * time.Second

const maxBodyBytes = 64 << 10

// LedgerHandler handles HTTP requests for accounts, balances and market settings.
type LedgerHandler struct {
	service service.LedgerService
	logger  *zerolog.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(svc service.LedgerService, logger *zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{
		service: svc,
		logger:  logger,
	}
}

func (h *LedgerHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// statusFor maps a service error onto an HTTP status and client message.
// Anything unrecognized is a 500 with an opaque message.
func statusFor(err error) (int, string) {
	switch {
	case util.IsError(err, util.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case util.IsError(err, util.ErrEmailExists):
		return http.StatusConflict, util.ErrEmailExists.Error()
	case util.IsError(err, util.ErrUserNotFound), util.IsError(err, util.ErrNotFound):
		return http.StatusNotFound, util.ErrUserNotFound.Error()
	case util.IsError(err, util.ErrInvalidCredentials):
		return http.StatusUnauthorized, util.ErrInvalidCredentials.Error()
	case util.IsError(err, util.ErrUnauthorized):
		return http.StatusUnauthorized, util.ErrUnauthorized.Error()
	case util.IsError(err, util.ErrInsufficientHomeBalance):
		return http.StatusPaymentRequired, util.ErrInsufficientHomeBalance.Error()
	case util.IsError(err, util.ErrInsufficientGasBalance):
		return http.StatusPaymentRequired, util.ErrInsufficientGasBalance.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// RespondWithError writes the error body for err.
func (h *LedgerHandler) RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := statusFor(err)
	if code == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled service error")
	}
	h.respondWithJSON(w, code, types.ErrorResponse{Error: message})
}

// decode reads a JSON body into dst, rejecting unknown fields and trailing data.
func decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return util.InvalidInput("malformed request body: %v", err)
	}
	if dec.More() {
		return util.InvalidInput("malformed request body: trailing data")
	}
	return nil
}

// SignupRequest represents the request body for signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Signup registers a user.
// POST /api/signup
func (h *LedgerHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decode(r, &req); err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	profile, err := h.service.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, types.NewProfileView(profile))
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns the profile.
// POST /api/login
func (h *LedgerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	profile, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewProfileView(profile))
}

// GetProfile returns the profile of a user.
// GET /api/profile/{uid}
func (h *LedgerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewProfileView(profile))
}

// UpdateNameRequest represents the request body for a profile update.
type UpdateNameRequest struct {
	Name string `json:"name"`
}

// UpdateProfile changes the display name of a user.
// PATCH /api/profile/{uid}
func (h *LedgerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateNameRequest
	if err := decode(r, &req); err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	profile, err := h.service.UpdateName(r.Context(), chi.URLParam(r, "uid"), req.Name)
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewProfileView(profile))
}

// ListDeposits returns the visible ledger history of a user, newest first.
// GET /api/deposits/{uid}
func (h *LedgerHandler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListDeposits(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewListResponse(types.NewDepositViews(records)))
}

// DepositAttemptRequest represents the request body for a deposit attempt.
type DepositAttemptRequest struct {
	UID    string             `json:"uid"`
	Amount decimal.Decimal    `json:"amount"`
	Kind   domain.AttemptKind `json:"kind"`
}

// RecordDepositAttempt records that a deposit was started.
// POST /api/deposits/attempt
func (h *LedgerHandler) RecordDepositAttempt(w http.ResponseWriter, r *http.Request) {
	var req DepositAttemptRequest
	if err := decode(r, &req); err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	record, err := h.service.RecordDepositAttempt(r.Context(), req.UID, req.Amount, req.Kind)
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, types.NewDepositView(record))
}

// WithdrawRequest represents the request body for withdraw.
type WithdrawRequest struct {
	UID          string           `json:"uid"`
	Amount       decimal.Decimal  `json:"amount"`
	Gas          decimal.Decimal  `json:"gas"`
	DisplayedUSD *decimal.Decimal `json:"displayed_usd,omitempty"`
}

// Withdraw debits the home and gas balances.
// POST /api/withdraw
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if err := decode(r, &req); err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	profile, err := h.service.Withdraw(r.Context(), service.WithdrawRequest{
		UID:          req.UID,
		Amount:       req.Amount,
		Gas:          req.Gas,
		DisplayedUSD: req.DisplayedUSD,
	})
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewProfileView(profile))
}

// ListStocks returns every stock quote.
// GET /api/stocks
func (h *LedgerHandler) ListStocks(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.service.ListStocks(r.Context())
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewListResponse(types.NewStockViews(quotes)))
}

// GetPercentage resolves the percentage setting shown to a user.
// GET /api/percentage?uid=
func (h *LedgerHandler) GetPercentage(w http.ResponseWriter, r *http.Request) {
	setting, err := h.service.ResolvePercentage(r.Context(), r.URL.Query().Get("uid"))
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewPercentageView(setting))
}

// ListUsers returns every user profile.
// GET /api/admin/users
func (h *LedgerHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewListResponse(types.NewProfileViews(profiles)))
}

// CreditRequest represents the request body of both admin credit endpoints.
type CreditRequest struct {
	UID    string          `json:"uid"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

// CreditGas adds to a user's gas balance.
// POST /api/admin/credit/gas
func (h *LedgerHandler) CreditGas(w http.ResponseWriter, r *http.Request) {
	var req CreditRequest
	if err := decode(r, &req); err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	if req.Note != "" {
		h.RespondWithError(w, r, util.InvalidInput("note is not accepted for gas credits"))
		return
	}

	profile, err := h.service.CreditGas(r.Context(), req.UID, req.Amount)
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewProfileView(profile))
}

// CreditWallet adds to a user's home balance.
// POST /api/admin/credit/wallet
func (h *LedgerHandler) CreditWallet(w http.ResponseWriter, r *http.Request) {
	var req CreditRequest
	if err := decode(r, &req); err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	profile, err := h.service.CreditWallet(r.Context(), req.UID, req.Amount, req.Note)
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewProfileView(profile))
}

// StockRequest represents the request body for a stock update.
type StockRequest struct {
	Company          string           `json:"company"`
	CurrentPrice     decimal.Decimal  `json:"current_price"`
	PercentageChange decimal.Decimal  `json:"percentage_change"`
	Direction        domain.Direction `json:"direction"`
}

// UpdateStock sets a stock quote.
// POST /api/admin/stocks
func (h *LedgerHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var req StockRequest
	if err := decode(r, &req); err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	quote, err := h.service.UpdateStock(r.Context(), req.Company, req.CurrentPrice, req.PercentageChange, req.Direction)
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewStockView(quote))
}

// PercentageRequest represents the request body for a percentage update. An
// empty uid sets the global value.
type PercentageRequest struct {
	UID       string           `json:"uid"`
	Value     decimal.Decimal  `json:"value"`
	Direction domain.Direction `json:"direction"`
}

// UpdatePercentage sets a per-user or global percentage.
// POST /api/admin/percentage
func (h *LedgerHandler) UpdatePercentage(w http.ResponseWriter, r *http.Request) {
	var req PercentageRequest
	if err := decode(r, &req); err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	setting, err := h.service.UpdatePercentage(r.Context(), req.UID, req.Value, req.Direction)
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewPercentageView(setting))
}

// Health reports whether the backing store answers.
// GET /health
func (h *LedgerHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Health check failed")
		h.respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
