// internal/api/types/response.go
package types

import (
	"time"

	"github.com/shopspring/decimal"

	"balance-ledger/internal/domain"
)

// AmountPlaces is the number of decimal places amounts are rendered with.
const AmountPlaces = 2

// Amount renders d rounded half away from zero to two places.
func Amount(d decimal.Decimal) string {
	return d.StringFixed(AmountPlaces)
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListResponse wraps a collection. T is the element view type.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// NewListResponse builds a ListResponse; a nil slice renders as [].
func NewListResponse[T any](data []T) ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	return ListResponse[T]{Data: data, Count: len(data)}
}

// ProfileView is the JSON form of domain.Profile.
type ProfileView struct {
	UID              string    `json:"uid"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	CreatedAt        time.Time `json:"created_at"`
	BalanceUSD       string    `json:"balance_usd"`
	WalletBalanceUSD string    `json:"wallet_balance_usd"`
}

func NewProfileView(p *domain.Profile) ProfileView {
	return ProfileView{
		UID:              p.UID,
		Email:            p.Email,
		Name:             p.Name,
		CreatedAt:        p.CreatedAt,
		BalanceUSD:       Amount(p.BalanceUSD),
		WalletBalanceUSD: Amount(p.WalletBalanceUSD),
	}
}

func NewProfileViews(profiles []domain.Profile) []ProfileView {
	views := make([]ProfileView, 0, len(profiles))
	for i := range profiles {
		views = append(views, NewProfileView(&profiles[i]))
	}
	return views
}

// DepositView is the JSON form of a ledger record.
type DepositView struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	AmountUSD string    `json:"amount_usd"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

func NewDepositView(r *domain.DepositRecord) DepositView {
	return DepositView{
		ID:        r.ID,
		UID:       r.UID,
		AmountUSD: Amount(r.AmountUSD),
		Note:      r.Note,
		CreatedAt: r.CreatedAt,
	}
}

func NewDepositViews(records []domain.DepositRecord) []DepositView {
	views := make([]DepositView, 0, len(records))
	for i := range records {
		views = append(views, NewDepositView(&records[i]))
	}
	return views
}

// StockView is the JSON form of a stock quote.
type StockView struct {
	Company          string    `json:"company"`
	CurrentPrice     string    `json:"current_price"`
	PercentageChange string    `json:"percentage_change"`
	Direction        string    `json:"direction"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewStockView(q *domain.StockQuote) StockView {
	return StockView{
		Company:          q.Company,
		CurrentPrice:     Amount(q.CurrentPrice),
		PercentageChange: Amount(q.PercentageChange),
		Direction:        string(q.Direction),
		UpdatedAt:        q.UpdatedAt,
	}
}

func NewStockViews(quotes []domain.StockQuote) []StockView {
	views := make([]StockView, 0, len(quotes))
	for i := range quotes {
		views = append(views, NewStockView(&quotes[i]))
	}
	return views
}

// PercentageView is the JSON form of a resolved percentage setting.
type PercentageView struct {
	UID       string `json:"uid"`
	Value     string `json:"value"`
	Direction string `json:"direction"`
	Scope     string `json:"scope"`
}

func NewPercentageView(p *domain.PercentageSetting) PercentageView {
	return PercentageView{
		UID:       p.UID,
		Value:     Amount(p.Value),
		Direction: string(p.Direction),
		Scope:     string(p.Scope),
	}
}
