// internal/domain/stock.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the sign of a percentage move.
type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionNeutral Direction = "neutral"
)

var hundred = decimal.NewFromInt(100)

// MaxDownPercentage is the largest downward move; beyond it the price would go negative.
var MaxDownPercentage = hundred

// StockQuote is an admin-maintained price, keyed by company.
type StockQuote struct {
	Company          string          `db:"company" json:"company"`
	CurrentPrice     decimal.Decimal `db:"current_price" json:"current_price"`
	PercentageChange decimal.Decimal `db:"percentage_change" json:"percentage_change"`
	Direction        Direction       `db:"direction" json:"direction"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// NewStockQuote applies the percentage move to currentPrice and returns the resulting quote.
func NewStockQuote(company string, currentPrice, percentage decimal.Decimal, dir Direction) *StockQuote {
	return &StockQuote{
		Company:          company,
		CurrentPrice:     ApplyPercentage(currentPrice, percentage, dir),
		PercentageChange: percentage,
		Direction:        dir,
		UpdatedAt:        time.Now().UTC(),
	}
}

// ApplyPercentage returns price × (1 ± pct/100). Neutral leaves the price unchanged.
func ApplyPercentage(price, pct decimal.Decimal, dir Direction) decimal.Decimal {
	factor := pct.Div(hundred)
	switch dir {
	case DirectionUp:
		return price.Mul(decimal.NewFromInt(1).Add(factor))
	case DirectionDown:
		return price.Mul(decimal.NewFromInt(1).Sub(factor))
	default:
		return price
	}
}
