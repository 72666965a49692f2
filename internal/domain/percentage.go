// internal/domain/percentage.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GlobalPercentageKey is the sentinel key of the setting that applies to every user.
const GlobalPercentageKey = "global"

// Scope tells whether a percentage setting was resolved for a user or globally.
type Scope string

const (
	ScopeUser   Scope = "user"
	ScopeGlobal Scope = "global"
)

// PercentageSetting drives the percentage bubble shown next to a user's balance.
type PercentageSetting struct {
	UID       string          `db:"uid" json:"uid"` // A user uid or GlobalPercentageKey
	Value     decimal.Decimal `db:"value" json:"value"`
	Direction Direction       `db:"direction" json:"direction"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
	Scope     Scope           `db:"-" json:"scope,omitempty"`
}

// NewPercentageSetting creates a setting for key; an empty key means the global setting.
func NewPercentageSetting(key string, value decimal.Decimal, dir Direction) *PercentageSetting {
	scope := ScopeUser
	if key == "" || key == GlobalPercentageKey {
		key = GlobalPercentageKey
		scope = ScopeGlobal
	}
	return &PercentageSetting{
		UID:       key,
		Value:     value,
		Direction: dir,
		UpdatedAt: time.Now().UTC(),
		Scope:     scope,
	}
}

// DefaultPercentage is returned when neither a user nor a global setting exists.
func DefaultPercentage() *PercentageSetting {
	return &PercentageSetting{
		UID:       GlobalPercentageKey,
		Value:     decimal.Zero,
		Direction: DirectionNeutral,
		Scope:     ScopeGlobal,
	}
}

// ValidDirection reports whether d is accepted for the given kind of update.
func ValidDirection(d Direction, allowNeutral bool) bool {
	switch d {
	case DirectionUp, DirectionDown:
		return true
	case DirectionNeutral:
		return allowNeutral
	}
	return false
}
