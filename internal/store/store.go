// Package store defines the ledger store capability interface shared by the
// PostgreSQL, SurrealDB and in-memory backends.
//
// Records are addressed by collection and key. Writes take plain field maps;
// reads decode into the caller's struct (Get) or slice of structs (QueryEqual,
// List). Only PostgreSQL runs RunInTx as a real transaction; the document
// backends apply each write independently.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned by Get and Increment when the keyed record is absent.
	ErrNotFound = errors.New("store: record not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("store: unique constraint violated")
)

// Collection names a table (PostgreSQL) or document table (SurrealDB).
type Collection string

const (
	Users       Collection = "users"
	Credentials Collection = "auth_credentials"
	Balances    Collection = "balances"
	Deposits    Collection = "deposits"
	Stocks      Collection = "stock_quotes"
	Percentages Collection = "percentage_settings"
)

// Fields is a set of field values to write. Values are strings, decimal.Decimal,
// time.Time or Go numeric types.
type Fields map[string]any

// QueryOptions shapes a query result.
type QueryOptions struct {
	OrderBy    string
	Descending bool
	Limit      int // 0 means unlimited

	// Records whose ExcludeField starts with any of ExcludePrefixes are skipped
	// before the limit is applied.
	ExcludeField    string
	ExcludePrefixes []string
}

// Store is the set of record operations the repositories are written against.
type Store interface {
	Get(ctx context.Context, c Collection, key string, dest any) error
	Upsert(ctx context.Context, c Collection, key string, fields Fields) error
	Increment(ctx context.Context, c Collection, key, field string, delta decimal.Decimal) error
	Append(ctx context.Context, c Collection, fields Fields) (string, error)
	QueryEqual(ctx context.Context, c Collection, field string, value any, opts QueryOptions, dest any) error
	List(ctx context.Context, c Collection, opts QueryOptions, dest any) error
}

// Backend is a Store with lifecycle and transaction support.
type Backend interface {
	Store

	// RunInTx runs fn with a Store handle. On PostgreSQL the handle is bound to a
	// SQL transaction that commits when fn returns nil and rolls back otherwise.
	// Document backends pass themselves and cannot roll back.
	RunInTx(ctx context.Context, fn func(ctx context.Context, q Store) error) error
	// Atomic reports whether RunInTx is all-or-nothing.
	Atomic() bool
	Ping(ctx context.Context) error
	Close() error
	Name() string
}

// Spec describes the persisted shape of a collection.
type Spec struct {
	Key       string   // key field name
	Fields    []string // every persisted field, key included
	Generated string   // field assigned by Append, empty when keys are caller supplied
	Touch     string   // timestamp field refreshed by Increment, empty when none
	Numeric   []string // decimal fields
}

// Schema is the fixed set of collections. Backends validate every collection and
// field name against it before building a query.
var Schema = map[Collection]Spec{
	Users: {
		Key:    "uid",
		Fields: []string{"uid", "email", "name", "created_at"},
	},
	Credentials: {
		Key:    "uid",
		Fields: []string{"uid", "email", "password_hash", "created_at"},
	},
	Balances: {
		Key:     "uid",
		Fields:  []string{"uid", "balance_usd", "wallet_balance_usd", "updated_at"},
		Touch:   "updated_at",
		Numeric: []string{"balance_usd", "wallet_balance_usd"},
	},
	Deposits: {
		Key:       "id",
		Fields:    []string{"id", "uid", "amount_usd", "note", "created_at"},
		Generated: "id",
		Numeric:   []string{"amount_usd"},
	},
	Stocks: {
		Key:     "company",
		Fields:  []string{"company", "current_price", "percentage_change", "direction", "updated_at"},
		Touch:   "updated_at",
		Numeric: []string{"current_price", "percentage_change"},
	},
	Percentages: {
		Key:     "uid",
		Fields:  []string{"uid", "value", "direction", "updated_at"},
		Touch:   "updated_at",
		Numeric: []string{"value"},
	},
}

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Lookup returns the spec of c.
func Lookup(c Collection) (Spec, error) {
	spec, ok := Schema[c]
	if !ok {
		return Spec{}, fmt.Errorf("store: unknown collection %q", c)
	}
	return spec, nil
}

// IsNumeric reports whether name holds a decimal value.
func (s Spec) IsNumeric(name string) bool {
	for _, f := range s.Numeric {
		if f == name {
			return true
		}
	}
	return false
}

// HasField reports whether name is a persisted field of the collection.
func (s Spec) HasField(name string) bool {
	for _, f := range s.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// CheckField validates a field name used in a query or write.
func (s Spec) CheckField(name string) error {
	if !identifier.MatchString(name) || !s.HasField(name) {
		return fmt.Errorf("store: unknown field %q", name)
	}
	return nil
}

// CheckFields validates every key of fields.
func (s Spec) CheckFields(fields Fields) error {
	for name := range fields {
		if err := s.CheckField(name); err != nil {
			return err
		}
	}
	return nil
}

// CheckOptions validates the field names referenced by opts.
func (s Spec) CheckOptions(opts QueryOptions) error {
	if opts.OrderBy != "" {
		if err := s.CheckField(opts.OrderBy); err != nil {
			return err
		}
	}
	if len(opts.ExcludePrefixes) > 0 {
		if err := s.CheckField(opts.ExcludeField); err != nil {
			return err
		}
	}
	if opts.Limit < 0 {
		return fmt.Errorf("store: negative limit %d", opts.Limit)
	}
	return nil
}
