// Package postgres implements store.Backend on PostgreSQL through sqlx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"balance-ledger/internal/store"
	"balance-ledger/pkg/db"
)

const uniqueViolation = "23505"

// DBExecutor defines the common database operations needed by the store.
// Both *sqlx.DB and *sqlx.Tx implement these methods, so the same Store can
// run against a direct connection or a transaction.
type DBExecutor interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store runs store operations on a DBExecutor.
type Store struct {
	q DBExecutor
}

var _ store.Store = (*Store)(nil)

// Backend is the PostgreSQL store.Backend. Its RunInTx hands out a Store bound
// to a single SQL transaction.
type Backend struct {
	*Store
	db         *sqlx.DB
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

var _ store.Backend = (*Backend)(nil)

// New wraps an open connection.
func New(conn *sqlx.DB) *Backend {
	return NewWithTx(conn, db.BeginTx, db.CommitTx, db.RollbackTx)
}

// NewWithTx wraps an open connection with custom transaction functions.
func NewWithTx(conn *sqlx.DB, beginTx db.BeginTxFunc, commitTx db.CommitTxFunc, rollbackTx db.RollbackTxFunc) *Backend {
	return &Backend{
		Store:      &Store{q: conn},
		db:         conn,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// Open connects, applies migrations and returns the backend.
func Open(ctx context.Context, cfg db.Config) (*Backend, error) {
	conn, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, conn.DB); err != nil {
		conn.Close()
		return nil, err
	}
	return New(conn), nil
}

func (b *Backend) Name() string { return "postgres" }
func (b *Backend) Atomic() bool { return true }

func (b *Backend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *Backend) Close() error {
	return b.db.Close()
}

// RunInTx commits when fn returns nil and rolls back otherwise.
func (b *Backend) RunInTx(ctx context.Context, fn func(ctx context.Context, q store.Store) error) error {
	txController, err := b.beginTx(ctx, b.db)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer b.rollbackTx(txController)

	txExecutor, ok := txController.(DBExecutor)
	if !ok {
		return errors.New("transaction controller does not implement DBExecutor")
	}

	if err := fn(ctx, &Store{q: txExecutor}); err != nil {
		return err
	}

	if err := b.commitTx(txController); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, c store.Collection, key string, dest any) error {
	spec, err := store.Lookup(c)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", strings.Join(spec.Fields, ", "), c, spec.Key)
	if err := s.q.GetContext(ctx, dest, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return fmt.Errorf("get %s %s: %w", c, key, err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, c store.Collection, key string, fields store.Fields) error {
	spec, err := store.Lookup(c)
	if err != nil {
		return err
	}
	if err := spec.CheckFields(fields); err != nil {
		return err
	}

	cols := sortedColumns(fields, spec.Key)
	args := make([]any, 0, len(cols)+1)
	args = append(args, key)
	for _, col := range cols {
		args = append(args, fields[col])
	}

	if _, err := s.q.ExecContext(ctx, upsertQuery(c, spec.Key, cols), args...); err != nil {
		return fmt.Errorf("upsert %s %s: %w", c, key, mapError(err))
	}
	return nil
}

func (s *Store) Increment(ctx context.Context, c store.Collection, key, field string, delta decimal.Decimal) error {
	spec, err := store.Lookup(c)
	if err != nil {
		return err
	}
	if err := spec.CheckField(field); err != nil {
		return err
	}

	var (
		query string
		args  []any
	)
	if spec.Touch != "" {
		query = fmt.Sprintf("UPDATE %s SET %s = %s + $1, %s = $2 WHERE %s = $3", c, field, field, spec.Touch, spec.Key)
		args = []any{delta, time.Now().UTC(), key}
	} else {
		query = fmt.Sprintf("UPDATE %s SET %s = %s + $1 WHERE %s = $2", c, field, field, spec.Key)
		args = []any{delta, key}
	}

	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("increment %s.%s: %w", c, field, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment %s.%s: %w", c, field, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Append(ctx context.Context, c store.Collection, fields store.Fields) (string, error) {
	spec, err := store.Lookup(c)
	if err != nil {
		return "", err
	}
	if spec.Generated == "" {
		return "", fmt.Errorf("store: collection %q has caller supplied keys", c)
	}
	if err := spec.CheckFields(fields); err != nil {
		return "", err
	}

	cols := sortedColumns(fields, spec.Generated)
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		args = append(args, fields[col])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		c, strings.Join(cols, ", "), placeholders(1, len(cols)), spec.Generated)

	var id string
	if err := s.q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("append %s: %w", c, mapError(err))
	}
	return id, nil
}

func (s *Store) QueryEqual(ctx context.Context, c store.Collection, field string, value any, opts store.QueryOptions, dest any) error {
	spec, err := store.Lookup(c)
	if err != nil {
		return err
	}
	if err := spec.CheckField(field); err != nil {
		return err
	}
	return s.query(ctx, c, spec, []string{field + " = $1"}, []any{value}, opts, dest)
}

func (s *Store) List(ctx context.Context, c store.Collection, opts store.QueryOptions, dest any) error {
	spec, err := store.Lookup(c)
	if err != nil {
		return err
	}
	return s.query(ctx, c, spec, nil, nil, opts, dest)
}

func (s *Store) query(ctx context.Context, c store.Collection, spec store.Spec, where []string, args []any, opts store.QueryOptions, dest any) error {
	if err := spec.CheckOptions(opts); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(spec.Fields, ", "), c)

	if len(opts.ExcludePrefixes) > 0 {
		likes := make([]string, 0, len(opts.ExcludePrefixes))
		for _, p := range opts.ExcludePrefixes {
			args = append(args, escapeLike(p)+"%")
			likes = append(likes, fmt.Sprintf("%s LIKE $%d", opts.ExcludeField, len(args)))
		}
		where = append(where, "NOT ("+strings.Join(likes, " OR ")+")")
	}
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if opts.OrderBy != "" {
		dir := ""
		if opts.Descending {
			dir = " DESC"
		}
		b.WriteString(" ORDER BY " + opts.OrderBy + dir)
		// Ties fall back to the key, which grows with insertion like the memory store's sequence.
		if opts.OrderBy != spec.Key {
			b.WriteString(", " + spec.Key + dir)
		}
	}
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	if err := s.q.SelectContext(ctx, dest, b.String(), args...); err != nil {
		return fmt.Errorf("query %s: %w", c, err)
	}
	return nil
}

func upsertQuery(c store.Collection, key string, cols []string) string {
	all := append([]string{key}, cols...)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s)",
		c, strings.Join(all, ", "), placeholders(1, len(all)), key)
	if len(cols) == 0 {
		return query + " DO NOTHING"
	}
	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
	}
	return query + " DO UPDATE SET " + strings.Join(sets, ", ")
}

// sortedColumns returns the field names minus skip in a stable order, so the
// generated SQL is the same for the same set of fields.
func sortedColumns(fields store.Fields, skip string) []string {
	cols := make([]string, 0, len(fields))
	for name := range fields {
		if name != skip {
			cols = append(cols, name)
		}
	}
	sort.Strings(cols)
	return cols
}

func placeholders(from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ph, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", store.ErrConflict, pqErr.Message)
	}
	return err
}
