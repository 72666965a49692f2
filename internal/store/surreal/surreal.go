// Package surreal implements store.Backend on SurrealDB.
//
// Every write is a single statement against one record, so Increment is atomic
// per document but RunInTx cannot roll back earlier writes.
package surreal

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"balance-ledger/internal/store"
)

// Config holds the SurrealDB connection settings.
type Config struct {
	Address   string `env:"SURREAL_ADDRESS" toml:"address"`
	Username  string `env:"SURREAL_USER" toml:"user"`
	Password  string `env:"SURREAL_PASS" toml:"pass"`
	Namespace string `env:"SURREAL_NAMESPACE" toml:"namespace"`
	Database  string `env:"SURREAL_DATABASE" toml:"database"`
}

// TimeLayout is the fixed-width UTC layout timestamps are stored in, so that
// string ordering matches time ordering.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// SurrealDB keeps the record identifier in "id". A schema field with that name
// is stored under keyField and aliased back on read.
const keyField = "record_key"

// Backend implements store.Backend using SurrealDB.
type Backend struct {
	db     *surrealdb.DB
	logger *zerolog.Logger
}

var _ store.Backend = (*Backend)(nil)

// Open connects, signs in, selects the namespace and defines the tables.
func Open(ctx context.Context, cfg Config, logger *zerolog.Logger) (*Backend, error) {
	db, err := surrealdb.New(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": cfg.Username,
		"pass": cfg.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	b := &Backend{db: db, logger: logger}
	if err := b.define(ctx); err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", cfg.Address).
		Str("namespace", cfg.Namespace).
		Str("database", cfg.Database).
		Msg("SurrealDB store initialized")
	return b, nil
}

// define creates the tables (SurrealDB v3 errors on querying missing tables)
// and the unique email index.
func (b *Backend) define(ctx context.Context) error {
	for c := range store.Schema {
		sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", c)
		if _, err := surrealdb.Query[any](ctx, b.db, sql, nil); err != nil {
			return fmt.Errorf("failed to define table %s: %w", c, err)
		}
	}
	sql := fmt.Sprintf("DEFINE INDEX IF NOT EXISTS credentials_email ON TABLE %s FIELDS email UNIQUE", store.Credentials)
	if _, err := surrealdb.Query[any](ctx, b.db, sql, nil); err != nil {
		return fmt.Errorf("failed to define email index: %w", err)
	}
	return nil
}

func (b *Backend) Name() string { return "surreal" }
func (b *Backend) Atomic() bool { return false }

func (b *Backend) Ping(ctx context.Context) error {
	if _, err := surrealdb.Query[any](ctx, b.db, "RETURN true", nil); err != nil {
		return fmt.Errorf("surreal ping: %w", err)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.db.Close(context.Background())
}

// RunInTx runs fn against the backend itself. Writes already applied when fn
// fails stay applied.
func (b *Backend) RunInTx(ctx context.Context, fn func(ctx context.Context, q store.Store) error) error {
	return fn(ctx, b)
}

func (b *Backend) Get(ctx context.Context, c store.Collection, key string, dest any) error {
	spec, err := store.Lookup(c)
	if err != nil {
		return err
	}

	sql := "SELECT " + selectList(spec) + " FROM $rid"
	rows, err := b.rows(ctx, sql, map[string]any{"rid": surrealmodels.NewRecordID(string(c), key)})
	if err != nil {
		return fmt.Errorf("get %s %s: %w", c, key, err)
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return store.Decode(rows[0], dest)
}

func (b *Backend) Upsert(ctx context.Context, c store.Collection, key string, fields store.Fields) error {
	spec, err := store.Lookup(c)
	if err != nil {
		return err
	}
	if err := spec.CheckFields(fields); err != nil {
		return err
	}

	sets, vars := assignments(spec, fields)
	sets = append([]string{column(spec.Key) + " = $key"}, sets...)
	vars["key"] = key
	vars["rid"] = surrealmodels.NewRecordID(string(c), key)

	sql := "UPSERT $rid SET " + strings.Join(sets, ", ")
	if _, err := surrealdb.Query[any](ctx, b.db, sql, vars); err != nil {
		return fmt.Errorf("upsert %s %s: %w", c, key, mapError(err))
	}
	return nil
}

func (b *Backend) Increment(ctx context.Context, c store.Collection, key, field string, delta decimal.Decimal) error {
	spec, err := store.Lookup(c)
	if err != nil {
		return err
	}
	if err := spec.CheckField(field); err != nil {
		return err
	}

	sql := fmt.Sprintf("UPDATE $rid SET %s += <decimal> $delta", column(field))
	vars := map[string]any{
		"rid":   surrealmodels.NewRecordID(string(c), key),
		"delta": delta.String(),
	}
	if spec.Touch != "" {
		sql += fmt.Sprintf(", %s = $now", column(spec.Touch))
		vars["now"] = formatTime(time.Now())
	}
	sql += " RETURN AFTER"

	rows, err := b.rows(ctx, sql, vars)
	if err != nil {
		return fmt.Errorf("increment %s.%s: %w", c, field, err)
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (b *Backend) Append(ctx context.Context, c store.Collection, fields store.Fields) (string, error) {
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

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("append %s: %w", c, err)
	}

	sets, vars := assignments(spec, fields)
	sets = append([]string{column(spec.Generated) + " = $key"}, sets...)
	vars["key"] = id.String()
	vars["rid"] = surrealmodels.NewRecordID(string(c), id.String())

	sql := "CREATE $rid SET " + strings.Join(sets, ", ")
	if _, err := surrealdb.Query[any](ctx, b.db, sql, vars); err != nil {
		return "", fmt.Errorf("append %s: %w", c, mapError(err))
	}
	return id.String(), nil
}

func (b *Backend) QueryEqual(ctx context.Context, c store.Collection, field string, value any, opts store.QueryOptions, dest any) error {
	spec, err := store.Lookup(c)
	if err != nil {
		return err
	}
	if err := spec.CheckField(field); err != nil {
		return err
	}
	where := []string{column(field) + " = $value"}
	return b.query(ctx, c, spec, where, map[string]any{"value": normalize(value)}, opts, dest)
}

func (b *Backend) List(ctx context.Context, c store.Collection, opts store.QueryOptions, dest any) error {
	spec, err := store.Lookup(c)
	if err != nil {
		return err
	}
	return b.query(ctx, c, spec, nil, map[string]any{}, opts, dest)
}

func (b *Backend) query(ctx context.Context, c store.Collection, spec store.Spec, where []string, vars map[string]any, opts store.QueryOptions, dest any) error {
	if err := spec.CheckOptions(opts); err != nil {
		return err
	}

	sql, vars := buildQuery(c, spec, where, vars, opts)
	rows, err := b.rows(ctx, sql, vars)
	if err != nil {
		return fmt.Errorf("query %s: %w", c, err)
	}
	return store.Decode(rows, dest)
}

func (b *Backend) rows(ctx context.Context, sql string, vars map[string]any) ([]map[string]any, error) {
	results, err := surrealdb.Query[[]map[string]any](ctx, b.db, sql, vars)
	if err != nil {
		return nil, err
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

func buildQuery(c store.Collection, spec store.Spec, where []string, vars map[string]any, opts store.QueryOptions) (string, map[string]any) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", selectList(spec), c)

	for i, p := range opts.ExcludePrefixes {
		name := fmt.Sprintf("exclude%d", i)
		vars[name] = p
		where = append(where, fmt.Sprintf("!string::starts_with(%s, $%s)", column(opts.ExcludeField), name))
	}
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if opts.OrderBy != "" {
		dir := " ASC"
		if opts.Descending {
			dir = " DESC"
		}
		b.WriteString(" ORDER BY " + column(opts.OrderBy) + dir)
		// Keys are UUIDv7 for appended records, so they break timestamp ties in insertion order.
		if opts.OrderBy != spec.Key {
			b.WriteString(", " + column(spec.Key) + dir)
		}
	}
	if opts.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", opts.Limit)
	}
	return b.String(), vars
}

// selectList renders the projection: decimals come back as strings and a
// field named id is read from keyField.
func selectList(spec store.Spec) string {
	out := make([]string, len(spec.Fields))
	for i, f := range spec.Fields {
		switch {
		case spec.IsNumeric(f):
			out[i] = fmt.Sprintf("<string> %s AS %s", column(f), f)
		case column(f) != f:
			out[i] = fmt.Sprintf("%s AS %s", column(f), f)
		default:
			out[i] = f
		}
	}
	return strings.Join(out, ", ")
}

// assignments renders the SET clauses for fields in schema order.
func assignments(spec store.Spec, fields store.Fields) ([]string, map[string]any) {
	sets := make([]string, 0, len(fields))
	vars := make(map[string]any, len(fields)+2)
	for _, f := range spec.Fields {
		v, ok := fields[f]
		if !ok || f == spec.Key {
			continue
		}
		param := "f_" + f
		if _, isDecimal := v.(decimal.Decimal); isDecimal || spec.IsNumeric(f) {
			sets = append(sets, fmt.Sprintf("%s = <decimal> $%s", column(f), param))
			if d, err := store.ToDecimal(v); err == nil {
				vars[param] = d.String()
				continue
			}
		} else {
			sets = append(sets, fmt.Sprintf("%s = $%s", column(f), param))
		}
		vars[param] = normalize(v)
	}
	return sets, vars
}

func column(name string) string {
	if name == "id" {
		return keyField
	}
	return name
}

// normalize converts values to the plain types the CBOR encoder handles
// without custom tags.
func normalize(v any) any {
	switch x := v.(type) {
	case time.Time:
		return formatTime(x)
	case decimal.Decimal:
		return x.String()
	case fmt.Stringer:
		return x.String()
	case string:
		return x
	}
	if rv := reflect.ValueOf(v); rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String()
	}
	return v
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func mapError(err error) error {
	if strings.Contains(err.Error(), "already contains") {
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	return err
}
