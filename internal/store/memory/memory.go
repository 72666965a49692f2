package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"balance-ledger/internal/store"
)

// Store is an in-memory implementation of store.Backend. It is safe for
// concurrent use and is intended for tests and local development. Like the
// document backend it applies each write on its own: RunInTx cannot roll back.
type Store struct {
	mu      sync.RWMutex
	nextID  int64
	nextSeq int64
	data    map[store.Collection]map[string]*record
}

type record struct {
	seq    int64 // insertion order, breaks ordering ties
	fields store.Fields
}

var _ store.Backend = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	data := make(map[store.Collection]map[string]*record, len(store.Schema))
	for c := range store.Schema {
		data[c] = make(map[string]*record)
	}
	return &Store{nextID: 1, data: data}
}

func (s *Store) Name() string                 { return "memory" }
func (s *Store) Atomic() bool                 { return false }
func (s *Store) Ping(_ context.Context) error { return nil }
func (s *Store) Close() error                 { return nil }

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, q store.Store) error) error {
	return fn(ctx, s)
}

func (s *Store) Get(_ context.Context, c store.Collection, key string, dest any) error {
	if _, err := store.Lookup(c); err != nil {
		return err
	}

	s.mu.RLock()
	rec, ok := s.data[c][key]
	var snapshot store.Fields
	if ok {
		snapshot = cloneFields(rec.fields)
	}
	s.mu.RUnlock()

	if !ok {
		return store.ErrNotFound
	}
	return store.Decode(snapshot, dest)
}

func (s *Store) Upsert(_ context.Context, c store.Collection, key string, fields store.Fields) error {
	spec, err := store.Lookup(c)
	if err != nil {
		return err
	}
	if err := spec.CheckFields(fields); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[c][key]
	if !ok {
		rec = &record{seq: s.nextSeqLocked(), fields: store.Fields{spec.Key: key}}
		s.data[c][key] = rec
	}
	for name, v := range fields {
		rec.fields[name] = v
	}
	rec.fields[spec.Key] = key
	return nil
}

func (s *Store) Increment(_ context.Context, c store.Collection, key, field string, delta decimal.Decimal) error {
	spec, err := store.Lookup(c)
	if err != nil {
		return err
	}
	if err := spec.CheckField(field); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[c][key]
	if !ok {
		return store.ErrNotFound
	}
	current, err := store.ToDecimal(rec.fields[field])
	if err != nil {
		return fmt.Errorf("increment %s.%s: %w", c, field, err)
	}
	rec.fields[field] = current.Add(delta)
	if spec.Touch != "" {
		rec.fields[spec.Touch] = time.Now().UTC()
	}
	return nil
}

func (s *Store) Append(_ context.Context, c store.Collection, fields store.Fields) (string, error) {
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

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.FormatInt(s.nextID, 10)
	s.nextID++

	rec := &record{seq: s.nextSeqLocked(), fields: cloneFields(fields)}
	rec.fields[spec.Generated] = id
	s.data[c][id] = rec
	return id, nil
}

func (s *Store) QueryEqual(_ context.Context, c store.Collection, field string, value any, opts store.QueryOptions, dest any) error {
	spec, err := store.Lookup(c)
	if err != nil {
		return err
	}
	if err := spec.CheckField(field); err != nil {
		return err
	}
	return s.query(c, spec, opts, dest, func(f store.Fields) bool {
		return store.Compare(f[field], value) == 0
	})
}

func (s *Store) List(_ context.Context, c store.Collection, opts store.QueryOptions, dest any) error {
	spec, err := store.Lookup(c)
	if err != nil {
		return err
	}
	return s.query(c, spec, opts, dest, func(store.Fields) bool { return true })
}

func (s *Store) query(c store.Collection, spec store.Spec, opts store.QueryOptions, dest any, match func(store.Fields) bool) error {
	if err := spec.CheckOptions(opts); err != nil {
		return err
	}

	s.mu.RLock()
	matched := make([]*record, 0)
	for _, rec := range s.data[c] {
		if !match(rec.fields) || excluded(rec.fields, opts) {
			continue
		}
		matched = append(matched, &record{seq: rec.seq, fields: cloneFields(rec.fields)})
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		cmp := 0
		if opts.OrderBy != "" {
			cmp = store.Compare(matched[i].fields[opts.OrderBy], matched[j].fields[opts.OrderBy])
		}
		if cmp == 0 {
			cmp = int(matched[i].seq - matched[j].seq)
		}
		if opts.Descending {
			return cmp > 0
		}
		return cmp < 0
	})

	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	out := make([]store.Fields, 0, len(matched))
	for _, rec := range matched {
		out = append(out, rec.fields)
	}
	return store.Decode(out, dest)
}

func (s *Store) nextSeqLocked() int64 {
	s.nextSeq++
	return s.nextSeq
}

func excluded(f store.Fields, opts store.QueryOptions) bool {
	if len(opts.ExcludePrefixes) == 0 {
		return false
	}
	v, _ := f[opts.ExcludeField].(string)
	for _, p := range opts.ExcludePrefixes {
		if strings.HasPrefix(v, p) {
			return true
		}
	}
	return false
}

func cloneFields(f store.Fields) store.Fields {
	out := make(store.Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
