package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/usecase/query"
	"github.com/samber/lo"
)

type record[T any] interface {
	*T
	entity.Record
}

var _ Store[entity.Book] = (*memoryStore[entity.Book, *entity.Book])(nil)

type memoryStore[T any, P record[T]] struct {
	name    string
	unique  []string
	now     func() time.Time
	mu      sync.RWMutex
	lastID  int64
	records map[int64]T
}

// NewMemory returns a store that keeps records in process memory.
// Columns listed in unique may not repeat across active and inactive records.
func NewMemory[T any, P record[T]](name string, unique ...string) *memoryStore[T, P] {
	return &memoryStore[T, P]{
		name:    name,
		unique:  unique,
		now:     time.Now,
		records: make(map[int64]T),
	}
}

func (m *memoryStore[T, P]) Create(_ context.Context, rec T) (T, error) {
	if err := P(&rec).Validate(); err != nil {
		return *new(T), err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkUnique(&rec, 0); err != nil {
		return *new(T), err
	}

	m.lastID++
	now := m.timestamp()
	meta := P(&rec).Meta()
	meta.ID = m.lastID
	meta.Active = true
	meta.CreatedAt = now
	meta.UpdatedAt = now

	m.records[meta.ID] = rec
	return rec, nil
}

func (m *memoryStore[T, P]) Get(_ context.Context, id int64) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return *new(T), entity.NotFound(m.name, id)
	}
	return rec, nil
}

func (m *memoryStore[T, P]) Update(_ context.Context, id int64, mutate func(*T) error, guard ...query.Condition) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[id]
	if !ok {
		return *new(T), entity.NotFound(m.name, id)
	}
	if !query.Match(query.All(guard...), entity.Columns(P(&current))) {
		return *new(T), fmt.Errorf("%s %d: %w", m.name, id, ErrConditionNotMet)
	}

	next := current
	if err := mutate(&next); err != nil {
		return *new(T), err
	}
	meta := P(&next).Meta()
	*meta = *P(&current).Meta()
	if err := P(&next).Validate(); err != nil {
		return *new(T), err
	}
	if err := m.checkUnique(&next, id); err != nil {
		return *new(T), err
	}

	meta.UpdatedAt = m.bump(meta.UpdatedAt)
	m.records[id] = next
	return next, nil
}

func (m *memoryStore[T, P]) SetActive(_ context.Context, id int64, active bool) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return *new(T), entity.NotFound(m.name, id)
	}

	meta := P(&rec).Meta()
	if meta.Active == active {
		return rec, nil
	}
	meta.Active = active
	meta.UpdatedAt = m.bump(meta.UpdatedAt)
	m.records[id] = rec
	return rec, nil
}

func (m *memoryStore[T, P]) List(_ context.Context, q query.Query) ([]T, int, error) {
	m.mu.RLock()
	matched := lo.Filter(lo.Values(m.records), func(rec T, _ int) bool {
		return query.Match(q.Where, entity.Columns(P(&rec)))
	})
	m.mu.RUnlock()

	order := q.Order
	if len(order) == 0 {
		order = []query.Order{{Field: entity.ColumnID}}
	}
	slices.SortStableFunc(matched, func(a, b T) int {
		colsA, colsB := entity.Columns(P(&a)), entity.Columns(P(&b))
		for _, o := range order {
			c := query.CompareColumns(colsA[o.Field], colsB[o.Field])
			if o.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	total := len(matched)
	if q.Offset >= total {
		return []T{}, total, nil
	}
	window := matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(window) {
		window = window[:q.Limit]
	}
	return slices.Clone(window), total, nil
}

func (m *memoryStore[T, P]) Count(_ context.Context, where query.Condition) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return lo.CountBy(lo.Values(m.records), func(rec T) bool {
		return query.Match(where, entity.Columns(P(&rec)))
	}), nil
}

func (m *memoryStore[T, P]) checkUnique(rec P, selfID int64) error {
	if len(m.unique) == 0 {
		return nil
	}
	fields := rec.Fields()
	for id, other := range m.records {
		if id == selfID {
			continue
		}
		otherFields := P(&other).Fields()
		for _, column := range m.unique {
			if fields[column] != nil && query.CompareColumns(fields[column], otherFields[column]) == 0 {
				return fmt.Errorf("%s with %s %v already exists: %w", m.name, column, fields[column], entity.ErrConflict)
			}
		}
	}
	return nil
}

func (m *memoryStore[T, P]) timestamp() time.Time {
	return m.now().UTC().Truncate(time.Microsecond)
}

// bump returns a timestamp strictly after prev.
func (m *memoryStore[T, P]) bump(prev time.Time) time.Time {
	now := m.timestamp()
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}
