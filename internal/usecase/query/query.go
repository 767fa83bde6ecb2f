package query

import (
	"slices"
	"time"

	"github.com/project/librarydesk/internal/entity"
	"github.com/samber/lo"
)

type Order struct {
	Field string
	Desc  bool
}

// Query is what a store executes: filter, ordering and a page window.
type Query struct {
	Where  Condition
	Order  []Order
	Offset int
	Limit  int
}

// Derived builds a condition for a boolean filter that is computed from
// stored columns at request time.
type Derived func(want bool, now time.Time) Condition

// Spec describes what a collection can be filtered and sorted by.
type Spec struct {
	Search      []string
	Filters     map[string]string
	Derived     map[string]Derived
	Sorts       map[string]string
	DefaultSort string
}

type Params struct {
	Search  string
	Active  *bool
	Filters map[string]any
	Flags   map[string]bool
	Page    *int
	Limit   *int
	Sort    string
	Desc    bool
}

type Pager struct {
	DefaultLimit int
	MaxLimit     int
}

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

func NewPager(defaultLimit, maxLimit int) Pager {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	return Pager{DefaultLimit: min(defaultLimit, maxLimit), MaxLimit: maxLimit}
}

// Build turns request parameters into a store query. Ordering always
// ends with id ascending so pages are stable.
func (p Pager) Build(spec Spec, params Params, now time.Time) (Query, error) {
	page, limit, err := p.window(params)
	if err != nil {
		return Query{}, err
	}

	conds := make([]Condition, 0, len(params.Filters)+len(params.Flags)+2)
	if params.Active != nil {
		conds = append(conds, Eq(entity.ColumnActive, *params.Active))
	}
	if params.Search != "" && len(spec.Search) > 0 {
		conds = append(conds, Contains(params.Search, spec.Search...))
	}
	for _, name := range sortedKeys(params.Filters) {
		column, ok := spec.Filters[name]
		if !ok {
			return Query{}, entity.Invalidf("unknown filter %q", name)
		}
		conds = append(conds, Eq(column, params.Filters[name]))
	}
	for _, name := range sortedKeys(params.Flags) {
		derive, ok := spec.Derived[name]
		if !ok {
			return Query{}, entity.Invalidf("unknown filter %q", name)
		}
		conds = append(conds, derive(params.Flags[name], now))
	}

	order, err := p.order(spec, params)
	if err != nil {
		return Query{}, err
	}

	return Query{
		Where:  All(conds...),
		Order:  order,
		Offset: (page - 1) * limit,
		Limit:  limit,
	}, nil
}

func (p Pager) window(params Params) (page, limit int, err error) {
	page, limit = 1, p.DefaultLimit
	if params.Page != nil {
		if *params.Page <= 0 {
			return 0, 0, entity.Invalidf("page must be positive, got %d", *params.Page)
		}
		page = *params.Page
	}
	if params.Limit != nil {
		if *params.Limit <= 0 {
			return 0, 0, entity.Invalidf("limit must be positive, got %d", *params.Limit)
		}
		limit = min(*params.Limit, p.MaxLimit)
	}
	return page, limit, nil
}

func (p Pager) order(spec Spec, params Params) ([]Order, error) {
	key := params.Sort
	if key == "" {
		key = spec.DefaultSort
	}
	if key == "" {
		return []Order{{Field: entity.ColumnID}}, nil
	}

	column, ok := spec.Sorts[key]
	if !ok {
		return nil, entity.Invalidf("unknown sort key %q", key)
	}
	if column == entity.ColumnID {
		return []Order{{Field: entity.ColumnID, Desc: params.Desc}}, nil
	}
	return []Order{{Field: column, Desc: params.Desc}, {Field: entity.ColumnID}}, nil
}

// Page is one window of a listing.
type Page[T any] struct {
	Items      []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func NewPage[T any](items []T, total int, q Query) Page[T] {
	if items == nil {
		items = []T{}
	}
	page := 1
	if q.Limit > 0 {
		page = q.Offset/q.Limit + 1
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      q.Limit,
		TotalPages: TotalPages(total, q.Limit),
	}
}

func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func MapPage[T, R any](p Page[T], f func(T) R) Page[R] {
	return Page[R]{
		Items:      lo.Map(p.Items, func(item T, _ int) R { return f(item) }),
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
