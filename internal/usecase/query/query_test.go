package query

import (
	"testing"
	"time"

	"github.com/project/librarydesk/internal/entity"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestPager_Build(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pager := NewPager(10, 100)

	tests := []struct {
		name       string
		spec       Spec
		params     Params
		want       Query
		errRequire error
	}{
		{
			name:   "defaults",
			spec:   LookupSpec,
			params: Params{},
			want: Query{
				Order: []Order{{Field: "id"}},
				Limit: 10,
			},
		},
		{
			name: "page and limit",
			spec: LookupSpec,
			params: Params{
				Page:  lo.ToPtr(3),
				Limit: lo.ToPtr(5),
			},
			want: Query{
				Order:  []Order{{Field: "id"}},
				Offset: 10,
				Limit:  5,
			},
		},
		{
			name:   "limit is clamped",
			spec:   LookupSpec,
			params: Params{Limit: lo.ToPtr(1000)},
			want: Query{
				Order: []Order{{Field: "id"}},
				Limit: 100,
			},
		},
		{
			name:       "zero page",
			spec:       LookupSpec,
			params:     Params{Page: lo.ToPtr(0)},
			errRequire: entity.ErrValidation,
		},
		{
			name:       "negative limit",
			spec:       LookupSpec,
			params:     Params{Limit: lo.ToPtr(-1)},
			errRequire: entity.ErrValidation,
		},
		{
			name:       "unknown sort key",
			spec:       LookupSpec,
			params:     Params{Sort: "password"},
			errRequire: entity.ErrValidation,
		},
		{
			name:       "unknown filter",
			spec:       LookupSpec,
			params:     Params{Filters: map[string]any{"authorId": int64(1)}},
			errRequire: entity.ErrValidation,
		},
		{
			name: "search active and sort",
			spec: BookSpec,
			params: Params{
				Search:  "go",
				Active:  lo.ToPtr(true),
				Filters: map[string]any{"authorId": int64(7)},
				Sort:    "name",
				Desc:    true,
			},
			want: Query{
				Where: And{
					Eq("active", true),
					Contains("go", "name", "isbn"),
					Eq("author_id", int64(7)),
				},
				Order: []Order{{Field: "name", Desc: true}, {Field: "id"}},
				Limit: 10,
			},
		},
		{
			name:   "overdue flag",
			spec:   LoanSpec,
			params: Params{Flags: map[string]bool{"overdue": true}},
			want: Query{
				Where: And{IsNull("return_date"), Lt("return_due", now)},
				Order: []Order{{Field: "id"}},
				Limit: 10,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := pager.Build(tt.spec, tt.params, now)
			if tt.errRequire != nil {
				require.ErrorIs(t, err, tt.errRequire)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	returned := due.Add(-time.Hour)
	cols := map[string]any{
		"id":          int64(4),
		"name":        "The Go Programming Language",
		"year":        2015,
		"active":      true,
		"return_due":  due,
		"return_date": nil,
		"returned_at": &returned,
		"role":        entity.RoleAdmin,
	}

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{name: "nil matches", cond: nil, want: true},
		{name: "eq int widths", cond: Eq("id", 4), want: true},
		{name: "lt", cond: Lt("year", int64(2016)), want: true},
		{name: "gte fails", cond: Gte("year", 2016), want: false},
		{name: "bool", cond: Eq("active", false), want: false},
		{name: "named string type", cond: Eq("role", "ADMIN"), want: true},
		{name: "time compare", cond: Lt("return_due", due.Add(time.Second)), want: true},
		{name: "is null", cond: IsNull("return_date"), want: true},
		{name: "missing column is null", cond: IsNull("nope"), want: true},
		{name: "pointer not null", cond: NotNull("returned_at"), want: true},
		{name: "compare with null", cond: Eq("return_date", due), want: false},
		{name: "search case insensitive", cond: Contains("PROGRAMMING", "isbn", "name"), want: true},
		{name: "search miss", cond: Contains("rust", "name"), want: false},
		{name: "and", cond: All(Eq("id", 4), IsNull("return_date")), want: true},
		{name: "or", cond: Any(Eq("id", 5), Eq("active", true)), want: true},
		{name: "mismatched types", cond: Eq("name", 4), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Match(tt.cond, cols))
		})
	}
}

func TestNewPage(t *testing.T) {
	t.Parallel()

	page := NewPage[int](nil, 23, Query{Offset: 30, Limit: 10})
	require.Equal(t, []int{}, page.Items)
	require.Equal(t, 4, page.Page)
	require.Equal(t, 3, page.TotalPages)
	require.Equal(t, 23, page.Total)

	require.Equal(t, 0, TotalPages(0, 10))
	require.Equal(t, 1, TotalPages(10, 10))
	require.Equal(t, 2, TotalPages(11, 10))
}

func TestCompareColumns(t *testing.T) {
	t.Parallel()

	require.Equal(t, -1, CompareColumns("a", "b"))
	require.Equal(t, 1, CompareColumns(nil, int64(1)))
	require.Equal(t, -1, CompareColumns(int64(1), nil))
	require.Equal(t, 0, CompareColumns(nil, nil))
}
