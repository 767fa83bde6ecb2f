package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/usecase/query"
	"github.com/stretchr/testify/require"
)

var lookupColumns = []string{"active", "created_at", "id", "name", "updated_at"}

func lookupRows(lookups ...entity.Lookup) *pgxmock.Rows {
	rows := pgxmock.NewRows(lookupColumns)
	for _, l := range lookups {
		rows.AddRow(l.Active, l.CreatedAt, l.ID, l.Name, l.UpdatedAt)
	}
	return rows
}

func testLookup(id int64, name string) entity.Lookup {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return entity.Lookup{
		Base: entity.Base{ID: id, Active: true, CreatedAt: ts, UpdatedAt: ts},
		Name: name,
	}
}

func Test_postgresStore_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      entity.Lookup
		fail       failStage
		errRequire error
	}{
		{
			name:  "ok",
			input: entity.Lookup{Name: "Borges"},
			fail:  failNone,
		},
		{
			name:       "invalid record never reaches db",
			input:      entity.Lookup{},
			fail:       failCheck,
			errRequire: entity.ErrValidation,
		},
		{
			name:       "unique violation",
			input:      entity.Lookup{Name: "Borges"},
			fail:       failQuery,
			errRequire: entity.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			ctx := context.Background()
			want := testLookup(1, tt.input.Name)

			switch tt.fail {
			case failNone:
				mock.ExpectQuery(`INSERT INTO "author"`).WillReturnRows(lookupRows(want))
			case failQuery:
				mock.ExpectQuery(`INSERT INTO "author"`).
					WillReturnError(&pgconn.PgError{Code: ErrUniqueViolation, ConstraintName: "author_name_key"})
			}

			store := NewPostgres[entity.Lookup](nil, mock, "author")
			got, err := store.Create(ctx, tt.input)
			require.NoError(t, mock.ExpectationsWereMet())
			if tt.errRequire != nil {
				require.ErrorIs(t, err, tt.errRequire)
				require.Empty(t, got)
				return
			}
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func Test_postgresStore_Get(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rows       []entity.Lookup
		errRequire error
	}{
		{
			name: "found",
			rows: []entity.Lookup{testLookup(3, "Tor")},
		},
		{
			name:       "missing",
			rows:       nil,
			errRequire: entity.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock, err := pgxmock.NewPool()
			require.NoError(t, err)

			mock.ExpectQuery(`SELECT .* FROM "publisher"`).WillReturnRows(lookupRows(tt.rows...))

			store := NewPostgres[entity.Lookup](nil, mock, "publisher")
			got, err := store.Get(context.Background(), 3)
			require.NoError(t, mock.ExpectationsWereMet())
			if tt.errRequire != nil {
				require.ErrorIs(t, err, tt.errRequire)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.rows[0], got)
		})
	}
}

func Test_postgresStore_Update(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		guard      []query.Condition
		mutate     func(*entity.Lookup) error
		fail       failStage
		errRequire error
	}{
		{
			name:   "ok",
			mutate: func(l *entity.Lookup) error { l.Name = "Poetry"; return nil },
			fail:   failNone,
		},
		{
			name:       "guard not met",
			guard:      []query.Condition{query.Eq("active", false)},
			mutate:     func(l *entity.Lookup) error { l.Name = "Poetry"; return nil },
			fail:       failCheck,
			errRequire: ErrConditionNotMet,
		},
		{
			name:       "invalid result",
			mutate:     func(l *entity.Lookup) error { l.Name = ""; return nil },
			fail:       failCheck,
			errRequire: entity.ErrValidation,
		},
		{
			name:       "begin fails",
			mutate:     func(*entity.Lookup) error { return nil },
			fail:       failBegin,
			errRequire: errInternal,
		},
		{
			name:       "write fails",
			mutate:     func(l *entity.Lookup) error { l.Name = "Poetry"; return nil },
			fail:       failQuery,
			errRequire: errInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock, err := pgxmock.NewPool()
			require.NoError(t, err)

			current := testLookup(5, "Verse")
			updated := current
			updated.Name = "Poetry"
			updated.UpdatedAt = current.UpdatedAt.Add(time.Second)

			begin := mock.ExpectBegin()
			switch tt.fail {
			case failBegin:
				begin.WillReturnError(errInternal)
			case failCheck:
				mock.ExpectQuery(`SELECT .* FROM "category" .* FOR UPDATE`).WillReturnRows(lookupRows(current))
				mock.ExpectRollback()
			case failQuery:
				mock.ExpectQuery(`SELECT .* FROM "category" .* FOR UPDATE`).WillReturnRows(lookupRows(current))
				mock.ExpectQuery(`UPDATE "category" SET`).WillReturnError(errInternal)
				mock.ExpectRollback()
			default:
				mock.ExpectQuery(`SELECT .* FROM "category" .* FOR UPDATE`).WillReturnRows(lookupRows(current))
				mock.ExpectQuery(`UPDATE "category" SET`).WillReturnRows(lookupRows(updated))
				mock.ExpectCommit()
			}

			store := NewPostgres[entity.Lookup](nil, mock, "category")
			got, err := store.Update(context.Background(), current.ID, tt.mutate, tt.guard...)
			require.NoError(t, mock.ExpectationsWereMet())
			if tt.errRequire != nil {
				require.ErrorIs(t, err, tt.errRequire)
				return
			}
			require.NoError(t, err)
			require.Equal(t, updated, got)
		})
	}
}

func Test_postgresStore_Update_inOuterTx(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	ctx := withOuterTx(context.Background(), mock)
	current := testLookup(2, "Eco")
	mock.ExpectQuery(`SELECT .* FOR UPDATE`).WillReturnRows(lookupRows(current))
	mock.ExpectQuery(`UPDATE "author" SET`).WillReturnRows(lookupRows(current))

	store := NewPostgres[entity.Lookup](nil, mock, "author")
	_, err = store.Update(ctx, current.ID, func(*entity.Lookup) error { return nil })
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func Test_postgresStore_SetActive(t *testing.T) {
	t.Parallel()

	t.Run("changes state", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)

		off := testLookup(4, "Calvino")
		off.Active = false
		mock.ExpectQuery(`UPDATE "author" SET`).WillReturnRows(lookupRows(off))

		store := NewPostgres[entity.Lookup](nil, mock, "author")
		got, err := store.SetActive(context.Background(), 4, false)
		require.NoError(t, err)
		require.Equal(t, off, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already in state", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)

		on := testLookup(4, "Calvino")
		mock.ExpectQuery(`UPDATE "author" SET`).WillReturnRows(lookupRows())
		mock.ExpectQuery(`SELECT .* FROM "author"`).WillReturnRows(lookupRows(on))

		store := NewPostgres[entity.Lookup](nil, mock, "author")
		got, err := store.SetActive(context.Background(), 4, true)
		require.NoError(t, err)
		require.Equal(t, on, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func Test_postgresStore_List(t *testing.T) {
	t.Parallel()

	t.Run("window and total", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)

		items := []entity.Lookup{testLookup(3, "Austen"), testLookup(1, "Borges")}
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "author" WHERE`).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))
		mock.ExpectQuery(`SELECT .* FROM "author" WHERE .* ORDER BY "name" ASC, "id" ASC LIMIT`).
			WillReturnRows(lookupRows(items...))

		store := NewPostgres[entity.Lookup](nil, mock, "author")
		got, total, err := store.List(context.Background(), query.Query{
			Where:  query.All(query.Eq("active", true), query.Contains("o", "name")),
			Order:  []query.Order{{Field: "name"}, {Field: "id"}},
			Offset: 2,
			Limit:  2,
		})
		require.NoError(t, err)
		require.Equal(t, 7, total)
		require.Equal(t, items, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown column", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)

		store := NewPostgres[entity.Lookup](nil, mock, "author")
		_, _, err = store.List(context.Background(), query.Query{Where: query.Eq("password", "x")})
		require.ErrorIs(t, err, entity.ErrValidation)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func Test_toExpression(t *testing.T) {
	t.Parallel()

	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	cond := query.All(
		query.IsNull("return_date"),
		query.Lt("return_due", due),
		query.Contains("50%_off", "name", "isbn"),
	)

	stmt, _, err := dialect.From("loan").Where(toExpression(cond)).ToSQL()
	require.NoError(t, err)
	require.Contains(t, stmt, `"return_date" IS NULL`)
	require.Contains(t, stmt, `"return_due" < '2024-05-01`)
	require.Contains(t, stmt, `"name" ILIKE`)
	require.Contains(t, stmt, `"isbn" ILIKE`)
	require.Contains(t, stmt, " OR ")

	require.Nil(t, toExpression(nil))
	require.Equal(t, `50\%\_off`, escapeLike("50%_off"))
}
