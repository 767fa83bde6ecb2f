package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/usecase/query"
	"github.com/project/librarydesk/pkg/logger"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	ErrForeignKeyViolation = "23503"
	ErrUniqueViolation     = "23505"
)

const bumpUpdatedAt = "GREATEST(now(), updated_at + interval '1 microsecond')"

var dialect = goqu.Dialect("postgres")

type (
	querier interface {
		Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
		Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	}

	Pool interface {
		querier
		GetterTx
	}
)

var _ Store[entity.Loan] = (*postgresStore[entity.Loan, *entity.Loan])(nil)

type postgresStore[T any, P record[T]] struct {
	logger  *zap.Logger
	db      Pool
	table   string
	columns []any
	known   map[string]struct{}
}

// NewPostgres returns a store backed by table. The table columns must match
// the db tags of T.
func NewPostgres[T any, P record[T]](logger *zap.Logger, db Pool, table string) *postgresStore[T, P] {
	names := lo.Keys(entity.Columns(P(new(T))))
	slices.Sort(names)

	return &postgresStore[T, P]{
		logger:  logger,
		db:      db,
		table:   table,
		columns: lo.Map(names, func(name string, _ int) any { return goqu.C(name) }),
		known:   lo.SliceToMap(names, func(name string) (string, struct{}) { return name, struct{}{} }),
	}
}

func (p *postgresStore[T, P]) Create(ctx context.Context, rec T) (T, error) {
	if err := P(&rec).Validate(); err != nil {
		return *new(T), err
	}

	row := goqu.Record{entity.ColumnActive: true}
	for column, v := range P(&rec).Fields() {
		row[column] = v
	}

	stmt, args, err := dialect.Insert(p.table).Prepared(true).
		Rows(row).
		Returning(p.columns...).
		ToSQL()
	if err != nil {
		return *new(T), err
	}

	created, err := p.queryOne(ctx, p.querier(ctx), stmt, args)
	if err != nil {
		return *new(T), p.convertErr(err)
	}
	return created, nil
}

func (p *postgresStore[T, P]) Get(ctx context.Context, id int64) (T, error) {
	stmt, args, err := dialect.From(p.table).Prepared(true).
		Select(p.columns...).
		Where(goqu.C(entity.ColumnID).Eq(id)).
		ToSQL()
	if err != nil {
		return *new(T), err
	}

	rec, err := p.queryOne(ctx, p.querier(ctx), stmt, args)
	if errors.Is(err, sql.ErrNoRows) {
		return *new(T), entity.NotFound(p.table, id)
	}
	if err != nil {
		return *new(T), err
	}
	return rec, nil
}

// Update locks the row, applies mutate and writes the result back in
// one transaction. It joins a transaction already present in ctx.
func (p *postgresStore[T, P]) Update(ctx context.Context, id int64, mutate func(*T) error, guard ...query.Condition) (T, error) {
	var updated T

	err := p.inTx(ctx, func(ctx context.Context, q querier) error {
		stmt, args, err := dialect.From(p.table).Prepared(true).
			Select(p.columns...).
			Where(goqu.C(entity.ColumnID).Eq(id)).
			ForUpdate(exp.Wait).
			ToSQL()
		if err != nil {
			return err
		}

		current, err := p.queryOne(ctx, q, stmt, args)
		if errors.Is(err, sql.ErrNoRows) {
			return entity.NotFound(p.table, id)
		}
		if err != nil {
			return err
		}

		if !query.Match(query.All(guard...), entity.Columns(P(&current))) {
			return fmt.Errorf("%s %d: %w", p.table, id, ErrConditionNotMet)
		}

		next := current
		if err = mutate(&next); err != nil {
			return err
		}
		*P(&next).Meta() = *P(&current).Meta()
		if err = P(&next).Validate(); err != nil {
			return err
		}

		set := goqu.Record{entity.ColumnUpdatedAt: goqu.L(bumpUpdatedAt)}
		for column, v := range P(&next).Fields() {
			set[column] = v
		}

		stmt, args, err = dialect.Update(p.table).Prepared(true).
			Set(set).
			Where(goqu.C(entity.ColumnID).Eq(id)).
			Returning(p.columns...).
			ToSQL()
		if err != nil {
			return err
		}

		updated, err = p.queryOne(ctx, q, stmt, args)
		return p.convertErr(err)
	})
	if err != nil {
		return *new(T), err
	}

	return updated, nil
}

func (p *postgresStore[T, P]) SetActive(ctx context.Context, id int64, active bool) (T, error) {
	stmt, args, err := dialect.Update(p.table).Prepared(true).
		Set(goqu.Record{
			entity.ColumnActive:    active,
			entity.ColumnUpdatedAt: goqu.L(bumpUpdatedAt),
		}).
		Where(
			goqu.C(entity.ColumnID).Eq(id),
			goqu.C(entity.ColumnActive).Neq(active),
		).
		Returning(p.columns...).
		ToSQL()
	if err != nil {
		return *new(T), err
	}

	rec, err := p.queryOne(ctx, p.querier(ctx), stmt, args)
	if errors.Is(err, sql.ErrNoRows) {
		// either missing or already in the requested state
		return p.Get(ctx, id)
	}
	if err != nil {
		return *new(T), err
	}
	return rec, nil
}

func (p *postgresStore[T, P]) List(ctx context.Context, q query.Query) ([]T, int, error) {
	where, err := p.expression(q.Where)
	if err != nil {
		return nil, 0, err
	}

	total, err := p.count(ctx, where)
	if err != nil {
		return nil, 0, err
	}

	ds := dialect.From(p.table).Prepared(true).Select(p.columns...)
	if where != nil {
		ds = ds.Where(where)
	}
	for _, o := range q.Order {
		if _, ok := p.known[o.Field]; !ok {
			return nil, 0, entity.Invalidf("unknown column %q", o.Field)
		}
		if o.Desc {
			ds = ds.OrderAppend(goqu.I(o.Field).Desc())
		} else {
			ds = ds.OrderAppend(goqu.I(o.Field).Asc())
		}
	}
	if q.Offset > 0 {
		ds = ds.Offset(uint(q.Offset))
	}
	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit))
	}

	stmt, args, err := ds.ToSQL()
	if err != nil {
		return nil, 0, err
	}

	rows, err := p.querier(ctx).Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (p *postgresStore[T, P]) Count(ctx context.Context, where query.Condition) (int, error) {
	expr, err := p.expression(where)
	if err != nil {
		return 0, err
	}
	return p.count(ctx, expr)
}

func (p *postgresStore[T, P]) count(ctx context.Context, where exp.Expression) (int, error) {
	ds := dialect.From(p.table).Prepared(true).Select(goqu.COUNT(goqu.Star()))
	if where != nil {
		ds = ds.Where(where)
	}

	stmt, args, err := ds.ToSQL()
	if err != nil {
		return 0, err
	}

	rows, err := p.querier(ctx).Query(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	total, err := pgx.CollectExactlyOneRow(rows, pgx.RowTo[int64])
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (p *postgresStore[T, P]) queryOne(ctx context.Context, q querier, stmt string, args []any) (T, error) {
	rows, err := q.Query(ctx, stmt, args...)
	if err != nil {
		return *new(T), err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
}

func (p *postgresStore[T, P]) querier(ctx context.Context) querier {
	if tx, err := extractTx(ctx); err == nil {
		return tx
	}
	return p.db
}

func (p *postgresStore[T, P]) inTx(ctx context.Context, function func(ctx context.Context, q querier) error) error {
	if tx, err := extractTx(ctx); err == nil {
		return function(ctx, tx)
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func(tx pgx.Tx, ctx context.Context) {
		err := tx.Rollback(ctx)
		if !errors.Is(err, pgx.ErrTxClosed) {
			logger.CheckError(err, p.logger, "failed rollback of tx", zap.String("table", p.table), zap.Error(err))
		}
	}(tx, ctx)

	if err = function(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *postgresStore[T, P]) convertErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case ErrUniqueViolation:
		return fmt.Errorf("%s violates %s: %w", p.table, pgErr.ConstraintName, entity.ErrConflict)
	case ErrForeignKeyViolation:
		return fmt.Errorf("%s violates %s: %w", p.table, pgErr.ConstraintName, entity.ErrReferential)
	default:
		return err
	}
}

func (p *postgresStore[T, P]) expression(c query.Condition) (exp.Expression, error) {
	for _, field := range query.Fields(c) {
		if _, ok := p.known[field]; !ok {
			return nil, entity.Invalidf("unknown column %q", field)
		}
	}
	return toExpression(c), nil
}

func toExpression(c query.Condition) exp.Expression {
	switch n := c.(type) {
	case query.Compare:
		col := goqu.C(n.Field)
		switch n.Op {
		case query.OpLt:
			return col.Lt(n.Value)
		case query.OpLte:
			return col.Lte(n.Value)
		case query.OpGt:
			return col.Gt(n.Value)
		case query.OpGte:
			return col.Gte(n.Value)
		default:
			return col.Eq(n.Value)
		}
	case query.Null:
		if n.IsNull {
			return goqu.C(n.Field).IsNull()
		}
		return goqu.C(n.Field).IsNotNull()
	case query.Search:
		pattern := "%" + escapeLike(n.Term) + "%"
		return goqu.Or(lo.Map(n.Fields, func(field string, _ int) exp.Expression {
			return goqu.C(field).ILike(pattern)
		})...)
	case query.And:
		return goqu.And(lo.Map(n, func(sub query.Condition, _ int) exp.Expression { return toExpression(sub) })...)
	case query.Or:
		return goqu.Or(lo.Map(n, func(sub query.Condition, _ int) exp.Expression { return toExpression(sub) })...)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
