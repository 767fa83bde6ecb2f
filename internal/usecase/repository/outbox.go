package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/project/librarydesk/pkg/logger"
	"go.uber.org/zap"
)

type Status uint

const (
	Created Status = iota
	InProgress
	Success
	Abandoned
)

func (s Status) String() string {
	switch s {
	case Created:
		return "CREATED"
	case InProgress:
		return "IN_PROGRESS"
	case Success:
		return "SUCCESS"
	case Abandoned:
		return "ABANDONED"
	}
	panic("unreachable")
}

const outboxTable = "outbox"

const (
	columnKey       = "idempotency_key"
	columnData      = "data"
	columnStatus    = "status"
	columnKind      = "kind"
	columnAttempts  = "attempts"
	columnCreatedAt = "created_at"
	columnUpdatedAt = "updated_at"
)

var _ OutboxRepository = (*outboxRepository)(nil)

type outboxRepository struct {
	logger        *zap.Logger
	db            querier
	attemptsRetry int
}

func NewOutbox(logger *zap.Logger, db querier, attemptsRetry int) *outboxRepository {
	return &outboxRepository{
		logger:        logger,
		db:            db,
		attemptsRetry: attemptsRetry,
	}
}

// SendMessage stores a message in the CREATED state. A repeated key is
// ignored.
func (o *outboxRepository) SendMessage(ctx context.Context, idempotencyKey string, kind OutboxKind, message []byte) error {
	stmt, args, err := dialect.Insert(outboxTable).Prepared(true).
		Rows(goqu.Record{
			columnKey:      idempotencyKey,
			columnData:     message,
			columnStatus:   Created.String(),
			columnKind:     int(kind),
			columnAttempts: 0,
		}).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return err
	}

	_, err = o.querier(ctx).Exec(ctx, stmt, args...)
	if logger.CheckError(err, o.logger, "can not store outbox message",
		zap.String("idempotency_key", idempotencyKey),
		zap.Stringer("kind", kind),
		zap.Error(err)) {
		return err
	}

	return nil
}

// GetMessages claims up to batchSize messages that are new or whose
// claim is older than inProgressTTL, oldest first.
func (o *outboxRepository) GetMessages(ctx context.Context, batchSize int, inProgressTTL time.Duration) ([]OutboxData, error) {
	interval := fmt.Sprintf("%d ms", inProgressTTL.Milliseconds())

	claimable := dialect.From(outboxTable).
		Select(columnKey).
		Where(goqu.Or(
			goqu.C(columnStatus).Eq(Created.String()),
			goqu.And(
				goqu.C(columnStatus).Eq(InProgress.String()),
				goqu.C(columnUpdatedAt).Lt(goqu.L("now() - ?::interval", interval)),
			),
		)).
		Order(goqu.C(columnCreatedAt).Asc()).
		Limit(uint(batchSize)).
		ForUpdate(exp.SkipLocked)

	stmt, args, err := dialect.Update(outboxTable).Prepared(true).
		Set(goqu.Record{
			columnStatus:    InProgress.String(),
			columnUpdatedAt: goqu.L("now()"),
		}).
		Where(goqu.C(columnKey).In(claimable)).
		Returning(columnKey, columnData, columnKind).
		ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := o.querier(ctx).Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	result := make([]OutboxData, 0, batchSize)

	for rows.Next() {
		var (
			data OutboxData
			kind int
		)

		if err := rows.Scan(&data.IdempotencyKey, &data.RawData, &kind); err != nil {
			return nil, err
		}
		data.Kind = OutboxKind(kind)

		result = append(result, data)
	}

	return result, rows.Err()
}

// MarkAs moves messages to s. A failed message returned to CREATED is
// abandoned once it has used up its attempts.
func (o *outboxRepository) MarkAs(ctx context.Context, idempotencyKeys []string, s Status) error {
	if len(idempotencyKeys) == 0 {
		return nil
	}

	const query = `
UPDATE outbox
SET 
    status = CASE 
        WHEN status = 'IN_PROGRESS' 
        AND $1::outbox_status = 'CREATED' 
        AND attempts + 1 >= $3 THEN 'ABANDONED'
        ELSE $1::outbox_status 
    END,
    attempts = CASE 
        WHEN status = 'IN_PROGRESS' 
        AND ($1::outbox_status = 'CREATED' 
        OR $1::outbox_status = 'SUCCESS') THEN attempts + 1 
        ELSE attempts 
    END,
    updated_at = now()
WHERE idempotency_key = ANY($2)
`

	_, err := o.querier(ctx).Exec(ctx, query, s.String(), idempotencyKeys, o.attemptsRetry)
	return err
}

func (o *outboxRepository) querier(ctx context.Context) querier {
	if tx, err := extractTx(ctx); err == nil {
		return tx
	}
	return o.db
}

var _ OutboxRepository = NopOutbox{}

// NopOutbox drops every message. It is used when events are not persisted.
type NopOutbox struct{}

func (NopOutbox) SendMessage(context.Context, string, OutboxKind, []byte) error {
	return nil
}

func (NopOutbox) GetMessages(context.Context, int, time.Duration) ([]OutboxData, error) {
	return nil, nil
}

func (NopOutbox) MarkAs(context.Context, []string, Status) error {
	return nil
}
