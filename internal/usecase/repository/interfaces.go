package repository

import (
	"context"
	"errors"
	"time"

	"github.com/project/librarydesk/internal/usecase/query"
)

// ErrConditionNotMet is returned by a guarded Update when the stored
// record no longer satisfies the guard. Nothing is written.
var ErrConditionNotMet = errors.New("record does not satisfy update condition")

type (
	// Store keeps records of one collection. Returned values are copies.
	Store[T any] interface {
		Create(ctx context.Context, record T) (T, error)
		Get(ctx context.Context, id int64) (T, error)
		Update(ctx context.Context, id int64, mutate func(*T) error, guard ...query.Condition) (T, error)
		SetActive(ctx context.Context, id int64, active bool) (T, error)
		List(ctx context.Context, q query.Query) ([]T, int, error)
		Count(ctx context.Context, where query.Condition) (int, error)
	}

	OutboxRepository interface {
		SendMessage(ctx context.Context, idempotencyKey string, kind OutboxKind, message []byte) error
		GetMessages(ctx context.Context, batchSize int, inProgressTTL time.Duration) ([]OutboxData, error)
		MarkAs(ctx context.Context, idempotencyKeys []string, s Status) error
	}

	OutboxData struct {
		IdempotencyKey string
		Kind           OutboxKind
		RawData        []byte
	}

	Transactor interface {
		WithTx(ctx context.Context, function func(ctx context.Context) error) error
	}
)

type OutboxKind int

const (
	OutboxKindUndefined OutboxKind = iota
	OutboxKindAuthor
	OutboxKindPublisher
	OutboxKindCategory
	OutboxKindBook
	OutboxKindUser
	OutboxKindLoan
)

func (o OutboxKind) String() string {
	switch o {
	case OutboxKindAuthor:
		return "author"
	case OutboxKindPublisher:
		return "publisher"
	case OutboxKindCategory:
		return "category"
	case OutboxKindBook:
		return "book"
	case OutboxKindUser:
		return "user"
	case OutboxKindLoan:
		return "loan"
	default:
		return "undefined"
	}
}
