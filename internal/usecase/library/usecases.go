package library

import (
	"context"
	"time"

	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/usecase/outbox"
	"github.com/project/librarydesk/internal/usecase/query"
	"github.com/project/librarydesk/internal/usecase/repository"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type (
	Hasher interface {
		Hash(password string) (string, error)
	}

	// Stores groups the collections the use cases read and write.
	Stores struct {
		Authors    repository.Store[entity.Lookup]
		Publishers repository.Store[entity.Lookup]
		Categories repository.Store[entity.Lookup]
		Books      repository.Store[entity.Book]
		Users      repository.Store[entity.User]
		Loans      repository.Store[entity.Loan]
	}
)

var _ LookupUseCase = (*libraryImpl)(nil)
var _ BooksUseCase = (*libraryImpl)(nil)
var _ UsersUseCase = (*libraryImpl)(nil)

type libraryImpl struct {
	logger           *zap.Logger
	stores           Stores
	outboxRepository outbox.Sender
	transactor       repository.Transactor
	hasher           Hasher
	pager            query.Pager
	now              func() time.Time
}

func New(
	logger *zap.Logger,
	stores Stores,
	outboxRepository outbox.Sender,
	transactor repository.Transactor,
	hasher Hasher,
	pager query.Pager,
) *libraryImpl {
	return &libraryImpl{
		logger:           logger,
		stores:           stores,
		outboxRepository: outboxRepository,
		transactor:       transactor,
		hasher:           hasher,
		pager:            pager,
		now:              time.Now,
	}
}

func spanFrom(ctx context.Context) (trace.Span, string) {
	span := trace.SpanFromContext(ctx)
	return span, span.SpanContext().TraceID().String()
}

// setActive flips the flag and records the matching event in one transaction.
func setActive[T any, P interface {
	*T
	entity.Record
}](
	ctx context.Context,
	l *libraryImpl,
	store repository.Store[T],
	kind repository.OutboxKind,
	id int64,
	active bool,
) (T, error) {
	action := outbox.Deactivated
	if active {
		action = outbox.Restored
	}

	var rec T
	err := l.transactor.WithTx(ctx, func(ctx context.Context) error {
		var txErr error
		rec, txErr = store.SetActive(ctx, id, active)
		if txErr != nil {
			return txErr
		}
		return outbox.Publish(ctx, l.outboxRepository, kind, action, P(&rec))
	})
	if err != nil {
		return *new(T), err
	}
	return rec, nil
}

func list[T any](ctx context.Context, l *libraryImpl, store repository.Store[T], spec query.Spec, params query.Params) (query.Page[T], error) {
	q, err := l.pager.Build(spec, params, l.now())
	if err != nil {
		return query.Page[T]{}, err
	}

	items, total, err := store.List(ctx, q)
	if err != nil {
		return query.Page[T]{}, err
	}
	return query.NewPage(items, total, q), nil
}
