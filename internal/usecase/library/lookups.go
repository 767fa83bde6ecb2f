package library

import (
	"context"
	"strings"

	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/log"
	"github.com/project/librarydesk/internal/usecase/outbox"
	"github.com/project/librarydesk/internal/usecase/query"
	"github.com/project/librarydesk/internal/usecase/repository"
	"go.opentelemetry.io/otel/attribute"
)

func (l *libraryImpl) lookupStore(kind entity.LookupKind) (repository.Store[entity.Lookup], repository.OutboxKind, error) {
	switch kind {
	case entity.LookupAuthor:
		return l.stores.Authors, repository.OutboxKindAuthor, nil
	case entity.LookupPublisher:
		return l.stores.Publishers, repository.OutboxKindPublisher, nil
	case entity.LookupCategory:
		return l.stores.Categories, repository.OutboxKindCategory, nil
	default:
		return nil, repository.OutboxKindUndefined, entity.Invalidf("unknown lookup kind %d", kind)
	}
}

func (l *libraryImpl) CreateLookup(ctx context.Context, kind entity.LookupKind, name string) (entity.Lookup, error) {
	span, traceID := spanFrom(ctx)
	store, outboxKind, err := l.lookupStore(kind)
	if err != nil {
		return entity.Lookup{}, err
	}

	var created entity.Lookup
	err = l.transactor.WithTx(ctx, func(ctx context.Context) error {
		var txErr error
		created, txErr = store.Create(ctx, entity.Lookup{Name: strings.TrimSpace(name)})
		if txErr != nil {
			return txErr
		}
		return outbox.Publish(ctx, l.outboxRepository, outboxKind, outbox.Created, &created)
	})

	if log.ErrorRecord(l.logger, err, "Failed to create record", traceID, log.CreateLookup, kind.String()) {
		span.RecordError(err)
		return entity.Lookup{}, err
	}

	log.InfoRecord(l.logger, "Record created", traceID, log.CreateLookup, kind.String(), created.ID)
	span.SetAttributes(attribute.Int64(kind.String()+"_id", created.ID))
	return created, nil
}

func (l *libraryImpl) GetLookup(ctx context.Context, kind entity.LookupKind, id int64) (entity.Lookup, error) {
	_, traceID := spanFrom(ctx)
	store, _, err := l.lookupStore(kind)
	if err != nil {
		return entity.Lookup{}, err
	}

	lookup, err := store.Get(ctx, id)
	if log.ErrorRecord(l.logger, err, "Failed to get record", traceID, log.GetLookup, kind.String(), id) {
		return entity.Lookup{}, err
	}
	return lookup, nil
}

// UpdateLookup renames the record and applies the active flag when given.
// An empty input returns the stored record unchanged.
func (l *libraryImpl) UpdateLookup(ctx context.Context, kind entity.LookupKind, id int64, in entity.LookupInput) (entity.Lookup, error) {
	span, traceID := spanFrom(ctx)
	store, outboxKind, err := l.lookupStore(kind)
	if err != nil {
		return entity.Lookup{}, err
	}

	if in.Name == nil && in.Active == nil {
		return l.GetLookup(ctx, kind, id)
	}

	var updated entity.Lookup
	err = l.transactor.WithTx(ctx, func(ctx context.Context) error {
		var txErr error
		if in.Name != nil {
			updated, txErr = store.Update(ctx, id, func(lookup *entity.Lookup) error {
				lookup.Name = strings.TrimSpace(*in.Name)
				return nil
			})
			if txErr != nil {
				return txErr
			}
			if txErr = outbox.Publish(ctx, l.outboxRepository, outboxKind, outbox.Updated, &updated); txErr != nil {
				return txErr
			}
		}
		if in.Active != nil {
			updated, txErr = setActive(ctx, l, store, outboxKind, id, *in.Active)
		}
		return txErr
	})

	if log.ErrorRecord(l.logger, err, "Failed to update record", traceID, log.UpdateLookup, kind.String(), id) {
		span.RecordError(err)
		return entity.Lookup{}, err
	}

	log.InfoRecord(l.logger, "Record updated", traceID, log.UpdateLookup, kind.String(), id)
	return updated, nil
}

func (l *libraryImpl) DeactivateLookup(ctx context.Context, kind entity.LookupKind, id int64) (entity.Lookup, error) {
	return l.switchLookup(ctx, kind, id, false, log.DeactivateLookup)
}

func (l *libraryImpl) RestoreLookup(ctx context.Context, kind entity.LookupKind, id int64) (entity.Lookup, error) {
	return l.switchLookup(ctx, kind, id, true, log.RestoreLookup)
}

func (l *libraryImpl) switchLookup(ctx context.Context, kind entity.LookupKind, id int64, active bool, action log.Action) (entity.Lookup, error) {
	span, traceID := spanFrom(ctx)
	store, outboxKind, err := l.lookupStore(kind)
	if err != nil {
		return entity.Lookup{}, err
	}

	lookup, err := setActive(ctx, l, store, outboxKind, id, active)
	if log.ErrorRecord(l.logger, err, "Failed to switch record state", traceID, action, kind.String(), id) {
		span.RecordError(err)
		return entity.Lookup{}, err
	}

	log.InfoRecord(l.logger, "Record state switched", traceID, action, kind.String(), id)
	return lookup, nil
}

func (l *libraryImpl) ListLookups(ctx context.Context, kind entity.LookupKind, params query.Params) (query.Page[entity.Lookup], error) {
	_, traceID := spanFrom(ctx)
	store, _, err := l.lookupStore(kind)
	if err != nil {
		return query.Page[entity.Lookup]{}, err
	}

	page, err := list(ctx, l, store, query.LookupSpec, params)
	if log.ErrorRecord(l.logger, err, "Failed to list records", traceID, log.ListLookups, kind.String()) {
		return query.Page[entity.Lookup]{}, err
	}

	log.InfoList(l.logger, "Records listed", traceID, log.ListLookups, kind.String(), page.Page, page.Limit, page.Total)
	return page, nil
}
