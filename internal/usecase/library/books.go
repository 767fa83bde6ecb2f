package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/log"
	"github.com/project/librarydesk/internal/usecase/outbox"
	"github.com/project/librarydesk/internal/usecase/query"
	"github.com/project/librarydesk/internal/usecase/repository"
	"go.opentelemetry.io/otel/attribute"
)

const bookKind = "book"

func (l *libraryImpl) CreateBook(ctx context.Context, in entity.BookInput) (entity.Book, error) {
	span, traceID := spanFrom(ctx)

	book := entity.Book{}
	applyBookInput(&book, in)
	if err := book.Validate(); log.ErrorRecord(l.logger, err, "Got invalid book", traceID, log.CreateBook, bookKind) {
		span.RecordError(err)
		return entity.Book{}, err
	}

	var created entity.Book
	err := l.transactor.WithTx(ctx, func(ctx context.Context) error {
		if err := l.checkISBN(ctx, book.ISBN); err != nil {
			return err
		}
		if err := l.checkBookRefs(ctx, in); err != nil {
			return err
		}

		var txErr error
		created, txErr = l.stores.Books.Create(ctx, book)
		if txErr != nil {
			return txErr
		}
		return outbox.Publish(ctx, l.outboxRepository, repository.OutboxKindBook, outbox.Created, &created)
	})

	if log.ErrorRecord(l.logger, err, "Failed to create book", traceID, log.CreateBook, bookKind) {
		span.RecordError(err)
		return entity.Book{}, err
	}

	log.InfoRecord(l.logger, "Book created", traceID, log.CreateBook, bookKind, created.ID)
	span.SetAttributes(attribute.Int64("book_id", created.ID))
	return created, nil
}

func (l *libraryImpl) GetBook(ctx context.Context, id int64) (entity.Book, error) {
	_, traceID := spanFrom(ctx)

	book, err := l.stores.Books.Get(ctx, id)
	if log.ErrorRecord(l.logger, err, "Failed to get book", traceID, log.GetBook, bookKind, id) {
		return entity.Book{}, err
	}
	return book, nil
}

// UpdateBook applies the fields present in the input. Every reference
// present is checked again even when it did not change.
func (l *libraryImpl) UpdateBook(ctx context.Context, id int64, in entity.BookInput) (entity.Book, error) {
	span, traceID := spanFrom(ctx)

	var updated entity.Book
	err := l.transactor.WithTx(ctx, func(ctx context.Context) error {
		current, err := l.stores.Books.Get(ctx, id)
		if err != nil {
			return err
		}
		updated = current

		if in.ISBN != nil && strings.TrimSpace(*in.ISBN) != current.ISBN {
			if err = l.checkISBN(ctx, strings.TrimSpace(*in.ISBN)); err != nil {
				return err
			}
		}
		if err = l.checkBookRefs(ctx, in); err != nil {
			return err
		}

		if hasBookFields(in) {
			updated, err = l.stores.Books.Update(ctx, id, func(book *entity.Book) error {
				applyBookInput(book, in)
				return nil
			})
			if err != nil {
				return err
			}
			if err = outbox.Publish(ctx, l.outboxRepository, repository.OutboxKindBook, outbox.Updated, &updated); err != nil {
				return err
			}
		}

		if in.Active != nil {
			updated, err = setActive(ctx, l, l.stores.Books, repository.OutboxKindBook, id, *in.Active)
		}
		return err
	})

	if log.ErrorRecord(l.logger, err, "Failed to update book", traceID, log.UpdateBook, bookKind, id) {
		span.RecordError(err)
		return entity.Book{}, err
	}

	log.InfoRecord(l.logger, "Book updated", traceID, log.UpdateBook, bookKind, id)
	return updated, nil
}

func (l *libraryImpl) DeactivateBook(ctx context.Context, id int64) (entity.Book, error) {
	return l.switchBook(ctx, id, false, log.DeactivateBook)
}

func (l *libraryImpl) RestoreBook(ctx context.Context, id int64) (entity.Book, error) {
	return l.switchBook(ctx, id, true, log.RestoreBook)
}

func (l *libraryImpl) switchBook(ctx context.Context, id int64, active bool, action log.Action) (entity.Book, error) {
	span, traceID := spanFrom(ctx)

	book, err := setActive(ctx, l, l.stores.Books, repository.OutboxKindBook, id, active)
	if log.ErrorRecord(l.logger, err, "Failed to switch book state", traceID, action, bookKind, id) {
		span.RecordError(err)
		return entity.Book{}, err
	}

	log.InfoRecord(l.logger, "Book state switched", traceID, action, bookKind, id)
	return book, nil
}

// ListBooks lists active books unless the caller asks otherwise.
func (l *libraryImpl) ListBooks(ctx context.Context, params query.Params) (query.Page[entity.Book], error) {
	if params.Active == nil {
		active := true
		params.Active = &active
	}
	return l.listBooks(ctx, params, log.ListBooks)
}

func (l *libraryImpl) ListInactiveBooks(ctx context.Context, params query.Params) (query.Page[entity.Book], error) {
	inactive := false
	params.Active = &inactive
	return l.listBooks(ctx, params, log.ListInactiveBooks)
}

func (l *libraryImpl) listBooks(ctx context.Context, params query.Params, action log.Action) (query.Page[entity.Book], error) {
	_, traceID := spanFrom(ctx)

	page, err := list(ctx, l, l.stores.Books, query.BookSpec, params)
	if log.ErrorRecord(l.logger, err, "Failed to list books", traceID, action, bookKind) {
		return query.Page[entity.Book]{}, err
	}

	log.InfoList(l.logger, "Books listed", traceID, action, bookKind, page.Page, page.Limit, page.Total)
	return page, nil
}

// ActiveStats counts active books and active loans that are not returned yet.
func (l *libraryImpl) ActiveStats(ctx context.Context) (entity.ActiveStats, error) {
	_, traceID := spanFrom(ctx)

	books, err := l.stores.Books.Count(ctx, query.Eq(entity.ColumnActive, true))
	if log.ErrorRecord(l.logger, err, "Failed to count books", traceID, log.ActiveStats, bookKind) {
		return entity.ActiveStats{}, err
	}

	loans, err := l.stores.Loans.Count(ctx, query.All(
		query.Eq(entity.ColumnActive, true),
		query.IsNull("return_date"),
	))
	if log.ErrorRecord(l.logger, err, "Failed to count loans", traceID, log.ActiveStats, "loan") {
		return entity.ActiveStats{}, err
	}

	return entity.ActiveStats{Books: books, Loans: loans}, nil
}

func (l *libraryImpl) checkISBN(ctx context.Context, isbn string) error {
	n, err := l.stores.Books.Count(ctx, query.Eq("isbn", isbn))
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("isbn %q is already taken: %w", isbn, entity.ErrConflict)
	}
	return nil
}

func (l *libraryImpl) checkBookRefs(ctx context.Context, in entity.BookInput) error {
	refs := []struct {
		field string
		id    *int64
		store repository.Store[entity.Lookup]
	}{
		{field: "authorId", id: in.AuthorID, store: l.stores.Authors},
		{field: "publisherId", id: in.PublisherID, store: l.stores.Publishers},
		{field: "categoryId", id: in.CategoryID, store: l.stores.Categories},
	}

	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		if err := checkActive(ctx, ref.store, ref.field, *ref.id); err != nil {
			return err
		}
	}
	return nil
}

// checkActive resolves id in store and fails with a ReferentialError
// naming field when the record is missing or deactivated.
func checkActive[T any, P interface {
	*T
	entity.Record
}](ctx context.Context, store repository.Store[T], field string, id int64) error {
	rec, err := store.Get(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return entity.Missing(field, id)
	}
	if err != nil {
		return err
	}
	if !P(&rec).Meta().Active {
		return entity.Inactive(field, id)
	}
	return nil
}

func hasBookFields(in entity.BookInput) bool {
	return in.ISBN != nil || in.Name != nil || in.AuthorID != nil || in.PublisherID != nil ||
		in.CategoryID != nil || in.YearPublished != nil || in.NumPages != nil
}

func applyBookInput(book *entity.Book, in entity.BookInput) {
	if in.ISBN != nil {
		book.ISBN = strings.TrimSpace(*in.ISBN)
	}
	if in.Name != nil {
		book.Name = strings.TrimSpace(*in.Name)
	}
	if in.AuthorID != nil {
		book.AuthorID = *in.AuthorID
	}
	if in.PublisherID != nil {
		book.PublisherID = *in.PublisherID
	}
	if in.CategoryID != nil {
		book.CategoryID = *in.CategoryID
	}
	if in.YearPublished != nil {
		book.YearPublished = *in.YearPublished
	}
	if in.NumPages != nil {
		book.NumPages = *in.NumPages
	}
}
