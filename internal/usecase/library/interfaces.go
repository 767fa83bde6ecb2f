package library

import (
	"context"

	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/usecase/query"
)

type (
	LookupUseCase interface {
		CreateLookup(ctx context.Context, kind entity.LookupKind, name string) (entity.Lookup, error)
		GetLookup(ctx context.Context, kind entity.LookupKind, id int64) (entity.Lookup, error)
		UpdateLookup(ctx context.Context, kind entity.LookupKind, id int64, in entity.LookupInput) (entity.Lookup, error)
		DeactivateLookup(ctx context.Context, kind entity.LookupKind, id int64) (entity.Lookup, error)
		RestoreLookup(ctx context.Context, kind entity.LookupKind, id int64) (entity.Lookup, error)
		ListLookups(ctx context.Context, kind entity.LookupKind, params query.Params) (query.Page[entity.Lookup], error)
	}

	BooksUseCase interface {
		CreateBook(ctx context.Context, in entity.BookInput) (entity.Book, error)
		GetBook(ctx context.Context, id int64) (entity.Book, error)
		UpdateBook(ctx context.Context, id int64, in entity.BookInput) (entity.Book, error)
		DeactivateBook(ctx context.Context, id int64) (entity.Book, error)
		RestoreBook(ctx context.Context, id int64) (entity.Book, error)
		ListBooks(ctx context.Context, params query.Params) (query.Page[entity.Book], error)
		ListInactiveBooks(ctx context.Context, params query.Params) (query.Page[entity.Book], error)
		ActiveStats(ctx context.Context) (entity.ActiveStats, error)
	}

	UsersUseCase interface {
		CreateUser(ctx context.Context, in entity.UserInput) (entity.User, error)
		GetUser(ctx context.Context, id int64) (entity.User, error)
		UpdateUser(ctx context.Context, id int64, in entity.UserInput) (entity.User, error)
		DeactivateUser(ctx context.Context, id int64) (entity.User, error)
		RestoreUser(ctx context.Context, id int64) (entity.User, error)
		ListUsers(ctx context.Context, params query.Params) (query.Page[entity.User], error)
	}
)
