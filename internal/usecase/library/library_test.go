package library

import (
	"context"
	"errors"
	"testing"

	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/usecase/query"
	"github.com/project/librarydesk/internal/usecase/repository"
	"github.com/project/librarydesk/pkg/credential"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var errInternal = errors.New("internal error")

func newStores() Stores {
	return Stores{
		Authors:    repository.NewMemory[entity.Lookup]("author"),
		Publishers: repository.NewMemory[entity.Lookup]("publisher"),
		Categories: repository.NewMemory[entity.Lookup]("category"),
		Books:      repository.NewMemory[entity.Book]("book", "isbn"),
		Users:      repository.NewMemory[entity.User]("user", "email"),
		Loans:      repository.NewMemory[entity.Loan]("loan"),
	}
}

func initLibraryTest(t *testing.T) (context.Context, *libraryImpl) {
	t.Helper()
	lib := New(
		zap.NewNop(),
		newStores(),
		repository.NopOutbox{},
		repository.NopTransactor{},
		credential.NewBcrypt(bcrypt.MinCost),
		query.NewPager(query.DefaultLimit, query.MaxLimit),
	)
	return context.Background(), lib
}

type catalogRefs struct {
	author, publisher, category int64
}

func seedRefs(t *testing.T, ctx context.Context, lib *libraryImpl) catalogRefs {
	t.Helper()
	author, err := lib.CreateLookup(ctx, entity.LookupAuthor, "Ursula K. Le Guin")
	require.NoError(t, err)
	publisher, err := lib.CreateLookup(ctx, entity.LookupPublisher, "Ace Books")
	require.NoError(t, err)
	category, err := lib.CreateLookup(ctx, entity.LookupCategory, "Science fiction")
	require.NoError(t, err)
	return catalogRefs{author: author.ID, publisher: publisher.ID, category: category.ID}
}

func bookInput(isbn string, refs catalogRefs) entity.BookInput {
	return entity.BookInput{
		ISBN:          ptr(isbn),
		Name:          ptr("The Left Hand of Darkness"),
		AuthorID:      ptr(refs.author),
		PublisherID:   ptr(refs.publisher),
		CategoryID:    ptr(refs.category),
		YearPublished: ptr(1969),
		NumPages:      ptr(286),
	}
}

func ptr[T any](v T) *T {
	return &v
}
