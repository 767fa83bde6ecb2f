package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/usecase/query"
	"go.uber.org/zap"
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

	LoansUseCase interface {
		Issue(ctx context.Context, in entity.LoanInput) (entity.LoanView, error)
		Update(ctx context.Context, id int64, in entity.LoanInput) (entity.LoanView, error)
		Deactivate(ctx context.Context, id int64) (entity.LoanView, error)
		Restore(ctx context.Context, id int64) (entity.LoanView, error)
		Get(ctx context.Context, id int64) (entity.LoanView, error)
		List(ctx context.Context, params query.Params) (query.Page[entity.LoanView], error)
	}

	// Pinger reports whether the backing storage is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

const apiPrefix = "/api/v1"

type implementation struct {
	logger        *zap.Logger
	lookupUseCase LookupUseCase
	booksUseCase  BooksUseCase
	usersUseCase  UsersUseCase
	loansUseCase  LoansUseCase
	pinger        Pinger
}

func New(
	logger *zap.Logger,
	lookupUseCase LookupUseCase,
	booksUseCase BooksUseCase,
	usersUseCase UsersUseCase,
	loansUseCase LoansUseCase,
	pinger Pinger,
) *implementation {
	return &implementation{
		logger:        logger,
		lookupUseCase: lookupUseCase,
		booksUseCase:  booksUseCase,
		usersUseCase:  usersUseCase,
		loansUseCase:  loansUseCase,
		pinger:        pinger,
	}
}

var lookupResources = map[string]entity.LookupKind{
	"authors":    entity.LookupAuthor,
	"publishers": entity.LookupPublisher,
	"categories": entity.LookupCategory,
}

// Routes registers every endpoint on a new mux.
func (i *implementation) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	for resource, kind := range lookupResources {
		base := apiPrefix + "/" + resource
		mux.HandleFunc("GET "+base, i.listLookups(kind))
		mux.HandleFunc("GET "+base+"/{id}", i.getLookup(kind))
		mux.HandleFunc("POST "+base, i.createLookup(kind))
		mux.HandleFunc("PATCH "+base+"/{id}", i.updateLookup(kind))
		mux.HandleFunc("DELETE "+base+"/{id}", i.deactivateLookup(kind))
		mux.HandleFunc("PATCH "+base+"/restore/{id}", i.restoreLookup(kind))
	}

	mux.HandleFunc("GET "+apiPrefix+"/books", i.ListBooks)
	mux.HandleFunc("GET "+apiPrefix+"/books/inactive", i.ListInactiveBooks)
	mux.HandleFunc("GET "+apiPrefix+"/books/stats/active", i.ActiveStats)
	mux.HandleFunc("GET "+apiPrefix+"/books/{id}", i.GetBook)
	mux.HandleFunc("POST "+apiPrefix+"/books", i.CreateBook)
	mux.HandleFunc("PATCH "+apiPrefix+"/books/{id}", i.UpdateBook)
	mux.HandleFunc("DELETE "+apiPrefix+"/books/{id}", i.DeactivateBook)
	mux.HandleFunc("PATCH "+apiPrefix+"/books/restore/{id}", i.RestoreBook)

	mux.HandleFunc("GET "+apiPrefix+"/users", i.ListUsers)
	mux.HandleFunc("GET "+apiPrefix+"/users/{id}", i.GetUser)
	mux.HandleFunc("POST "+apiPrefix+"/users", i.CreateUser)
	mux.HandleFunc("PATCH "+apiPrefix+"/users/{id}", i.UpdateUser)
	mux.HandleFunc("DELETE "+apiPrefix+"/users/{id}", i.DeactivateUser)
	mux.HandleFunc("PATCH "+apiPrefix+"/users/restore/{id}", i.RestoreUser)

	mux.HandleFunc("GET "+apiPrefix+"/loans", i.ListLoans)
	mux.HandleFunc("GET "+apiPrefix+"/loans/{id}", i.GetLoan)
	mux.HandleFunc("POST "+apiPrefix+"/loans", i.IssueLoan)
	mux.HandleFunc("PATCH "+apiPrefix+"/loans/{id}", i.UpdateLoan)
	mux.HandleFunc("DELETE "+apiPrefix+"/loans/{id}", i.DeactivateLoan)
	mux.HandleFunc("PATCH "+apiPrefix+"/loans/restore/{id}", i.RestoreLoan)

	mux.HandleFunc("GET /healthz", i.Healthz)
	mux.HandleFunc("GET /readyz", i.Readyz)

	return mux
}

func (i *implementation) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (i *implementation) Readyz(w http.ResponseWriter, r *http.Request) {
	if i.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := i.pinger.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
