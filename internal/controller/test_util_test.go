package controller

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/project/librarydesk/internal/controller/mocks"
	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/usecase/library"
	"github.com/project/librarydesk/internal/usecase/loan"
	"github.com/project/librarydesk/internal/usecase/query"
	"github.com/project/librarydesk/internal/usecase/repository"
	"github.com/project/librarydesk/pkg/credential"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var errInternal = errors.New("internal error")

// newTestServer serves the full API over in-memory stores.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	stores := library.Stores{
		Authors:    repository.NewMemory[entity.Lookup]("author"),
		Publishers: repository.NewMemory[entity.Lookup]("publisher"),
		Categories: repository.NewMemory[entity.Lookup]("category"),
		Books:      repository.NewMemory[entity.Book]("book", "isbn"),
		Users:      repository.NewMemory[entity.User]("user", "email"),
		Loans:      repository.NewMemory[entity.Loan]("loan"),
	}
	pager := query.NewPager(query.DefaultLimit, query.MaxLimit)
	lib := library.New(zap.NewNop(), stores, repository.NopOutbox{}, repository.NopTransactor{},
		credential.NewBcrypt(bcrypt.MinCost), pager)
	loans := loan.New(zap.NewNop(), stores.Loans, lib, repository.NopOutbox{}, repository.NopTransactor{},
		pager, loan.DefaultPeriod)

	srv := httptest.NewServer(New(zap.NewNop(), lib, lib, lib, loans, nil).Handler(nil))
	t.Cleanup(srv.Close)
	return srv
}

func InitBooksTest(t *testing.T) (*mocks.MockBooksUseCase, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	booksUseCase := mocks.NewMockBooksUseCase(ctrl)
	service := New(zap.NewNop(), nil, booksUseCase, nil, nil, nil)
	return booksUseCase, service.Handler(nil)
}

// call sends body as JSON and decodes the response into out when out is not nil.
func call(t *testing.T, srv *httptest.Server, method, path string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}
