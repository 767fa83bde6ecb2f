package controller

import (
	"net/http"
	"time"

	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/log"
)

type bookRequest struct {
	ISBN          *string `json:"isbn" validate:"omitempty,min=1,max=32"`
	Name          *string `json:"name" validate:"omitempty,min=1,max=255"`
	AuthorID      *int64  `json:"authorId" validate:"omitempty,gt=0"`
	PublisherID   *int64  `json:"publisherId" validate:"omitempty,gt=0"`
	CategoryID    *int64  `json:"categoryId" validate:"omitempty,gt=0"`
	YearPublished *int    `json:"yearPublished" validate:"omitempty,gt=0"`
	NumPages      *int    `json:"numPages" validate:"omitempty,gt=0"`
	Active        *bool   `json:"active"`
}

func (b bookRequest) input() entity.BookInput {
	return entity.BookInput{
		ISBN:          b.ISBN,
		Name:          b.Name,
		AuthorID:      b.AuthorID,
		PublisherID:   b.PublisherID,
		CategoryID:    b.CategoryID,
		YearPublished: b.YearPublished,
		NumPages:      b.NumPages,
		Active:        b.Active,
	}
}

func (i *implementation) CreateBook(w http.ResponseWriter, r *http.Request) {
	defer observe(log.CreateBook, time.Now())

	var req bookRequest
	if err := decode(w, r, &req); err != nil {
		i.rejectRequest(w, r, log.CreateBook, err)
		return
	}

	book, err := i.booksUseCase.CreateBook(r.Context(), req.input())
	i.respond(w, r, http.StatusCreated, book, err)
}

func (i *implementation) GetBook(w http.ResponseWriter, r *http.Request) {
	defer observe(log.GetBook, time.Now())

	id, err := pathID(r)
	if err != nil {
		i.rejectRequest(w, r, log.GetBook, err)
		return
	}

	book, err := i.booksUseCase.GetBook(r.Context(), id)
	i.respond(w, r, http.StatusOK, book, err)
}

func (i *implementation) UpdateBook(w http.ResponseWriter, r *http.Request) {
	defer observe(log.UpdateBook, time.Now())

	id, err := pathID(r)
	if err != nil {
		i.rejectRequest(w, r, log.UpdateBook, err)
		return
	}
	var req bookRequest
	if err = decode(w, r, &req); err != nil {
		i.rejectRequest(w, r, log.UpdateBook, err)
		return
	}

	book, err := i.booksUseCase.UpdateBook(r.Context(), id, req.input())
	i.respond(w, r, http.StatusOK, book, err)
}

func (i *implementation) DeactivateBook(w http.ResponseWriter, r *http.Request) {
	defer observe(log.DeactivateBook, time.Now())

	id, err := pathID(r)
	if err != nil {
		i.rejectRequest(w, r, log.DeactivateBook, err)
		return
	}

	book, err := i.booksUseCase.DeactivateBook(r.Context(), id)
	i.respond(w, r, http.StatusOK, book, err)
}

func (i *implementation) RestoreBook(w http.ResponseWriter, r *http.Request) {
	defer observe(log.RestoreBook, time.Now())

	id, err := pathID(r)
	if err != nil {
		i.rejectRequest(w, r, log.RestoreBook, err)
		return
	}

	book, err := i.booksUseCase.RestoreBook(r.Context(), id)
	i.respond(w, r, http.StatusOK, book, err)
}

func (i *implementation) ListBooks(w http.ResponseWriter, r *http.Request) {
	defer observe(log.ListBooks, time.Now())

	params, err := bookParams.parse(r)
	if err != nil {
		i.rejectRequest(w, r, log.ListBooks, err)
		return
	}

	page, err := i.booksUseCase.ListBooks(r.Context(), params)
	i.respond(w, r, http.StatusOK, page, err)
}

func (i *implementation) ListInactiveBooks(w http.ResponseWriter, r *http.Request) {
	defer observe(log.ListInactiveBooks, time.Now())

	params, err := bookParams.parse(r)
	if err != nil {
		i.rejectRequest(w, r, log.ListInactiveBooks, err)
		return
	}

	page, err := i.booksUseCase.ListInactiveBooks(r.Context(), params)
	i.respond(w, r, http.StatusOK, page, err)
}

func (i *implementation) ActiveStats(w http.ResponseWriter, r *http.Request) {
	defer observe(log.ActiveStats, time.Now())

	stats, err := i.booksUseCase.ActiveStats(r.Context())
	i.respond(w, r, http.StatusOK, stats, err)
}
