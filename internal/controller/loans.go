package controller

import (
	"net/http"
	"time"

	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/log"
)

type issueLoanRequest struct {
	UserID    int64      `json:"userId" validate:"required,gt=0"`
	BookID    int64      `json:"bookId" validate:"required,gt=0"`
	LoanDate  *time.Time `json:"loanDate"`
	ReturnDue *time.Time `json:"returnDue"`
}

type updateLoanRequest struct {
	ReturnDate *time.Time `json:"returnDate"`
	Active     *bool      `json:"active"`
}

func (i *implementation) IssueLoan(w http.ResponseWriter, r *http.Request) {
	defer observe(log.IssueLoan, time.Now())

	var req issueLoanRequest
	if err := decode(w, r, &req); err != nil {
		i.rejectRequest(w, r, log.IssueLoan, err)
		return
	}

	loan, err := i.loansUseCase.Issue(r.Context(), entity.LoanInput{
		UserID:    &req.UserID,
		BookID:    &req.BookID,
		LoanDate:  req.LoanDate,
		ReturnDue: req.ReturnDue,
	})
	i.respond(w, r, http.StatusCreated, loan, err)
}

func (i *implementation) GetLoan(w http.ResponseWriter, r *http.Request) {
	defer observe(log.GetLoan, time.Now())

	id, err := pathID(r)
	if err != nil {
		i.rejectRequest(w, r, log.GetLoan, err)
		return
	}

	loan, err := i.loansUseCase.Get(r.Context(), id)
	i.respond(w, r, http.StatusOK, loan, err)
}

// UpdateLoan marks the loan returned unless the body only carries active.
func (i *implementation) UpdateLoan(w http.ResponseWriter, r *http.Request) {
	defer observe(log.UpdateLoan, time.Now())

	id, err := pathID(r)
	if err != nil {
		i.rejectRequest(w, r, log.UpdateLoan, err)
		return
	}
	var req updateLoanRequest
	if r.ContentLength != 0 {
		if err = decode(w, r, &req); err != nil {
			i.rejectRequest(w, r, log.UpdateLoan, err)
			return
		}
	}

	loan, err := i.loansUseCase.Update(r.Context(), id, entity.LoanInput{
		ReturnDate: req.ReturnDate,
		Active:     req.Active,
	})
	i.respond(w, r, http.StatusOK, loan, err)
}

func (i *implementation) DeactivateLoan(w http.ResponseWriter, r *http.Request) {
	defer observe(log.DeactivateLoan, time.Now())

	id, err := pathID(r)
	if err != nil {
		i.rejectRequest(w, r, log.DeactivateLoan, err)
		return
	}

	loan, err := i.loansUseCase.Deactivate(r.Context(), id)
	i.respond(w, r, http.StatusOK, loan, err)
}

func (i *implementation) RestoreLoan(w http.ResponseWriter, r *http.Request) {
	defer observe(log.RestoreLoan, time.Now())

	id, err := pathID(r)
	if err != nil {
		i.rejectRequest(w, r, log.RestoreLoan, err)
		return
	}

	loan, err := i.loansUseCase.Restore(r.Context(), id)
	i.respond(w, r, http.StatusOK, loan, err)
}

func (i *implementation) ListLoans(w http.ResponseWriter, r *http.Request) {
	defer observe(log.ListLoans, time.Now())

	params, err := loanParams.parse(r)
	if err != nil {
		i.rejectRequest(w, r, log.ListLoans, err)
		return
	}

	page, err := i.loansUseCase.List(r.Context(), params)
	i.respond(w, r, http.StatusOK, page, err)
}
