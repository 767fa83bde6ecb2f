package entity

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Loan struct {
	Base
	UserID     int64      `json:"userId" db:"user_id"`
	BookID     int64      `json:"bookId" db:"book_id"`
	LoanDate   time.Time  `json:"loanDate" db:"loan_date"`
	ReturnDue  time.Time  `json:"returnDue" db:"return_due"`
	ReturnDate *time.Time `json:"returnDate" db:"return_date"`
}

func (l *Loan) Fields() map[string]any {
	var returnDate any
	if l.ReturnDate != nil {
		returnDate = *l.ReturnDate
	}
	return map[string]any{
		"user_id":     l.UserID,
		"book_id":     l.BookID,
		"loan_date":   l.LoanDate,
		"return_due":  l.ReturnDue,
		"return_date": returnDate,
	}
}

var (
	errDueBeforeLoan    = errors.New("must be after loanDate")
	errReturnBeforeLoan = errors.New("must not be before loanDate")
)

func (l *Loan) Validate() error {
	return Invalid(validation.ValidateStruct(l,
		validation.Field(&l.UserID, validation.Required, validation.Min(int64(1))),
		validation.Field(&l.BookID, validation.Required, validation.Min(int64(1))),
		validation.Field(&l.LoanDate, validation.Required),
		validation.Field(&l.ReturnDue, validation.Required, validation.By(func(any) error {
			if !l.ReturnDue.After(l.LoanDate) {
				return errDueBeforeLoan
			}
			return nil
		})),
		validation.Field(&l.ReturnDate, validation.By(func(any) error {
			if l.ReturnDate != nil && l.ReturnDate.Before(l.LoanDate) {
				return errReturnBeforeLoan
			}
			return nil
		})),
	))
}

func (l *Loan) Returned() bool {
	return l.ReturnDate != nil
}

type LoanStatus string

const (
	LoanActive   LoanStatus = "ACTIVE"
	LoanOverdue  LoanStatus = "OVERDUE"
	LoanReturned LoanStatus = "RETURNED"
)

// LoanView is a stored loan plus its status derived at read time.
type LoanView struct {
	Loan
	Status      LoanStatus `json:"status"`
	DaysLeft    int        `json:"daysLeft"`
	DaysOverdue int        `json:"daysOverdue"`
}

type LoanInput struct {
	UserID     *int64
	BookID     *int64
	LoanDate   *time.Time
	ReturnDue  *time.Time
	ReturnDate *time.Time
	Active     *bool
}
