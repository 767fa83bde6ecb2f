package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/log"
	"github.com/project/librarydesk/internal/usecase/outbox"
	"github.com/project/librarydesk/internal/usecase/query"
	"github.com/project/librarydesk/internal/usecase/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultPeriod is the loan length used when a loan is issued without a due date.
const DefaultPeriod = 14 * 24 * time.Hour

type (
	// Catalog resolves the records a loan points to.
	Catalog interface {
		GetUser(ctx context.Context, id int64) (entity.User, error)
		GetBook(ctx context.Context, id int64) (entity.Book, error)
	}

	UseCase interface {
		Issue(ctx context.Context, in entity.LoanInput) (entity.LoanView, error)
		MarkReturned(ctx context.Context, id int64, returnDate *time.Time) (entity.LoanView, error)
		Update(ctx context.Context, id int64, in entity.LoanInput) (entity.LoanView, error)
		Deactivate(ctx context.Context, id int64) (entity.LoanView, error)
		Restore(ctx context.Context, id int64) (entity.LoanView, error)
		Get(ctx context.Context, id int64) (entity.LoanView, error)
		List(ctx context.Context, params query.Params) (query.Page[entity.LoanView], error)
	}
)

var _ UseCase = (*engineImpl)(nil)

type engineImpl struct {
	logger           *zap.Logger
	loans            repository.Store[entity.Loan]
	catalog          Catalog
	outboxRepository outbox.Sender
	transactor       repository.Transactor
	pager            query.Pager
	period           time.Duration
	now              func() time.Time
}

func New(
	logger *zap.Logger,
	loans repository.Store[entity.Loan],
	catalog Catalog,
	outboxRepository outbox.Sender,
	transactor repository.Transactor,
	pager query.Pager,
	period time.Duration,
) *engineImpl {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &engineImpl{
		logger:           logger,
		loans:            loans,
		catalog:          catalog,
		outboxRepository: outboxRepository,
		transactor:       transactor,
		pager:            pager,
		period:           period,
		now:              time.Now,
	}
}

// Issue lends a book to a user. Both must exist and be active.
// Several open loans of the same book are allowed.
func (e *engineImpl) Issue(ctx context.Context, in entity.LoanInput) (entity.LoanView, error) {
	span := trace.SpanFromContext(ctx)
	traceID := span.SpanContext().TraceID().String()
	now := e.now()

	loan, err := e.draft(in, now)
	if log.ErrorLoan(e.logger, err, "Got invalid loan", traceID, log.IssueLoan, 0) {
		span.RecordError(err)
		return entity.LoanView{}, err
	}

	var created entity.Loan
	err = e.transactor.WithTx(ctx, func(ctx context.Context) error {
		if err := e.checkParties(ctx, loan.UserID, loan.BookID); err != nil {
			return err
		}

		var txErr error
		created, txErr = e.loans.Create(ctx, loan)
		if txErr != nil {
			return txErr
		}
		return outbox.Publish(ctx, e.outboxRepository, repository.OutboxKindLoan, outbox.Created, &created)
	})

	if log.ErrorLoan(e.logger, err, "Failed to issue loan", traceID, log.IssueLoan, 0) {
		span.RecordError(err)
		return entity.LoanView{}, err
	}

	if created.ReturnDue.Before(now) {
		log.WarnPastDue(e.logger, traceID, created.UserID, created.BookID, created.ReturnDue)
	}
	log.InfoLoan(e.logger, "Loan issued", traceID, log.IssueLoan, created.ID, created.UserID, created.BookID)
	span.SetAttributes(attribute.Int64("loan_id", created.ID))
	return Classify(created, now), nil
}

func (e *engineImpl) draft(in entity.LoanInput, now time.Time) (entity.Loan, error) {
	switch {
	case in.UserID == nil:
		return entity.Loan{}, entity.Invalidf("userId is required")
	case in.BookID == nil:
		return entity.Loan{}, entity.Invalidf("bookId is required")
	case in.ReturnDate != nil:
		return entity.Loan{}, entity.Invalidf("returnDate can not be set when issuing a loan")
	}

	loanDate := now
	if in.LoanDate != nil {
		loanDate = *in.LoanDate
	}
	returnDue := loanDate.Add(e.period)
	if in.ReturnDue != nil {
		returnDue = *in.ReturnDue
	}

	loan := entity.Loan{
		UserID:    *in.UserID,
		BookID:    *in.BookID,
		LoanDate:  loanDate.UTC().Truncate(time.Microsecond),
		ReturnDue: returnDue.UTC().Truncate(time.Microsecond),
	}
	return loan, loan.Validate()
}

func (e *engineImpl) checkParties(ctx context.Context, userID, bookID int64) error {
	user, err := e.catalog.GetUser(ctx, userID)
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return entity.Missing("userId", userID)
	case err != nil:
		return err
	case !user.Active:
		return entity.Inactive("userId", userID)
	}

	book, err := e.catalog.GetBook(ctx, bookID)
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return entity.Missing("bookId", bookID)
	case err != nil:
		return err
	case !book.Active:
		return entity.Inactive("bookId", bookID)
	}
	return nil
}

// MarkReturned closes an open loan. A nil returnDate means now.
// Returning a loan twice fails with ErrInvalidState.
func (e *engineImpl) MarkReturned(ctx context.Context, id int64, returnDate *time.Time) (entity.LoanView, error) {
	span := trace.SpanFromContext(ctx)
	traceID := span.SpanContext().TraceID().String()
	now := e.now()

	var returned entity.Loan
	err := e.transactor.WithTx(ctx, func(ctx context.Context) error {
		var txErr error
		returned, txErr = e.markReturned(ctx, id, returnDate, now)
		return txErr
	})

	if log.ErrorLoan(e.logger, err, "Failed to return loan", traceID, log.ReturnLoan, id) {
		span.RecordError(err)
		return entity.LoanView{}, err
	}

	log.InfoLoan(e.logger, "Loan returned", traceID, log.ReturnLoan, returned.ID, returned.UserID, returned.BookID)
	return Classify(returned, now), nil
}

func (e *engineImpl) markReturned(ctx context.Context, id int64, returnDate *time.Time, now time.Time) (entity.Loan, error) {
	at := now
	if returnDate != nil {
		at = *returnDate
	}
	at = at.UTC().Truncate(time.Microsecond)

	returned, err := e.loans.Update(ctx, id, func(loan *entity.Loan) error {
		loan.ReturnDate = &at
		return nil
	}, query.IsNull("return_date"))
	if errors.Is(err, repository.ErrConditionNotMet) {
		return entity.Loan{}, fmt.Errorf("loan %d is already returned: %w", id, entity.ErrInvalidState)
	}
	if err != nil {
		return entity.Loan{}, err
	}

	if err = outbox.Publish(ctx, e.outboxRepository, repository.OutboxKindLoan, outbox.Returned, &returned); err != nil {
		return entity.Loan{}, err
	}
	return returned, nil
}

// Update accepts only returnDate and active. A return is recorded when
// returnDate is given or when the input is empty.
func (e *engineImpl) Update(ctx context.Context, id int64, in entity.LoanInput) (entity.LoanView, error) {
	span := trace.SpanFromContext(ctx)
	traceID := span.SpanContext().TraceID().String()
	now := e.now()

	if in.UserID != nil || in.BookID != nil || in.LoanDate != nil || in.ReturnDue != nil {
		err := entity.Invalidf("only returnDate and active can be changed on a loan")
		log.ErrorLoan(e.logger, err, "Got invalid loan update", traceID, log.UpdateLoan, id)
		return entity.LoanView{}, err
	}

	var updated entity.Loan
	err := e.transactor.WithTx(ctx, func(ctx context.Context) error {
		var txErr error
		if in.ReturnDate != nil || in.Active == nil {
			if updated, txErr = e.markReturned(ctx, id, in.ReturnDate, now); txErr != nil {
				return txErr
			}
		}
		if in.Active != nil {
			updated, txErr = e.setActive(ctx, id, *in.Active)
		}
		return txErr
	})

	if log.ErrorLoan(e.logger, err, "Failed to update loan", traceID, log.UpdateLoan, id) {
		span.RecordError(err)
		return entity.LoanView{}, err
	}

	log.InfoLoan(e.logger, "Loan updated", traceID, log.UpdateLoan, updated.ID, updated.UserID, updated.BookID)
	return Classify(updated, now), nil
}

func (e *engineImpl) Deactivate(ctx context.Context, id int64) (entity.LoanView, error) {
	return e.switchLoan(ctx, id, false, log.DeactivateLoan)
}

func (e *engineImpl) Restore(ctx context.Context, id int64) (entity.LoanView, error) {
	return e.switchLoan(ctx, id, true, log.RestoreLoan)
}

func (e *engineImpl) switchLoan(ctx context.Context, id int64, active bool, action log.Action) (entity.LoanView, error) {
	span := trace.SpanFromContext(ctx)
	traceID := span.SpanContext().TraceID().String()

	var loan entity.Loan
	err := e.transactor.WithTx(ctx, func(ctx context.Context) error {
		var txErr error
		loan, txErr = e.setActive(ctx, id, active)
		return txErr
	})

	if log.ErrorLoan(e.logger, err, "Failed to switch loan state", traceID, action, id) {
		span.RecordError(err)
		return entity.LoanView{}, err
	}

	log.InfoLoan(e.logger, "Loan state switched", traceID, action, loan.ID, loan.UserID, loan.BookID)
	return Classify(loan, e.now()), nil
}

func (e *engineImpl) setActive(ctx context.Context, id int64, active bool) (entity.Loan, error) {
	loan, err := e.loans.SetActive(ctx, id, active)
	if err != nil {
		return entity.Loan{}, err
	}

	action := outbox.Deactivated
	if active {
		action = outbox.Restored
	}
	if err = outbox.Publish(ctx, e.outboxRepository, repository.OutboxKindLoan, action, &loan); err != nil {
		return entity.Loan{}, err
	}
	return loan, nil
}

func (e *engineImpl) Get(ctx context.Context, id int64) (entity.LoanView, error) {
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID().String()

	loan, err := e.loans.Get(ctx, id)
	if log.ErrorLoan(e.logger, err, "Failed to get loan", traceID, log.GetLoan, id) {
		return entity.LoanView{}, err
	}
	return Classify(loan, e.now()), nil
}

// List filters by the derived flags against the same instant used to
// classify the returned loans.
func (e *engineImpl) List(ctx context.Context, params query.Params) (query.Page[entity.LoanView], error) {
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID().String()
	now := e.now()

	q, err := e.pager.Build(query.LoanSpec, params, now)
	if log.ErrorLoan(e.logger, err, "Got invalid loan query", traceID, log.ListLoans, 0) {
		return query.Page[entity.LoanView]{}, err
	}

	loans, total, err := e.loans.List(ctx, q)
	if log.ErrorLoan(e.logger, err, "Failed to list loans", traceID, log.ListLoans, 0) {
		return query.Page[entity.LoanView]{}, err
	}

	page := query.MapPage(query.NewPage(loans, total, q), func(loan entity.Loan) entity.LoanView {
		return Classify(loan, now)
	})
	log.InfoList(e.logger, "Loans listed", traceID, log.ListLoans, "loan", page.Page, page.Limit, page.Total)
	return page, nil
}
