package loan

import (
	"math"
	"time"

	"github.com/project/librarydesk/internal/entity"
)

const day = 24 * time.Hour

// Classify derives the status of loan at now. Nothing here is stored.
//
// DaysLeft is the number of started days until the due date and turns
// negative once the loan is overdue; DaysOverdue is its absolute value
// for overdue loans and zero otherwise.
func Classify(loan entity.Loan, now time.Time) entity.LoanView {
	view := entity.LoanView{Loan: loan}
	if loan.Returned() {
		view.Status = entity.LoanReturned
		return view
	}

	view.DaysLeft = int(math.Ceil(float64(loan.ReturnDue.Sub(now)) / float64(day)))
	if now.After(loan.ReturnDue) {
		view.Status = entity.LoanOverdue
		view.DaysOverdue = -view.DaysLeft
		return view
	}

	view.Status = entity.LoanActive
	return view
}
