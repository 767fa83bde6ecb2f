package log

import (
	"time"

	"github.com/project/librarydesk/pkg/logger"
	"go.uber.org/zap"
)

func InfoLoan(l *zap.Logger, msg string, traceID string, action Action, loanID, userID, bookID int64) {
	logger.MakeInfo(l, msg,
		zap.String("trace_id", traceID),
		zap.Int64("loan_id", loanID),
		zap.Int64("user_id", userID),
		zap.Int64("book_id", bookID),
		zap.String("action", action))
}

func ErrorLoan(l *zap.Logger, err error, msg string, traceID string, action Action, loanID int64) bool {
	return logger.CheckError(err, l, msg,
		zap.String("trace_id", traceID),
		zap.Int64("loan_id", loanID),
		zap.Error(err),
		zap.String("action", action))
}

func WarnPastDue(l *zap.Logger, traceID string, userID, bookID int64, due time.Time) {
	logger.MakeWarn(l, "loan issued with a due date in the past",
		zap.String("trace_id", traceID),
		zap.Int64("user_id", userID),
		zap.Int64("book_id", bookID),
		zap.Time("return_due", due),
		zap.String("action", IssueLoan))
}
