package repository

import (
	"context"
	"errors"

	"github.com/pashagolub/pgxmock/v4"
)

// failStage names the step a table case breaks at.
type failStage uint

const (
	failNone failStage = iota
	failCheck
	failQuery
	failBegin
	failCommit
	failRollback
)

var errInternal = errors.New("internal error")

// withOuterTx opens a mocked transaction and carries it in ctx the way
// the transactor does.
func withOuterTx(ctx context.Context, mock pgxmock.PgxPoolIface) context.Context {
	mock.ExpectBegin()
	tx, _ := mock.Begin(ctx)
	return context.WithValue(ctx, txInjector{}, tx)
}
