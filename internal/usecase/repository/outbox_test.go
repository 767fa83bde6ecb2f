package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

const attemptsRetry = 3

func Test_outboxRepository_SendMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		inTx       bool
		fail       failStage
		errRequire error
	}{
		{name: "inside transaction", inTx: true},
		{name: "on pool"},
		{name: "insert fails", inTx: true, fail: failQuery, errRequire: errInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock, err := pgxmock.NewPool()
			require.NoError(t, err)

			ctx := context.Background()
			if tt.inTx {
				ctx = withOuterTx(ctx, mock)
			}

			expected := mock.ExpectExec(`INSERT INTO "outbox" .* ON CONFLICT DO NOTHING`)
			if tt.fail == failQuery {
				expected.WillReturnError(errInternal)
			} else {
				expected.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			o := NewOutbox(nil, mock, attemptsRetry)
			err = o.SendMessage(ctx, "9f1c", OutboxKindLoan, []byte(`{"kind":"loan","action":"created","id":1}`))
			require.ErrorIs(t, err, tt.errRequire)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func Test_outboxRepository_GetMessages(t *testing.T) {
	t.Parallel()

	claimed := []OutboxData{
		{IdempotencyKey: "a1", Kind: OutboxKindBook, RawData: []byte(`{"kind":"book","action":"updated","id":7}`)},
		{IdempotencyKey: "b2", Kind: OutboxKindUser, RawData: []byte(`{"kind":"user","action":"deactivated","id":2}`)},
	}

	tests := []struct {
		name       string
		fail       failStage
		want       []OutboxData
		errRequire error
	}{
		{name: "claims batch", want: claimed},
		{name: "nothing pending", want: []OutboxData{}},
		{name: "query fails", fail: failQuery, errRequire: errInternal},
		{name: "bad row", fail: failCheck},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock, err := pgxmock.NewPool()
			require.NoError(t, err)

			expected := mock.ExpectQuery(
				`UPDATE "outbox" SET .*"idempotency_key" IN \(SELECT "idempotency_key" FROM "outbox" .*FOR UPDATE SKIP LOCKED.*RETURNING`)

			rows := pgxmock.NewRows([]string{"idempotency_key", "data", "kind"})
			switch tt.fail {
			case failQuery:
				expected.WillReturnError(errInternal)
			case failCheck:
				rows.AddRow("c3", []byte("{}"), "not a kind")
				expected.WillReturnRows(rows)
			default:
				for _, msg := range tt.want {
					rows.AddRow(msg.IdempotencyKey, msg.RawData, int(msg.Kind))
				}
				expected.WillReturnRows(rows)
			}

			o := NewOutbox(nil, mock, attemptsRetry)
			got, err := o.GetMessages(context.Background(), 10, 5*time.Second)
			require.NoError(t, mock.ExpectationsWereMet())
			switch {
			case tt.fail == failCheck:
				require.Error(t, err)
			case tt.errRequire != nil:
				require.ErrorIs(t, err, tt.errRequire)
			default:
				require.NoError(t, err)
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func Test_outboxRepository_MarkAs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		keys       []string
		status     Status
		inTx       bool
		errRequire error
	}{
		{name: "success inside transaction", keys: []string{"a1", "b2"}, status: Success, inTx: true},
		{name: "retry on pool", keys: []string{"a1"}, status: Created},
		{name: "exec fails", keys: []string{"a1"}, status: Success, errRequire: errInternal},
		{name: "no keys is a no-op", keys: nil, status: Success},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock, err := pgxmock.NewPool()
			require.NoError(t, err)

			ctx := context.Background()
			if tt.inTx {
				ctx = withOuterTx(ctx, mock)
			}

			if len(tt.keys) > 0 {
				expected := mock.ExpectExec(`UPDATE outbox`).WithArgs(tt.status.String(), tt.keys, attemptsRetry)
				if tt.errRequire != nil {
					expected.WillReturnError(tt.errRequire)
				} else {
					expected.WillReturnResult(pgxmock.NewResult("UPDATE", int64(len(tt.keys))))
				}
			}

			o := NewOutbox(nil, mock, attemptsRetry)
			err = o.MarkAs(ctx, tt.keys, tt.status)
			require.ErrorIs(t, err, tt.errRequire)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNopOutbox(t *testing.T) {
	t.Parallel()

	var o OutboxRepository = NopOutbox{}
	ctx := context.Background()

	require.NoError(t, o.SendMessage(ctx, "k", OutboxKindBook, nil))
	msgs, err := o.GetMessages(ctx, 10, time.Second)
	require.NoError(t, err)
	require.Empty(t, msgs)
	require.NoError(t, o.MarkAs(ctx, []string{"k"}, Success))
}

func TestStatus_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "CREATED", Created.String())
	require.Equal(t, "IN_PROGRESS", InProgress.String())
	require.Equal(t, "SUCCESS", Success.String())
	require.Equal(t, "ABANDONED", Abandoned.String())
	require.Panics(t, func() { _ = Status(42).String() })
}
