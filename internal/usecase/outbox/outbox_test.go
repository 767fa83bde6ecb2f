package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/project/librarydesk/config"
	"github.com/project/librarydesk/internal/usecase/outbox/mocks"
	"github.com/project/librarydesk/internal/usecase/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type errLayer uint

const (
	none errLayer = iota
	transactor
	getMessage
	globalHandler
	kindHandler
	markAsSuccess
	markAsCreated
	empty
)

var errInternal = errors.New("Internal")

var testGlobalHandler = func(kind repository.OutboxKind) (KindHandler, error) {
	switch kind {
	case repository.OutboxKindUndefined:
		return nil, errInternal
	case repository.OutboxKindAuthor:
		return testAuthorHandler, nil
	case repository.OutboxKindBook:
		return testBookHandler, nil
	default:
		panic("unreachable")
	}
}

func testAuthorHandler(_ context.Context, _ []byte) error {
	return nil
}

func testBookHandler(_ context.Context, _ []byte) error {
	return errInternal
}

func Test_outboxImpl_relayBatch(t *testing.T) {
	t.Parallel()

	const (
		batchSize     = 1
		inProgressTTL = time.Second
	)

	tests := []struct {
		name                   string
		errL                   errLayer
		outboxGetCount         int
		outboxMarkSuccessCount int
		outboxMarkCreatedCount int
		wantSuccess            []string
		wantFailed             []string
		errRequire             error
	}{
		{
			name:                   "ok iteration",
			errL:                   none,
			outboxGetCount:         1,
			outboxMarkSuccessCount: 1,
			outboxMarkCreatedCount: 1,
			wantSuccess:            []string{"key"},
			wantFailed:             []string{},
		},
		{
			name:           "nothing to relay",
			errL:           empty,
			outboxGetCount: 1,
		},
		{
			name:       "transactor err",
			errL:       transactor,
			errRequire: errInternal,
		},
		{
			name:           "GetMessages err",
			errL:           getMessage,
			outboxGetCount: 1,
			errRequire:     errInternal,
		},
		{
			name:                   "GlobalHandler err",
			errL:                   globalHandler,
			outboxGetCount:         1,
			outboxMarkSuccessCount: 1,
			outboxMarkCreatedCount: 1,
			wantSuccess:            []string{},
			wantFailed:             []string{"key"},
		},
		{
			name:                   "KindHandler err",
			errL:                   kindHandler,
			outboxGetCount:         1,
			outboxMarkSuccessCount: 1,
			outboxMarkCreatedCount: 1,
			wantSuccess:            []string{},
			wantFailed:             []string{"key"},
		},
		{
			name:                   "MarkAs 'SUCCESS' err",
			errL:                   markAsSuccess,
			outboxGetCount:         1,
			outboxMarkSuccessCount: 1,
			wantSuccess:            []string{"key"},
			errRequire:             errInternal,
		},
		{
			name:                   "MarkAs 'CREATED' err",
			errL:                   markAsCreated,
			outboxGetCount:         1,
			outboxMarkSuccessCount: 1,
			outboxMarkCreatedCount: 1,
			wantSuccess:            []string{"key"},
			wantFailed:             []string{},
			errRequire:             errInternal,
		},
	}
	logger, e := zap.NewProduction()
	require.NoError(t, e)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tErr := tt.errL
			ctrl := gomock.NewController(t)
			ctx := context.Background()

			outboxRepo := mocks.NewMockRepository(ctrl)
			outboxRepo.EXPECT().GetMessages(ctx, batchSize, inProgressTTL).DoAndReturn(func(ctx context.Context, batchSize int, inProgressTTL time.Duration) ([]repository.OutboxData, error) {
				switch tErr {
				case getMessage:
					return nil, errInternal
				case empty:
					return nil, nil
				case kindHandler:
					return []repository.OutboxData{{
						IdempotencyKey: "key",
						Kind:           repository.OutboxKindBook,
					}}, nil
				case globalHandler:
					return []repository.OutboxData{{
						IdempotencyKey: "key",
						Kind:           repository.OutboxKindUndefined,
					}}, nil
				default:
					return []repository.OutboxData{{
						IdempotencyKey: "key",
						Kind:           repository.OutboxKindAuthor,
					}}, nil
				}
			}).Times(tt.outboxGetCount)

			outboxRepo.EXPECT().MarkAs(ctx, gomock.Any(), repository.Success).DoAndReturn(func(ctx context.Context, idempotencyKeys []string, s repository.Status) error {
				require.Equal(t, tt.wantSuccess, idempotencyKeys)
				if tErr == markAsSuccess {
					return errInternal
				}
				return nil
			}).Times(tt.outboxMarkSuccessCount)

			outboxRepo.EXPECT().MarkAs(ctx, gomock.Any(), repository.Created).DoAndReturn(func(ctx context.Context, idempotencyKeys []string, s repository.Status) error {
				require.Equal(t, tt.wantFailed, idempotencyKeys)
				if tErr == markAsCreated {
					return errInternal
				}
				return nil
			}).Times(tt.outboxMarkCreatedCount)

			tr := mocks.NewMockTransactor(ctrl)
			tr.EXPECT().WithTx(ctx, gomock.Any()).DoAndReturn(func(ctx context.Context, f func(ctx context.Context) error) error {
				if tErr == transactor {
					return errInternal
				}
				return f(ctx)
			}).Times(1)

			o := New(logger, outboxRepo, testGlobalHandler, &config.Config{}, tr)
			err := o.relayBatch(ctx, batchSize, inProgressTTL)
			require.ErrorIs(t, err, tt.errRequire)
		})
	}
}

func Test_outboxImpl_Start(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		enabled bool
	}{
		{name: "enabled workers relay until cancelled", enabled: true},
		{name: "disabled workers stay idle", enabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			outboxRepo := mocks.NewMockRepository(ctrl)
			tr := mocks.NewMockTransactor(ctrl)

			relayed := make(chan struct{}, 1)
			if tt.enabled {
				tr.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, f func(ctx context.Context) error) error {
					return f(ctx)
				}).MinTimes(1)
				outboxRepo.EXPECT().GetMessages(gomock.Any(), 5, time.Second).DoAndReturn(func(context.Context, int, time.Duration) ([]repository.OutboxData, error) {
					select {
					case relayed <- struct{}{}:
					default:
					}
					return nil, nil
				}).MinTimes(1)
			}

			cfg := &config.Config{}
			cfg.Outbox.Enabled = tt.enabled
			o := New(nil, outboxRepo, testGlobalHandler, cfg, tr)
			o.Start(ctx, 2, 5, time.Millisecond, time.Second)

			if tt.enabled {
				select {
				case <-relayed:
				case <-time.After(5 * time.Second):
					t.Fatal("no batch was relayed")
				}
			} else {
				time.Sleep(20 * time.Millisecond)
			}

			cancel()
			o.Wait()
		})
	}
}
