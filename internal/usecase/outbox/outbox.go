package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/project/librarydesk/config"
	"github.com/project/librarydesk/internal/usecase/repository"
	"github.com/project/librarydesk/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type (
	GlobalHandler = func(kind repository.OutboxKind) (KindHandler, error)
	KindHandler   = func(ctx context.Context, data []byte) error

	Repository interface {
		GetMessages(ctx context.Context, batchSize int, inProgressTTL time.Duration) ([]repository.OutboxData, error)
		MarkAs(ctx context.Context, idempotencyKeys []string, s repository.Status) error
	}

	Transactor interface {
		WithTx(ctx context.Context, function func(ctx context.Context) error) error
	}
)

var RelayedMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "library_outbox_relayed_messages_total",
	Help: "Outbox messages handled by relay workers",
}, []string{"status"})

func init() {
	prometheus.MustRegister(RelayedMessages)
}

type outboxImpl struct {
	logger           *zap.Logger
	outboxRepository Repository
	globalHandler    GlobalHandler
	cfg              *config.Config
	transactor       Transactor
	wg               sync.WaitGroup
}

func New(
	logger *zap.Logger,
	outboxRepository Repository,
	globalHandler GlobalHandler,
	cfg *config.Config,
	transactor Transactor,
) *outboxImpl {
	return &outboxImpl{
		logger:           logger,
		outboxRepository: outboxRepository,
		globalHandler:    globalHandler,
		cfg:              cfg,
		transactor:       transactor,
	}
}

// Start launches the relay workers. They stop when ctx is done; Wait
// blocks until all of them have returned.
func (o *outboxImpl) Start(
	ctx context.Context,
	workers int,
	batchSize int,
	waitTime time.Duration,
	inProgressTTL time.Duration,
) {
	for workerID := 1; workerID <= workers; workerID++ {
		o.wg.Add(1)
		go o.worker(ctx, workerID, batchSize, waitTime, inProgressTTL)
	}
}

func (o *outboxImpl) Wait() {
	o.wg.Wait()
}

func (o *outboxImpl) worker(
	ctx context.Context,
	workerID int,
	batchSize int,
	waitTime time.Duration,
	inProgressTTL time.Duration,
) {
	defer o.wg.Done()

	timer := time.NewTimer(waitTime)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.MakeInfo(o.logger, "outbox worker stopped", zap.Int("worker", workerID))
			return
		case <-timer.C:
		}

		if o.cfg.Outbox.Enabled {
			err := o.relayBatch(ctx, batchSize, inProgressTTL)
			logger.CheckError(err, o.logger, "worker stage error", zap.Int("worker", workerID), zap.Error(err))
		}
		timer.Reset(waitTime)
	}
}

// relayBatch claims up to batchSize messages, hands each to its kind
// handler and records the outcome in the same transaction.
func (o *outboxImpl) relayBatch(ctx context.Context, batchSize int, inProgressTTL time.Duration) error {
	return o.transactor.WithTx(ctx, func(ctx context.Context) error {
		messages, err := o.outboxRepository.GetMessages(ctx, batchSize, inProgressTTL)

		if logger.CheckError(err, o.logger, "can not fetch messages from outbox", zap.Error(err)) {
			return err
		}
		if len(messages) == 0 {
			return nil
		}
		logger.MakeInfo(o.logger, "messages fetched", zap.Int("size", len(messages)))

		successKeys := make([]string, 0, len(messages))
		failKeys := make([]string, 0, len(messages))
		for _, message := range messages {
			key := message.IdempotencyKey

			kindHandler, taskErr := o.globalHandler(message.Kind)

			if logger.CheckError(taskErr, o.logger, "unexpected kind", zap.String("key", key), zap.Error(taskErr)) {
				failKeys = append(failKeys, key)
				continue
			}

			taskErr = kindHandler(ctx, message.RawData)

			if logger.CheckError(taskErr, o.logger, "kind error", zap.String("key", key), zap.Stringer("kind", message.Kind), zap.Error(taskErr)) {
				failKeys = append(failKeys, key)
				continue
			}

			successKeys = append(successKeys, key)
		}

		err = o.outboxRepository.MarkAs(ctx, successKeys, repository.Success)
		if logger.CheckError(err, o.logger, "Mark as 'Success' outbox error", zap.Error(err)) {
			return err
		}
		err = o.outboxRepository.MarkAs(ctx, failKeys, repository.Created)
		if logger.CheckError(err, o.logger, "Mark as 'Created' for fail task outbox error", zap.Error(err)) {
			return err
		}

		RelayedMessages.WithLabelValues(repository.Success.String()).Add(float64(len(successKeys)))
		RelayedMessages.WithLabelValues("FAILED").Add(float64(len(failKeys)))
		return nil
	})
}
