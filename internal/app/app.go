package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/project/librarydesk/config"
	"github.com/project/librarydesk/db"
	"github.com/project/librarydesk/internal/controller"
	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/usecase/library"
	"github.com/project/librarydesk/internal/usecase/loan"
	"github.com/project/librarydesk/internal/usecase/outbox"
	"github.com/project/librarydesk/internal/usecase/query"
	"github.com/project/librarydesk/internal/usecase/repository"
	"github.com/project/librarydesk/pkg/credential"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const (
	shutDownSeconds        = 3
	dialerTimeoutSeconds   = 30
	dialerKeepAliveSeconds = 180
	transportMaxIdleConns  = 100
	transportMaxConnsPerHost
	transportIdleConnTimeoutSeconds       = 90
	transportTLSHandshakeTimeoutSeconds   = 15
	transportExpectContinueTimeoutSeconds = 2
	readHeaderTimeoutSeconds              = 5
	readTimeoutSeconds                    = 10
	writeTimeoutSeconds                   = 15
	idleTimeoutSeconds                    = 60
)

type storage struct {
	stores           library.Stores
	outboxRepository repository.OutboxRepository
	transactor       repository.Transactor
	pinger           controller.Pinger
	close            func()
}

func Run(logger *zap.Logger, cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := setupTracing(cfg)
	if err != nil {
		logger.Error("can not setup tracing", zap.Error(err))
		return
	}
	defer shutdownTracing()

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("can not open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
		return
	}
	defer st.close()

	relay := runOutbox(ctx, cfg, logger, st)

	pager := query.NewPager(cfg.Library.QueryDefaultLimit, cfg.Library.QueryMaxLimit)

	logUseCase := layerLogger(logger, cfg.Log.LogUseCase)
	lib := library.New(logUseCase, st.stores, st.outboxRepository, st.transactor,
		credential.NewBcrypt(cfg.Library.BcryptCost), pager)
	loans := loan.New(logUseCase, st.stores.Loans, lib, st.outboxRepository, st.transactor,
		pager, time.Duration(cfg.Library.LoanPeriodDays)*24*time.Hour)

	limiter := controller.NewRateLimiter(float64(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	go limiter.Run(ctx)

	ctrl := controller.New(layerLogger(logger, cfg.Log.LogController), lib, lib, lib, loans, st.pinger)

	apiServer := newServer(":"+cfg.HTTP.Port, ctrl.Handler(limiter))
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := newServer(":"+cfg.Observability.MetricsPort, metricsMux)

	go serve(logger, "api", apiServer)
	go serve(logger, "metrics", metricsServer)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second*shutDownSeconds)
	defer stop()
	for _, srv := range []*http.Server{apiServer, metricsServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}
	if relay != nil {
		relay.Wait()
	}
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		logger.Warn("using in-memory storage, data is lost on restart")
		return &storage{
			stores: library.Stores{
				Authors:    repository.NewMemory[entity.Lookup](entity.LookupAuthor.String()),
				Publishers: repository.NewMemory[entity.Lookup](entity.LookupPublisher.String()),
				Categories: repository.NewMemory[entity.Lookup](entity.LookupCategory.String()),
				Books:      repository.NewMemory[entity.Book]("book", "isbn"),
				Users:      repository.NewMemory[entity.User]("user", "email"),
				Loans:      repository.NewMemory[entity.Loan]("loan"),
			},
			outboxRepository: repository.NopOutbox{},
			transactor:       repository.NopTransactor{},
			close:            func() {},
		}, nil
	}

	if err := db.SetupPostgres(ctx, logger, cfg.PG.DSN); err != nil {
		return nil, err
	}

	dbPool, err := pgxpool.New(ctx, cfg.PG.URL)
	if err != nil {
		return nil, err
	}

	logRepo := layerLogger(logger, cfg.Log.LogDBRepo)
	return &storage{
		stores: library.Stores{
			Authors:    repository.NewPostgres[entity.Lookup](logRepo, dbPool, entity.LookupAuthor.String()),
			Publishers: repository.NewPostgres[entity.Lookup](logRepo, dbPool, entity.LookupPublisher.String()),
			Categories: repository.NewPostgres[entity.Lookup](logRepo, dbPool, entity.LookupCategory.String()),
			Books:      repository.NewPostgres[entity.Book](logRepo, dbPool, "book"),
			Users:      repository.NewPostgres[entity.User](logRepo, dbPool, "user"),
			Loans:      repository.NewPostgres[entity.Loan](logRepo, dbPool, "loan"),
		},
		outboxRepository: repository.NewOutbox(logRepo, dbPool, cfg.Outbox.AttemptsRetry),
		transactor:       repository.NewTransactor(layerLogger(logger, cfg.Log.LogTransactor), dbPool),
		pinger:           dbPool,
		close:            dbPool.Close,
	}, nil
}

// layerLogger returns nil for a layer with logging switched off.
func layerLogger(logger *zap.Logger, enabled bool) *zap.Logger {
	if enabled {
		return logger
	}
	return nil
}

type relay interface {
	Wait()
}

func runOutbox(ctx context.Context, cfg *config.Config, logger *zap.Logger, st *storage) relay {
	if !cfg.Outbox.Enabled {
		return nil
	}
	if cfg.Storage.Driver != config.StoragePostgres {
		logger.Warn("outbox relay needs postgres storage, relay disabled")
		return nil
	}

	dialer := &net.Dialer{
		Timeout:   dialerTimeoutSeconds * time.Second,
		KeepAlive: dialerKeepAliveSeconds * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          transportMaxIdleConns,
		MaxConnsPerHost:       transportMaxConnsPerHost,
		IdleConnTimeout:       transportIdleConnTimeoutSeconds * time.Second,
		TLSHandshakeTimeout:   transportTLSHandshakeTimeoutSeconds * time.Second,
		ExpectContinueTimeout: transportExpectContinueTimeoutSeconds * time.Second,
		MaxIdleConnsPerHost:   runtime.GOMAXPROCS(0) + 1,
	}

	client := new(http.Client)
	client.Transport = transport

	outboxService := outbox.New(
		layerLogger(logger, cfg.Log.LogOutboxWorker),
		st.outboxRepository,
		outbox.WebhookHandler(client, cfg.Outbox.WebhookURL),
		cfg,
		st.transactor,
	)

	outboxService.Start(
		ctx,
		cfg.Outbox.Workers,
		cfg.Outbox.BatchSize,
		cfg.Outbox.WaitTimeMS,
		cfg.Outbox.InProgressTTLMS,
	)
	return outboxService
}

// setupTracing installs the global tracer provider. Spans are exported
// only when a jaeger collector is configured.
func setupTracing(cfg *config.Config) (func(), error) {
	opts := make([]sdktrace.TracerProviderOption, 0, 1)
	if cfg.Observability.JaegerURL != "" {
		exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.Observability.JaegerURL)))
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*shutDownSeconds)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}, nil
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeoutSeconds * time.Second,
		ReadTimeout:       readTimeoutSeconds * time.Second,
		WriteTimeout:      writeTimeoutSeconds * time.Second,
		IdleTimeout:       idleTimeoutSeconds * time.Second,
	}
}

func serve(logger *zap.Logger, name string, srv *http.Server) {
	logger.Info("server listening", zap.String("server", name), zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server listen error", zap.String("server", name), zap.Error(err))
	}
}
