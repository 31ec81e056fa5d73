package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/events"
	"github.com/vladislavdragonenkov/storefront/internal/service/history"
	"github.com/vladislavdragonenkov/storefront/internal/service/idempotency"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
	"github.com/vladislavdragonenkov/storefront/internal/service/tracking"
	"github.com/vladislavdragonenkov/storefront/internal/session"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

const (
	shutdownTimeout = 5 * time.Second
	drainTimeout    = 3 * time.Second
)

// services — доменные сервисы, общие для всех сессий процесса.
type services struct {
	metrics  *metrics.StorefrontMetrics
	checkout *checkout.Service
	tracking *tracking.Service
	history  *history.Service
}

func newServices(cfg Config, deps *runtimeDependencies, registerer prometheus.Registerer, logger *log.Entry) services {
	m := metrics.NewStorefrontMetricsWithRegisterer(registerer)
	recorder := events.NewRecorder(deps.timeline, deps.outbox, m, logger.WithField("component", "events"))

	return services{
		metrics: m,
		checkout: checkout.NewService(deps.orders, deps.deliveries, deps.idempotency,
			checkout.WithShippingFee(cfg.ShippingFee),
			checkout.WithKeyTTL(cfg.CheckoutKeyTTL),
			checkout.WithLogger(logger.WithField("component", "checkout")),
			checkout.WithMetrics(m),
			checkout.WithEvents(recorder),
		),
		tracking: tracking.NewService(deps.deliveries,
			tracking.WithLogger(logger.WithField("component", "tracking")),
			tracking.WithMetrics(m),
			tracking.WithEvents(recorder),
		),
		history: history.NewService(deps.orders),
	}
}

// newSession открывает пользовательскую сессию поверх общих сервисов.
func (s services) newSession(deps *runtimeDependencies, renderer session.Renderer, logger *log.Entry) *session.Session {
	return session.New(session.Deps{
		Catalog:  deps.catalog,
		Checkout: s.checkout,
		Tracking: s.tracking,
		History:  s.history,
		Renderer: renderer,
		Metrics:  s.metrics,
		Logger:   logger,
	})
}

// Run поднимает витрину: хранилище, фоновые воркеры, HTTP-метрики и gRPC health.
// Возвращает ctx.Err() после штатной остановки.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	if err := cfg.Validate(); err != nil {
		return err
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := newServices(cfg, deps, registry, logger)

	pubs := initPublishers(cfg, logger)
	defer closeKafkaProducer(pubs.producer, logger)

	outboxWorker := outbox.NewWorker(deps.outbox, pubs.main,
		outbox.WithLogger(logger.WithField("component", "outbox-worker")),
		outbox.WithDLQPublisher(pubs.dlq),
		outbox.WithRegisterer(registry),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
	)
	cleanupWorker := idempotency.NewCleanupWorker(deps.idempotency,
		idempotency.WithLogger(logger.WithField("component", "checkout-keys-cleanup")),
		idempotency.WithRegisterer(registry),
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithBatchSize(cfg.IdempotencyCleanupBatchSize),
	)

	workersCtx, stopWorkers := context.WithCancel(context.Background())
	var workers sync.WaitGroup
	startWorker := func(run func(context.Context)) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			run(workersCtx)
		}()
	}
	startWorker(outboxWorker.Run)
	startWorker(cleanupWorker.Run)
	if cfg.CourierInterval > 0 {
		courier := tracking.NewCourier(svc.tracking, cfg.CourierInterval, logger.WithField("component", "courier"))
		startWorker(courier.Run)
	}

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if deps.storageChecker != nil {
		healthHandler.RegisterChecker("storage", deps.storageChecker)
	}
	healthHandler.RegisterChecker("outbox", healthcheck.NewOutboxChecker(deps.outbox, cfg.OutboxMaxPendingAge))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, registry, healthHandler)

	grpcMetrics := promgrpc.NewServerMetrics()
	registry.MustRegister(grpcMetrics)
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	grpcMetrics.InitializeMetrics(grpcServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		stopWorkers()
		workers.Wait()
		shutdownHTTP(metricsSrv, logger)
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("gRPC сервер слушает %s", lis.Addr())
		errCh <- grpcServer.Serve(lis)
	}()

	if cfg.DemoWalkthrough {
		startWorker(func(ctx context.Context) {
			sess := svc.newSession(deps, session.NewLogRenderer(logger.WithField("component", "renderer")), logger.WithField("component", "session"))
			defer sess.Close()
			if _, err := runWalkthrough(ctx, sess, logger.WithField("component", "walkthrough")); err != nil {
				logger.WithError(err).Warn("walkthrough failed")
			}
		})
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем витрину")
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		stopGRPC(grpcServer, logger)
		runErr = ctx.Err()
	case err := <-errCh:
		if !errors.Is(err, grpc.ErrServerStopped) {
			runErr = err
		}
	}

	shutdownWorkers(stopWorkers, &workers, logger)
	drainOutbox(outboxWorker, logger)
	shutdownHTTP(metricsSrv, logger)
	return runErr
}

// startMetricsServer запускает HTTP-обработчики /metrics, /healthz, /readyz и /livez.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, gatherer prometheus.Gatherer, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// stopGRPC останавливает сервер мягко, а по таймауту принудительно.
func stopGRPC(srv *grpc.Server, logger *log.Entry) {
	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		srv.Stop()
	}
}

// shutdownWorkers отменяет контекст воркеров и ждёт их завершения.
func shutdownWorkers(cancel context.CancelFunc, wg *sync.WaitGroup, logger *log.Entry) {
	if cancel != nil {
		cancel()
	}
	if wg == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		logger.Warn("background workers did not stop in time")
	}
}

// drainOutbox публикует оставшиеся события перед выходом.
func drainOutbox(worker *outbox.Worker, logger *log.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if n := worker.Drain(ctx); n > 0 {
		logger.WithField("events", n).Info("outbox drained on shutdown")
	}
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
