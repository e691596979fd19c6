package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sves-daq/backend/internal/adapters/http/api"
	"github.com/sves-daq/backend/internal/adapters/http/swagger"
	"github.com/sves-daq/backend/internal/adapters/notify"
	"github.com/sves-daq/backend/internal/adapters/repository"
	service "github.com/sves-daq/backend/internal/app"
	"github.com/sves-daq/backend/internal/config"
	"github.com/sves-daq/backend/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	statsInterval     = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString("sves-daq: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := initLogging(cfg); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	svc, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           buildHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		refreshStats(gctx, svc)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Stop taking requests before draining the persistence queue.
		httpErr := srv.Shutdown(shutdownCtx)
		svcErr := svc.Stop(shutdownCtx)
		return errors.Join(httpErr, svcErr)
	})

	err = g.Wait()
	log.Info(context.Background(), "server stopped")
	return err
}

func initLogging(cfg *config.Config) error {
	format, err := logger.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithFormat(format)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(context.Background(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

// buildService opens the store and notifier named by cfg. A notifier that
// cannot connect is logged and replaced by a no-op.
func buildService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	log := logger.Get()
	store, err := repository.Open(ctx, cfg.StoreDriver, cfg.StoreDSN, log.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.RedisAddr != "" {
		rn, err := notify.NewRedisNotifier(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisChannel)
		if err != nil {
			log.Warn(ctx, "prediction notifications disabled",
				logger.String("redis_addr", cfg.RedisAddr), logger.Error(err))
		} else {
			notifier = rn
		}
	}

	return service.New(
		service.WithLogger(log.Named("service")),
		service.WithStore(store),
		service.WithNotifier(notifier),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithPluginRunDelay(cfg.PluginRunDelay()),
	), nil
}

func buildHandler(ctx context.Context, cfg *config.Config, svc *service.Service) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc,
		api.WithLogger(logger.Get().Named("api")),
		api.WithMaxListLimit(cfg.MaxListLimit),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithMaxInFlight(cfg.MaxInFlight),
		api.WithCORSOrigin(cfg.CORSAllowedOrigin),
	)
	apiServer.Register(ctx, mux)
	return apiServer.Handler(mux)
}

// refreshStats keeps the queue and system gauges current between scrapes.
func refreshStats(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.GetStats()
		}
	}
}
