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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wolfman30/prisoner-profile/internal/api/router"
	"github.com/wolfman30/prisoner-profile/internal/app/bootstrap"
	"github.com/wolfman30/prisoner-profile/internal/appointments"
	appconfig "github.com/wolfman30/prisoner-profile/internal/config"
	"github.com/wolfman30/prisoner-profile/internal/flash"
	httpmiddleware "github.com/wolfman30/prisoner-profile/internal/http/middleware"
	"github.com/wolfman30/prisoner-profile/internal/observability/metrics"
	"github.com/wolfman30/prisoner-profile/internal/personal"
	"github.com/wolfman30/prisoner-profile/internal/prisonapi"
	"github.com/wolfman30/prisoner-profile/internal/reference"
	"github.com/wolfman30/prisoner-profile/internal/schedule"
	"github.com/wolfman30/prisoner-profile/internal/videolink"
	"github.com/wolfman30/prisoner-profile/internal/web"
	"github.com/wolfman30/prisoner-profile/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting prisoner-profile server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := buildServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildServer wires every collaborator. cleanup releases connections.
func buildServer(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	metricsHandler, bookingMetrics := setupMetrics()
	loc := cfg.Location()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		closers = append(closers, func() { _ = redisClient.Close() })
	}
	state := bootstrap.BuildStateStore(redisClient, logger)

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}
	if pool != nil {
		closers = append(closers, pool.Close)
	}
	slips := bootstrap.BuildSlipStore(pool, logger)
	audit, auditDB := bootstrap.BuildAuditService(pool)
	if auditDB != nil {
		closers = append(closers, func() { _ = auditDB.Close() })
	}

	upstream := &http.Client{
		Timeout:   cfg.UpstreamTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	prisonClient := prisonapi.NewClient(cfg.PrisonAPIURL,
		prisonapi.WithLogger(logger),
		prisonapi.WithMetrics(bookingMetrics),
		prisonapi.WithHTTPClient(upstream),
	)
	videoLinkClient := videolink.NewClient(cfg.VideoLinkAPIURL,
		videolink.WithLogger(logger),
		videolink.WithMetrics(bookingMetrics),
		videolink.WithHTTPClient(upstream),
	)

	renderer, err := web.NewRenderer(logger)
	if err != nil {
		return nil, cleanup, err
	}

	gateway := reference.NewGateway(prisonClient, videoLinkClient, state, cfg.ReferenceCacheTTL, logger)
	messenger := flash.NewMessenger(state, cfg.FlashTTL)

	appointmentsHandler := appointments.NewHandler(appointments.Config{
		Prisoners: prisonClient,
		Bookings:  videoLinkClient,
		Reference: gateway,
		Schedule:  schedule.NewLookup(prisonClient, loc, logger),
		Submitter: appointments.NewSubmitter(prisonClient, videoLinkClient, audit, bookingMetrics, logger),
		Drafts:    appointments.NewDraftStore(state, cfg.DraftTTL),
		Flash:     messenger,
		Slips:     slips,
		Audit:     audit,
		Renderer:  renderer,
		Metrics:   bookingMetrics,
		Logger:    logger,
		Location:  loc,
	})

	personalBuilder := personal.NewBuilder(prisonClient, gateway, messenger, audit, renderer, bookingMetrics, logger)

	limiter := httpmiddleware.NewRateLimiter(cfg.SubmitRatePerSecond, cfg.SubmitBurst)
	go limiter.Run(ctx)

	checks := map[string]router.HealthCheck{}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	if pool != nil {
		checks["postgres"] = pool.Ping
	}

	handler := router.New(&router.Config{
		Logger:          logger,
		Appointments:    appointmentsHandler,
		Personal:        personalBuilder,
		PersonalRoutes:  personal.DefaultRoutes(prisonClient),
		Contacts:        prisonClient,
		History:         audit,
		StaffAuthSecret: cfg.StaffJWTSecret,
		SubmitLimiter:   limiter,
		MetricsHandler:  metricsHandler,
		HealthChecks:    checks,
	})
	return handler, cleanup, nil
}

func setupMetrics() (http.Handler, *metrics.BookingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewBookingMetrics(reg)
}
