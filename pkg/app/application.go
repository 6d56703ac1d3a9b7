package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"

	"qota/pkg/config"
	"qota/pkg/contracts"
	"qota/pkg/health"
	"qota/pkg/middleware"
)

// Application assembles an HTTP service: routed API handlers behind the
// full middleware chain, health probes behind a minimal one, and
// graceful shutdown wiring for the resources the service holds.
type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.MemberRateLimiter
	shutdownHooks    []func()
}

func New(cfg *config.Config, apiHandlers ...contracts.Handler) *Application {
	log := cfg.Log

	healthRouter := httprouter.New()
	healthHandler := health.NewHandler(cfg.Client.Mongo, log)
	healthHandler.RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(log)(healthHTTPHandler)

	apiRouter := httprouter.New()
	for _, h := range apiHandlers {
		h.RegisterRoutes(apiRouter)
	}

	idempotencyStore := middleware.NewInMemoryIdempotencyStore(cfg.IdempotencyTTL)
	rateLimiter := middleware.NewMemberRateLimiter(
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		middleware.DefaultMemberExtractor,
		log,
	)

	// Order: Recovery → Logging → MaxSize → ContentType → Auth → RateLimit → Timeout → Idempotency → Router
	var apiHTTPHandler http.Handler = apiRouter
	apiHTTPHandler = middleware.Idempotency(idempotencyStore, "Idempotency-Key")(apiHTTPHandler)
	apiHTTPHandler = middleware.RequestTimeout(cfg.RequestTimeout)(apiHTTPHandler)
	apiHTTPHandler = middleware.MemberRateLimit(rateLimiter)(apiHTTPHandler)
	apiHTTPHandler = middleware.AuthIdentity(log)(apiHTTPHandler)
	apiHTTPHandler = middleware.ContentTypeValidation(log)(apiHTTPHandler)
	apiHTTPHandler = middleware.MaxRequestSize(int64(cfg.MaxRequestSize))(apiHTTPHandler)
	apiHTTPHandler = middleware.RequestLogging(log)(apiHTTPHandler)
	apiHTTPHandler = middleware.Recovery(log)(apiHTTPHandler)

	mux := http.NewServeMux()
	mux.Handle("/health", healthHTTPHandler)
	mux.Handle("/ready", healthHTTPHandler)
	mux.Handle("/", apiHTTPHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	log.Info("HTTP server configured", "port", cfg.Port)

	return &Application{
		cfg:              cfg,
		server:           server,
		idempotencyStore: idempotencyStore,
		rateLimiter:      rateLimiter,
	}
}

// OnShutdown registers a hook to run during graceful shutdown, after
// the HTTP server stops accepting requests.
func (a *Application) OnShutdown(hook func()) {
	a.shutdownHooks = append(a.shutdownHooks, hook)
}

// Run starts the server and blocks until a shutdown signal arrives or
// the server fails.
func (a *Application) Run() {
	log := a.cfg.Log

	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	log := a.cfg.Log

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()

	for _, hook := range a.shutdownHooks {
		hook()
	}

	a.cfg.GracefulShutdown()

	log.Info("Server stopped gracefully")
}
