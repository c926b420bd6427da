package api

import (
	"log/slog"
	"net/http"
	"time"

	"credit-approval/internal/api/handler"
	mw "credit-approval/internal/api/middleware"
	"credit-approval/internal/config"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"
	"credit-approval/internal/ingest"

	_ "credit-approval/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/redis/go-redis/v9"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func SetupRouter(
	loanService loan.Service,
	customerService customer.Service,
	ingestTrigger ingest.Trigger,
	redisClient *redis.Client,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, redisClient, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAuthRoutes(router, cfg, logger)
	setupAPIRoutes(router, loanService, customerService, ingestTrigger, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, redisClient *redis.Client, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	if redisClient != nil {
		router.Use(mw.NewRedisRateLimiterMiddleware(cfg.Server.RateLimit, redisClient, logger).Middleware)
	} else {
		router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	}
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(*cfg, logger)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupAPIRoutes(
	router *chi.Mux,
	loanService loan.Service,
	customerService customer.Service,
	ingestTrigger ingest.Trigger,
	cfg *config.Config,
	logger *slog.Logger,
) {
	loanHandler := handler.NewLoanHandler(loanService, logger)
	customerHandler := handler.NewCustomerHandler(customerService, logger)
	ingestHandler := handler.NewIngestHandler(ingestTrigger, logger)

	router.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))

		r.Post("/register", customerHandler.Register)
		r.Get("/customers/{customerID}", customerHandler.GetCustomer)

		r.Post("/check-eligibility", loanHandler.CheckEligibility)
		r.Post("/create-loan", loanHandler.CreateLoan)
		r.Get("/view-loan/{loanID}", loanHandler.ViewLoan)
		r.Get("/view-loans/{customerID}", loanHandler.ViewLoans)

		r.Post("/ingest", ingestHandler.TriggerIngestion)
	})
}
