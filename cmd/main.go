package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "credit-approval/docs"
	"credit-approval/internal/api"
	"credit-approval/internal/batch"
	"credit-approval/internal/config"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"
	"credit-approval/internal/event"
	"credit-approval/internal/infrastructure/database/postgres"
	"credit-approval/internal/infrastructure/logging"
	"credit-approval/internal/ingest"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// @title Credit Approval API
// @version 1.0
// @description API documentation for the credit approval service: customer registration, loan eligibility and origination.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)
	rabbitMQConn := setupRabbitMQ(cfg, logger)
	redisClient := initializeRedisClient(cfg, logger)

	loanService, customerService, loanRepo, customerRepo := initializeServices(rabbitMQConn, cfg, dbPool, logger)
	dispatcher := initializeIngestion(cfg, loanRepo, customerRepo, logger)

	cronScheduler := startScheduledJobs(cfg, logger, loanRepo, customerService, dispatcher)
	router := api.SetupRouter(loanService, customerService, dispatcher, redisClient, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, rabbitMQConn, redisClient, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed())

	return cfg, logger
}

func initializeDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

func initializeServices(
	rabbitConn *amqp.Connection,
	cfg *config.Config,
	dbPool *pgxpool.Pool,
	logger *slog.Logger,
) (loan.Service, customer.Service, loan.Repository, customer.Repository) {
	logger.Info("Initializing application components...")
	loanRepo := postgres.NewLoanRepository(dbPool, logger)
	customerRepo := postgres.NewCustomerRepository(dbPool, logger)

	var publisher event.Publisher = event.NoopPublisher{}
	if rabbitConn != nil {
		exchange := cfg.RabbitMQ.ExchangeName
		if exchange == "" {
			exchange = "credit-approval"
		}
		p, err := event.NewRabbitMQPublisher(rabbitConn, exchange, logger)
		if err != nil {
			logger.Error("Failed to initialize RabbitMQ publisher, falling back to no-op", slog.Any("error", err))
		} else {
			publisher = p
		}
	}

	customerService := customer.NewService(customerRepo, publisher, logger)
	loanService := loan.NewService(loanRepo, customerService, publisher, logger)
	return loanService, customerService, loanRepo, customerRepo
}

func initializeIngestion(cfg *config.Config, loanRepo loan.Repository, customerRepo customer.Repository, logger *slog.Logger) *ingest.Dispatcher {
	customerJob := ingest.NewCustomerIngestJob(filepath.Join(cfg.Ingest.Dir, cfg.Ingest.CustomerFile), customerRepo, logger)
	loanJob := ingest.NewLoanIngestJob(filepath.Join(cfg.Ingest.Dir, cfg.Ingest.LoanFile), loanRepo, customerRepo, logger)
	return ingest.NewDispatcher(customerJob, loanJob, 10*time.Minute, logger)
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, rabbitConn *amqp.Connection, redisClient *redis.Client,
	shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	triggerReason := waitForShutdownTrigger(shutdownChan, serverErrors, logger)

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	stopCronScheduler(cronScheduler, logger)
	closeRabbitMQConnection(rabbitConn, logger)
	closeRedisClient(redisClient, logger)
	shutdownHTTPServer(srv, serverErrors, logger)

	logger.Info("Application shutdown process complete.")
}

func waitForShutdownTrigger(shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) string {
	select {
	case sig := <-shutdownChan:
		logger.Info("Shutdown signal received.", "signal", sig.String())
		return "signal: " + sig.String()
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		logger.Info("Server goroutine finished before signal.", "error", err)
		return "server exited"
	}
}

func stopCronScheduler(cronScheduler *cron.Cron, logger *slog.Logger) {
	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}
}

func closeRabbitMQConnection(rabbitConn *amqp.Connection, logger *slog.Logger) {
	if rabbitConn != nil && !rabbitConn.IsClosed() {
		logger.Info("Closing RabbitMQ connection...")
		if err := rabbitConn.Close(); err != nil {
			logger.Error("Failed to close RabbitMQ connection gracefully", slog.Any("error", err))
		} else {
			logger.Info("RabbitMQ connection closed.")
		}
	} else if rabbitConn == nil {
		logger.Info("RabbitMQ connection was not established, skipping close.")
	} else {
		logger.Info("RabbitMQ connection already closed, skipping close.")
	}
}

func shutdownHTTPServer(srv *http.Server, serverErrors <-chan error, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server graceful shutdown failed", "error", err)
		} else {
			logger.Info("HTTP server shutdown initiated.")
		}
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}
}

func initializeRedisClient(cfg *config.Config, logger *slog.Logger) *redis.Client {
	if cfg.Redis.Addr == "" {
		logger.Info("Redis address not configured, using in-memory rate limiting.")
		return nil
	}
	logger.Info("Initializing central Redis client...")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if status := rdb.Ping(ctx); status.Err() != nil {
		logger.Error("Failed to connect to Redis", "error", status.Err(), "addr", cfg.Redis.Addr)
		_ = rdb.Close()
		os.Exit(1)
		return nil
	}

	logger.Info("Central Redis client connected successfully.", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	return rdb
}

func closeRedisClient(redisClient *redis.Client, logger *slog.Logger) {
	if redisClient != nil {
		logger.Info("Closing central Redis client connection...")
		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close central Redis client connection gracefully", "error", err)
		} else {
			logger.Info("Central Redis client connection closed.")
		}
	} else {
		logger.Info("Redis client was not initialized, skipping close.")
	}
}

type scheduledJob interface {
	Run(ctx context.Context) error
}

func scheduleJob(c *cron.Cron, name, scheduleSpec string, timeout time.Duration, job scheduledJob, logger *slog.Logger) {
	if scheduleSpec == "" {
		logger.Info("Job has no schedule configured, skipping.", "job_name", name)
		return
	}
	if timeout <= 0 {
		timeout = 1 * time.Hour
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", name)
		jobLogger.Info("Cron triggered: running job.")

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if runErr := job.Run(ctx); runErr != nil {
			jobLogger.Error("Job finished with error", slog.Any("error", runErr))
		} else {
			jobLogger.Info("Job finished successfully.")
		}
	}))
	if err != nil {
		logger.Error("Failed to schedule job", "job_name", name, "schedule", scheduleSpec, slog.Any("error", err))
		return
	}
	logger.Info("Scheduled job", "job_name", name, "schedule", scheduleSpec, "job_id", jobID)
}

func startScheduledJobs(
	cfg *config.Config,
	logger *slog.Logger,
	loanRepo loan.Repository,
	customerService customer.Service,
	dispatcher *ingest.Dispatcher,
) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	refreshJob := batch.NewRefreshActiveLoansJob(loanRepo, logger)
	scheduleJob(c, "RefreshActiveLoans", cfg.Batch.ActiveRefreshSchedule, cfg.Batch.ActiveRefreshTimeout, refreshJob, logger)

	limitsJob := batch.NewRecomputeLimitsJob(customerService, logger)
	scheduleJob(c, "RecomputeLimits", cfg.Batch.LimitRefreshSchedule, cfg.Batch.LimitRefreshTimeout, limitsJob, logger)

	if cfg.Ingest.Schedule != "" {
		jobID, err := c.AddFunc(cfg.Ingest.Schedule, dispatcher.RunAll)
		if err != nil {
			logger.Error("Failed to schedule spreadsheet ingestion", "schedule", cfg.Ingest.Schedule, slog.Any("error", err))
		} else {
			logger.Info("Scheduled spreadsheet ingestion", "schedule", cfg.Ingest.Schedule, "job_id", jobID)
		}
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}

func setupRabbitMQ(cfg *config.Config, logger *slog.Logger) *amqp.Connection {
	if cfg.RabbitMQ.Host == "" {
		logger.Info("RabbitMQ host not configured, domain events will not be published.")
		return nil
	}

	rabbitMQURI := fmt.Sprintf("amqp://%s:%d", cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	if cfg.RabbitMQ.Username != "" && cfg.RabbitMQ.Password != "" {
		rabbitMQURI = fmt.Sprintf("amqp://%s:%s@%s:%d", cfg.RabbitMQ.Username, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	} else if cfg.RabbitMQ.Username != "" || cfg.RabbitMQ.Password != "" {
		logger.Error("RabbitMQ username and password must be provided together, skipping connection.")
		return nil
	}

	conn, err := connectRabbitMQ(rabbitMQURI, logger)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ, domain events will not be published.", "error", err)
		return nil
	}
	return conn
}

func connectRabbitMQ(uri string, logger *slog.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	retryCount := 5
	for i := 1; i <= retryCount; i++ {
		conn, err = amqp.Dial(uri)
		if err == nil {
			logger.Info("Successfully connected to RabbitMQ")

			go func() {
				blockChan := conn.NotifyBlocked(make(chan amqp.Blocking))
				closeChan := conn.NotifyClose(make(chan *amqp.Error))

				select {
				case b := <-blockChan:
					logger.Warn("RabbitMQ Connection Blocked", "reason", b.Reason)
				case e := <-closeChan:
					logger.Error("RabbitMQ Connection Closed", slog.Any("error", e))
				}
			}()

			return conn, nil
		}
		logger.Warn("Failed to connect to RabbitMQ, retrying...",
			slog.Int("attempt", i),
			slog.Int("max_attempts", retryCount),
			slog.Any("error", err),
		)
		time.Sleep(time.Duration(i*2) * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", retryCount, err)
}
