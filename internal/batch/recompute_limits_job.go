package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"credit-approval/internal/domain/customer"
)

// RecomputeLimitsJob re-derives every customer's approved limit from their
// recorded monthly income. Customers with no recorded income are left
// untouched so that ingested records keep a zero limit until income is known.
type RecomputeLimitsJob struct {
	customerService customer.Service
	logger          *slog.Logger
}

func NewRecomputeLimitsJob(customerSvc customer.Service, logger *slog.Logger) *RecomputeLimitsJob {
	if customerSvc == nil || logger == nil {
		panic("RecomputeLimitsJob dependencies cannot be nil")
	}
	return &RecomputeLimitsJob{
		customerService: customerSvc,
		logger:          logger.With("job", "RecomputeLimits"),
	}
}

func (j *RecomputeLimitsJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting approved limit recompute job.")

	customers, err := j.customerService.ListCustomers(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list customers, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to list customers: %w", err)
	}

	var updatedCount, skippedCount, errorCount int
	for _, cust := range customers {
		logCtx := j.logger.With(slog.String("customerID", cust.CustomerID))

		if cust.MonthlyIncome <= 0 {
			logCtx.DebugContext(ctx, "Skipping customer with no recorded income.")
			skippedCount++
			continue
		}

		if _, err := j.customerService.RecomputeApprovedLimit(ctx, cust.CustomerID); err != nil {
			logCtx.ErrorContext(ctx, "Failed to recompute approved limit", slog.Any("error", err))
			errorCount++
			continue
		}
		updatedCount++
	}

	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("customers_total", len(customers)),
		slog.Int("limits_updated", updatedCount),
		slog.Int("customers_skipped", skippedCount),
		slog.Int("errors_encountered", errorCount),
	)
	if errorCount > 0 {
		summaryLog.WarnContext(ctx, "Approved limit recompute job finished with errors.")
		return fmt.Errorf("job completed with %d errors", errorCount)
	}
	summaryLog.InfoContext(ctx, "Approved limit recompute job finished successfully.")
	return nil
}
