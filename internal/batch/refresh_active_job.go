package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"credit-approval/internal/domain/loan"
)

// RefreshActiveLoansJob walks every active loan and clears the active flag
// on loans whose end date has passed. It runs nightly so that credit scores
// and affordability checks stop counting loans that have run their term.
type RefreshActiveLoansJob struct {
	loanRepo loan.Repository
	logger   *slog.Logger
	now      func() time.Time
}

func NewRefreshActiveLoansJob(loanRepo loan.Repository, logger *slog.Logger) *RefreshActiveLoansJob {
	if loanRepo == nil || logger == nil {
		panic("RefreshActiveLoansJob dependencies cannot be nil")
	}
	return &RefreshActiveLoansJob{
		loanRepo: loanRepo,
		logger:   logger.With("job", "RefreshActiveLoans"),
		now:      time.Now,
	}
}

func (j *RefreshActiveLoansJob) Run(ctx context.Context) error {
	startTime := j.now()
	j.logger.InfoContext(ctx, "Starting active loan refresh job.")

	activeLoans, err := j.loanRepo.GetActiveLoans(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to get active loans, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to get active loans: %w", err)
	}
	j.logger.InfoContext(ctx, "Fetched active loans.", slog.Int("count", len(activeLoans)))

	if len(activeLoans) == 0 {
		j.logger.InfoContext(ctx, "No active loans found to process.")
		return nil
	}

	asOf := j.now()
	var wg sync.WaitGroup
	var processedCount, expiredCount, errorCount int32

	for _, current := range activeLoans {
		wg.Add(1)
		go func(l *loan.Loan) {
			defer wg.Done()

			logCtx := j.logger.With(slog.String("loanID", l.LoanID))

			if l.RecomputeActive(asOf) {
				logCtx.DebugContext(ctx, "Loan is still within its term.")
				atomic.AddInt32(&processedCount, 1)
				return
			}

			logCtx.InfoContext(ctx, "Marking loan inactive, term has ended.",
				slog.Any("endDate", l.EndDate))
			if err := j.loanRepo.UpdateActiveFlag(ctx, l.LoanID, false); err != nil {
				logCtx.ErrorContext(ctx, "Failed to mark loan inactive", slog.Any("error", err))
				atomic.AddInt32(&errorCount, 1)
				return
			}
			atomic.AddInt32(&expiredCount, 1)
			atomic.AddInt32(&processedCount, 1)
		}(current)
	}

	wg.Wait()
	summaryLog := j.logger.With(
		slog.Duration("duration", j.now().Sub(startTime)),
		slog.Int("total_active_loans", len(activeLoans)),
		slog.Int("loans_processed", int(atomic.LoadInt32(&processedCount))),
		slog.Int("loans_marked_inactive", int(atomic.LoadInt32(&expiredCount))),
		slog.Int("errors_encountered", int(atomic.LoadInt32(&errorCount))),
	)
	if errorCount > 0 {
		summaryLog.WarnContext(ctx, "Active loan refresh job finished with errors.")
		return fmt.Errorf("job completed with %d errors", atomic.LoadInt32(&errorCount))
	}
	summaryLog.InfoContext(ctx, "Active loan refresh job finished successfully.")
	return nil
}
