package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"
	"credit-approval/internal/infrastructure/monitoring"
)

// LoanIngestJob loads historical loans from a workbook whose data rows carry
// customer_id, loan_amount, tenure, interest_rate, monthly_repayment,
// emis_paid_on_time, start_date and end_date. Rows referencing an unknown
// customer are skipped, as are rows that fail to parse.
type LoanIngestJob struct {
	path      string
	loans     loan.Repository
	customers customer.Repository
	logger    *slog.Logger
	now       func() time.Time
}

func NewLoanIngestJob(path string, loans loan.Repository, customers customer.Repository, logger *slog.Logger) *LoanIngestJob {
	return &LoanIngestJob{
		path:      path,
		loans:     loans,
		customers: customers,
		logger:    logger.With(slog.String("job", "IngestLoans")),
		now:       time.Now,
	}
}

func (j *LoanIngestJob) Name() string { return "IngestLoans" }

func (j *LoanIngestJob) Run(ctx context.Context) error {
	startTime := j.now()
	j.logger.InfoContext(ctx, "Starting loan ingestion", slog.String("file", j.path))

	rows, err := readRows(j.path)
	if err != nil {
		j.logger.ErrorContext(ctx, "Loan ingestion failed to open file", slog.Any("error", err))
		return err
	}

	var loaded, skipped int
	for i, row := range rows {
		rowNum := i + 2

		ingested, err := j.parseRow(ctx, row)
		if err != nil {
			j.logger.WarnContext(ctx, "Skipping loan row", slog.Int("row", rowNum), slog.Any("error", err))
			monitoring.RecordIngestedRow("loan", "skipped")
			skipped++
			continue
		}

		if _, err := j.customers.FindByID(ctx, ingested.CustomerID); err != nil {
			if errors.Is(err, customer.ErrNotFound) {
				j.logger.WarnContext(ctx, "Skipping loan row for unknown customer",
					slog.Int("row", rowNum), slog.String("customerID", ingested.CustomerID))
				monitoring.RecordIngestedRow("loan", "skipped")
				skipped++
				continue
			}
			j.logger.ErrorContext(ctx, "Loan ingestion aborted on customer lookup failure",
				slog.Int("row", rowNum), slog.Any("error", err))
			return err
		}

		if err := j.loans.CreateIngestedLoan(ctx, ingested); err != nil {
			j.logger.WarnContext(ctx, "Skipping loan row that failed to persist",
				slog.Int("row", rowNum), slog.Any("error", err))
			monitoring.RecordIngestedRow("loan", "error")
			skipped++
			continue
		}
		monitoring.RecordIngestedRow("loan", "loaded")
		loaded++
	}

	j.logger.InfoContext(ctx, "Finished loan ingestion",
		slog.Int("loaded", loaded),
		slog.Int("skipped", skipped),
		slog.Duration("duration", j.now().Sub(startTime)),
	)
	return nil
}

func (j *LoanIngestJob) parseRow(_ context.Context, row []string) (*loan.Loan, error) {
	amount, err := parseFloatCell(row, 1, "loan_amount")
	if err != nil {
		return nil, err
	}
	tenure, err := parseIntCell(row, 2, "tenure")
	if err != nil {
		return nil, err
	}
	rate, err := parseFloatCell(row, 3, "interest_rate")
	if err != nil {
		return nil, err
	}
	repayment, err := parseFloatCell(row, 4, "monthly_repayment")
	if err != nil {
		return nil, err
	}
	paidOnTime, err := parseIntCell(row, 5, "emis_paid_on_time")
	if err != nil {
		return nil, err
	}
	startDate, err := parseDateCell(row, 6, "start_date")
	if err != nil {
		return nil, err
	}
	endDate, err := parseDateCell(row, 7, "end_date")
	if err != nil {
		return nil, err
	}

	l := loan.NewLoan(cell(row, 0), amount, tenure, rate, repayment, startDate)
	l.EMIsPaidOnTime = paidOnTime
	l.EndDate = &endDate
	l.IsActive = l.RecomputeActive(j.now())
	return l, nil
}
