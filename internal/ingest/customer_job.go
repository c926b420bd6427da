package ingest

import (
	"context"
	"log/slog"
	"time"

	"credit-approval/internal/domain/customer"
	"credit-approval/internal/infrastructure/monitoring"
)

// CustomerIngestJob loads customers from a workbook whose data rows carry
// first_name, last_name, age and phone_number. Rows that fail to parse are
// skipped with a warning so a single bad row never aborts the file.
type CustomerIngestJob struct {
	path   string
	repo   customer.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewCustomerIngestJob(path string, repo customer.Repository, logger *slog.Logger) *CustomerIngestJob {
	return &CustomerIngestJob{
		path:   path,
		repo:   repo,
		logger: logger.With(slog.String("job", "IngestCustomers")),
		now:    time.Now,
	}
}

func (j *CustomerIngestJob) Name() string { return "IngestCustomers" }

func (j *CustomerIngestJob) Run(ctx context.Context) error {
	startTime := j.now()
	j.logger.InfoContext(ctx, "Starting customer ingestion", slog.String("file", j.path))

	rows, err := readRows(j.path)
	if err != nil {
		j.logger.ErrorContext(ctx, "Customer ingestion failed to open file", slog.Any("error", err))
		return err
	}

	var loaded, skipped int
	for i, row := range rows {
		rowNum := i + 2

		age, err := parseIntCell(row, 2, "age")
		if err != nil {
			j.logger.WarnContext(ctx, "Skipping customer row", slog.Int("row", rowNum), slog.Any("error", err))
			monitoring.RecordIngestedRow("customer", "skipped")
			skipped++
			continue
		}

		// Income is unknown at ingestion time; the limit recompute job
		// picks these customers up once an income is recorded.
		cust := customer.NewCustomer(cell(row, 0), cell(row, 1), age, cell(row, 3), 0)
		if cust.FirstName == "" || cust.PhoneNumber == "" {
			j.logger.WarnContext(ctx, "Skipping customer row with missing fields", slog.Int("row", rowNum))
			monitoring.RecordIngestedRow("customer", "skipped")
			skipped++
			continue
		}

		if err := j.repo.Save(ctx, cust); err != nil {
			j.logger.WarnContext(ctx, "Skipping customer row that failed to persist",
				slog.Int("row", rowNum), slog.Any("error", err))
			monitoring.RecordIngestedRow("customer", "error")
			skipped++
			continue
		}
		monitoring.RecordIngestedRow("customer", "loaded")
		loaded++
	}

	j.logger.InfoContext(ctx, "Finished customer ingestion",
		slog.Int("loaded", loaded),
		slog.Int("skipped", skipped),
		slog.Duration("duration", j.now().Sub(startTime)),
	)
	return nil
}
