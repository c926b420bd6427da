package ingest

import (
	"context"
	"log/slog"
	"time"
)

// Job is a runnable ingestion unit.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Trigger starts a full ingestion run without waiting for it to finish.
type Trigger interface {
	TriggerAll()
}

// Dispatcher runs the customer and loan jobs in order, customers first so
// that loan rows can resolve their owners. Runs triggered over HTTP are
// detached from the request: a new context governs the whole run.
type Dispatcher struct {
	customers Job
	loans     Job
	timeout   time.Duration
	logger    *slog.Logger
}

func NewDispatcher(customers, loans Job, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Dispatcher{customers: customers, loans: loans, timeout: timeout, logger: logger}
}

func (d *Dispatcher) TriggerAll() {
	go d.runAll()
}

// RunAll executes both jobs synchronously. The scheduler uses this entry
// point; HTTP triggers go through TriggerAll.
func (d *Dispatcher) RunAll() {
	d.runAll()
}

func (d *Dispatcher) runAll() {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	for _, job := range []Job{d.customers, d.loans} {
		if err := job.Run(ctx); err != nil {
			d.logger.ErrorContext(ctx, "Ingestion job failed",
				slog.String("job", job.Name()), slog.Any("error", err))
		}
	}
}
