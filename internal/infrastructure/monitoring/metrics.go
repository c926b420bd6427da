package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	EligibilityChecksTotal *prometheus.CounterVec
	LoanDecisionsTotal     *prometheus.CounterVec
	IngestedRowsTotal      *prometheus.CounterVec
	CreditScore            prometheus.Histogram
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_approval_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		EligibilityChecksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_approval_eligibility_checks_total",
				Help: "Total number of eligibility checks, by verdict.",
			},
			[]string{"verdict"},
		),
		LoanDecisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_approval_loan_decisions_total",
				Help: "Total number of loan origination decisions, by outcome.",
			},
			[]string{"outcome"},
		),
		IngestedRowsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_approval_ingested_rows_total",
				Help: "Total number of ingested spreadsheet rows, by kind and status.",
			},
			[]string{"kind", "status"},
		),
		CreditScore: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "credit_approval_credit_score",
				Help:    "Distribution of computed credit scores.",
				Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordEligibilityCheck(approved bool) {
	verdict := "rejected"
	if approved {
		verdict = "approved"
	}
	Business.EligibilityChecksTotal.WithLabelValues(verdict).Inc()
}

func RecordLoanDecision(outcome string) {
	Business.LoanDecisionsTotal.WithLabelValues(outcome).Inc()
}

func RecordIngestedRow(kind, status string) {
	Business.IngestedRowsTotal.WithLabelValues(kind, status).Inc()
}

func RecordCreditScore(score int) {
	Business.CreditScore.Observe(float64(score))
}
