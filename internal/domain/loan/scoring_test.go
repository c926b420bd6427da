package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func historyLoan(amount Money, tenure, paidOnTime int, startDate time.Time, active bool) *Loan {
	endDate := startDate.AddDate(0, tenure, 0)
	return &Loan{
		LoanID:         GenerateLoanID(startDate),
		CustomerID:     "C20230101AAAA0001",
		LoanAmount:     amount,
		Tenure:         tenure,
		EMIsPaidOnTime: paidOnTime,
		StartDate:      startDate,
		EndDate:        &endDate,
		IsActive:       active,
	}
}

func TestCreditScore(t *testing.T) {
	now := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	lastYear := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("should give maximum score to a customer with no history", func(t *testing.T) {
		assert.Equal(t, MaxScore, CreditScore(600_000, nil, now))
		assert.Equal(t, MaxScore, CreditScore(600_000, []*Loan{}, now))
	})

	t.Run("should zero the score when active principal exceeds the limit", func(t *testing.T) {
		loans := []*Loan{
			historyLoan(400_000, 12, 12, lastYear, true),
			historyLoan(300_000, 12, 12, lastYear, true),
		}
		assert.Equal(t, MinScore, CreditScore(600_000, loans, now))
	})

	t.Run("should not zero the score when only inactive principal exceeds the limit", func(t *testing.T) {
		loans := []*Loan{
			historyLoan(400_000, 12, 12, lastYear, false),
			historyLoan(300_000, 12, 12, lastYear, false),
		}
		assert.Greater(t, CreditScore(600_000, loans, now), MinScore)
	})

	t.Run("should combine repayment, recency and volume components", func(t *testing.T) {
		loans := []*Loan{
			historyLoan(100_000, 12, 12, lastYear, false), // fully repaid on time
			historyLoan(50_000, 12, 6, lastYear, false),   // partially on time
		}
		// repayment 1/2*40 = 20, recency 0, volume 150000/10000*10 = 150 -> capped
		assert.Equal(t, MaxScore, CreditScore(600_000, loans, now))
	})

	t.Run("should floor the component sum", func(t *testing.T) {
		loans := []*Loan{
			historyLoan(15_500, 12, 0, lastYear, false),
			historyLoan(15_500, 12, 0, lastYear, false),
			historyLoan(15_500, 12, 0, lastYear, false),
		}
		// repayment 0, recency 0, volume 46500/10000*10 = 46.5 -> 46
		assert.Equal(t, 46, CreditScore(600_000, loans, now))
	})

	t.Run("should count one recency weight per loan started this year", func(t *testing.T) {
		thisYear := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		loans := []*Loan{
			historyLoan(10_000, 12, 0, thisYear, true),
			historyLoan(10_000, 12, 0, thisYear, true),
		}
		// repayment 0, recency 2*20 = 40, volume 20000/10000*10 = 20 -> 60
		assert.Equal(t, 60, CreditScore(600_000, loans, now))
	})

	t.Run("should cap the score at 100 even when components overflow", func(t *testing.T) {
		thisYear := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		loans := []*Loan{
			historyLoan(10_000, 12, 12, thisYear, true),
			historyLoan(10_000, 12, 12, thisYear, true),
			historyLoan(10_000, 12, 12, thisYear, true),
			historyLoan(10_000, 12, 12, thisYear, true),
			historyLoan(10_000, 12, 12, thisYear, true),
			historyLoan(10_000, 12, 12, thisYear, true),
		}
		assert.Equal(t, MaxScore, CreditScore(600_000, loans, now))
	})

	t.Run("should be deterministic for the same history and time", func(t *testing.T) {
		loans := []*Loan{
			historyLoan(120_000, 24, 20, lastYear, true),
			historyLoan(80_000, 12, 12, lastYear, false),
		}
		first := CreditScore(600_000, loans, now)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, CreditScore(600_000, loans, now))
		}
	})

	t.Run("should always stay within the score range", func(t *testing.T) {
		loans := []*Loan{
			historyLoan(1_000_000, 6, 0, lastYear, false),
		}
		score := CreditScore(2_000_000, loans, now)
		assert.GreaterOrEqual(t, score, MinScore)
		assert.LessOrEqual(t, score, MaxScore)
	})
}
