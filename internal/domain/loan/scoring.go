package loan

import (
	"math"
	"time"
)

const (
	repaymentWeight = 40.0
	recencyWeight   = 20.0
	volumeWeight    = 10.0
	volumeUnit      = 10_000.0

	MaxScore = 100
	MinScore = 0
)

// CreditScore computes the customer's credit score from their loan history.
// A customer with no history gets the maximum score. Active principal above
// the approved limit zeroes the score regardless of any other signal.
// Otherwise the score is the floored sum of a repayment component, a
// recent-activity component (one uncapped weight per loan started in the
// current calendar year) and a volume component, capped at 100.
func CreditScore(approvedLimit Money, loans []*Loan, now time.Time) int {
	if len(loans) == 0 {
		return MaxScore
	}

	var activePrincipal Money
	for _, l := range loans {
		if l.IsActive {
			activePrincipal += l.LoanAmount
		}
	}
	if activePrincipal > approvedLimit {
		return MinScore
	}

	paidOnTime := 0
	loansThisYear := 0
	var totalVolume Money
	currentYear := now.Year()
	for _, l := range loans {
		if l.EMIsPaidOnTime >= l.Tenure {
			paidOnTime++
		}
		if l.StartDate.Year() == currentYear {
			loansThisYear++
		}
		totalVolume += l.LoanAmount
	}

	totalLoans := len(loans)
	if totalLoans < 1 {
		totalLoans = 1
	}

	score := float64(paidOnTime)/float64(totalLoans)*repaymentWeight +
		float64(loansThisYear)*recencyWeight +
		totalVolume/volumeUnit*volumeWeight

	return int(math.Min(MaxScore, math.Floor(score)))
}
