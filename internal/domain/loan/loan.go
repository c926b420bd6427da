package loan

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Money = float64

type Loan struct {
	LoanID           string     `json:"loanId"`
	CustomerID       string     `json:"customerId"`
	LoanAmount       Money      `json:"loanAmount"`
	Tenure           int        `json:"tenure"`
	InterestRate     float64    `json:"interestRate"`
	MonthlyRepayment Money      `json:"monthlyRepayment"`
	EMIsPaidOnTime   int        `json:"emisPaidOnTime"`
	StartDate        time.Time  `json:"startDate"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	IsActive         bool       `json:"isActive"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// NewLoan builds an approved loan starting now. The end date is the start
// date plus the tenure in months.
func NewLoan(customerID string, amount Money, tenure int, interestRate float64, monthlyRepayment Money, startDate time.Time) *Loan {
	endDate := startDate.AddDate(0, tenure, 0)
	return &Loan{
		LoanID:           GenerateLoanID(startDate),
		CustomerID:       customerID,
		LoanAmount:       amount,
		Tenure:           tenure,
		InterestRate:     interestRate,
		MonthlyRepayment: monthlyRepayment,
		EMIsPaidOnTime:   0,
		StartDate:        startDate,
		EndDate:          &endDate,
		IsActive:         true,
	}
}

func (l *Loan) RepaymentsLeft() int {
	left := l.Tenure - l.EMIsPaidOnTime
	if left < 0 {
		return 0
	}
	return left
}

// RecomputeActive reports whether the loan is still active as of the given
// time. A loan with a past end date is inactive. The flag is only refreshed
// on write, never continuously.
func (l *Loan) RecomputeActive(asOf time.Time) bool {
	if l.EndDate != nil && l.EndDate.Before(asOf) {
		return false
	}
	return l.IsActive
}

// GenerateLoanID produces an identifier of the form L<yyyymmdd><8 hex>.
func GenerateLoanID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("L%s%s", now.Format("20060102"), suffix)
}
