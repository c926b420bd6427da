package event

import "time"

const (
	routingKeyCustomerRegistered = "customer.registered"
	routingKeyLoanApproved       = "loan.approved"
)

type CustomerRegisteredEvent struct {
	CustomerID    string    `json:"customerId"`
	Name          string    `json:"name"`
	MonthlyIncome float64   `json:"monthlyIncome"`
	ApprovedLimit float64   `json:"approvedLimit"`
	Timestamp     time.Time `json:"timestamp"`
}

type LoanApprovedEvent struct {
	LoanID             string    `json:"loanId"`
	CustomerID         string    `json:"customerId"`
	LoanAmount         float64   `json:"loanAmount"`
	InterestRate       float64   `json:"interestRate"`
	Tenure             int       `json:"tenure"`
	MonthlyInstallment float64   `json:"monthlyInstallment"`
	Timestamp          time.Time `json:"timestamp"`
}
