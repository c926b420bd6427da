package loan

import (
	"context"
	"errors"
)

var (
	// ErrAffordabilityBreached is returned by the persistence step when the
	// re-checked installment total inside the customer-row lock exceeds the
	// affordability cap. Concurrent approvals racing on a stale debt snapshot
	// surface here instead of both committing.
	ErrAffordabilityBreached = errors.New("affordability cap breached at persist time")
)

type Repository interface {
	// CreateApprovedLoan inserts the loan and increments the owning
	// customer's current debt as one transaction, serialized per customer by
	// a row lock. Active installments are re-summed under the lock and the
	// insert is abandoned with ErrAffordabilityBreached when they would
	// exceed installmentCap together with the new loan's installment.
	CreateApprovedLoan(ctx context.Context, newLoan *Loan, installmentCap Money) (*Loan, error)

	// CreateIngestedLoan inserts a historical loan row as-is, without
	// touching the customer's debt.
	CreateIngestedLoan(ctx context.Context, newLoan *Loan) error

	GetLoanByID(ctx context.Context, loanID string) (*Loan, error)

	GetLoansByCustomer(ctx context.Context, customerID string) ([]*Loan, error)

	GetActiveLoans(ctx context.Context) ([]*Loan, error)

	// UpdateActiveFlag persists a recomputed active flag.
	UpdateActiveFlag(ctx context.Context, loanID string, isActive bool) error
}
