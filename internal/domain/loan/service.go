package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-approval/internal/domain/customer"
	"credit-approval/internal/event"
	"credit-approval/internal/infrastructure/monitoring"
	"credit-approval/internal/pkg/apperrors"
)

const rejectionMessage = "Loan not approved based on eligibility"

type EligibilityRequest struct {
	CustomerID   string
	LoanAmount   Money
	InterestRate float64
	Tenure       int
}

type EligibilityResult struct {
	CustomerID            string
	Approved              bool
	InterestRate          float64
	CorrectedInterestRate float64
	Tenure                int
	MonthlyInstallment    Money
}

type OriginationResult struct {
	Loan               *Loan
	CustomerID         string
	Approved           bool
	Message            string
	MonthlyInstallment Money
}

type LoanDetail struct {
	Loan     *Loan
	Customer *customer.Customer
}

type Service interface {
	CheckEligibility(ctx context.Context, req EligibilityRequest) (*EligibilityResult, error)

	CreateLoan(ctx context.Context, req EligibilityRequest) (*OriginationResult, error)

	GetLoan(ctx context.Context, loanID string) (*LoanDetail, error)

	GetCustomerLoans(ctx context.Context, customerID string) ([]*Loan, error)
}

var _ Service = (*loanService)(nil)

type loanService struct {
	repo            Repository
	customerService customer.Service
	pub             event.Publisher
	logger          *slog.Logger
	now             func() time.Time
}

func NewService(r Repository, cs customer.Service, publisher event.Publisher, logger *slog.Logger) Service {
	if r == nil || cs == nil {
		panic("loan service dependencies cannot be nil")
	}
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	return &loanService{
		repo:            r,
		customerService: cs,
		pub:             publisher,
		logger:          logger.With(slog.String("component", "loanService")),
		now:             time.Now,
	}
}

// evaluate runs the shared front of the origination workflow: resolve the
// customer, fetch their history, score, and decide.
func (s *loanService) evaluate(ctx context.Context, req EligibilityRequest) (Decision, int, *customer.Customer, error) {
	cust, err := s.customerService.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return Decision{}, 0, nil, err
	}

	history, err := s.repo.GetLoansByCustomer(ctx, req.CustomerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to fetch loan history", slog.String("customerID", req.CustomerID), slog.Any("error", err))
		return Decision{}, 0, nil, fmt.Errorf("%w: failed to fetch loan history: %v", apperrors.ErrInternalServer, err)
	}

	score := CreditScore(cust.ApprovedLimit, history, s.now())
	monitoring.RecordCreditScore(score)

	var currentEMIs Money
	for _, l := range history {
		if l.IsActive {
			currentEMIs += l.MonthlyRepayment
		}
	}

	decision := Decide(score, req.InterestRate, req.Tenure, req.LoanAmount, currentEMIs, cust.MonthlyIncome)
	return decision, score, cust, nil
}

func (s *loanService) CheckEligibility(ctx context.Context, req EligibilityRequest) (*EligibilityResult, error) {
	s.logger.InfoContext(ctx, "Checking loan eligibility", slog.String("customerID", req.CustomerID))

	decision, score, _, err := s.evaluate(ctx, req)
	if err != nil {
		return nil, err
	}
	monitoring.RecordEligibilityCheck(decision.Approved)

	s.logger.InfoContext(ctx, "Eligibility decided",
		slog.String("customerID", req.CustomerID),
		slog.Int("creditScore", score),
		slog.Bool("approved", decision.Approved),
		slog.Float64("correctedRate", decision.CorrectedRate),
	)

	return &EligibilityResult{
		CustomerID:            req.CustomerID,
		Approved:              decision.Approved,
		InterestRate:          req.InterestRate,
		CorrectedInterestRate: decision.CorrectedRate,
		Tenure:                req.Tenure,
		MonthlyInstallment:    decision.Installment,
	}, nil
}

func (s *loanService) CreateLoan(ctx context.Context, req EligibilityRequest) (*OriginationResult, error) {
	s.logger.InfoContext(ctx, "Creating new loan", slog.String("customerID", req.CustomerID))

	decision, score, cust, err := s.evaluate(ctx, req)
	if err != nil {
		return nil, err
	}

	if !decision.Approved {
		s.logger.InfoContext(ctx, "Loan rejected by eligibility policy",
			slog.String("customerID", req.CustomerID),
			slog.Int("creditScore", score),
		)
		monitoring.RecordLoanDecision("rejected")
		return &OriginationResult{
			CustomerID:         req.CustomerID,
			Approved:           false,
			Message:            rejectionMessage,
			MonthlyInstallment: decision.Installment,
		}, nil
	}

	newLoan := NewLoan(cust.CustomerID, req.LoanAmount, req.Tenure, decision.CorrectedRate, decision.Installment, s.now())

	created, err := s.repo.CreateApprovedLoan(ctx, newLoan, AffordableInstallmentCap(cust.MonthlyIncome))
	if err != nil {
		if errors.Is(err, ErrAffordabilityBreached) {
			s.logger.WarnContext(ctx, "Approval withdrawn at persist time, affordability cap breached under lock",
				slog.String("customerID", req.CustomerID))
			monitoring.RecordLoanDecision("rejected_at_persist")
			return &OriginationResult{
				CustomerID:         req.CustomerID,
				Approved:           false,
				Message:            rejectionMessage,
				MonthlyInstallment: decision.Installment,
			}, nil
		}
		s.logger.ErrorContext(ctx, "Failed to persist approved loan", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to persist loan: %v", apperrors.ErrInternalServer, err)
	}

	approvedEvent := event.LoanApprovedEvent{
		LoanID:             created.LoanID,
		CustomerID:         created.CustomerID,
		LoanAmount:         created.LoanAmount,
		InterestRate:       created.InterestRate,
		Tenure:             created.Tenure,
		MonthlyInstallment: created.MonthlyRepayment,
		Timestamp:          time.Now(),
	}
	if pubErr := s.pub.PublishLoanApproved(ctx, approvedEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Loan created, but FAILED to publish approval event", slog.Any("error", pubErr))
	}

	monitoring.RecordLoanDecision("approved")
	s.logger.InfoContext(ctx, "Loan created successfully",
		slog.String("loanID", created.LoanID),
		slog.String("customerID", created.CustomerID),
	)

	return &OriginationResult{
		Loan:               created,
		CustomerID:         created.CustomerID,
		Approved:           true,
		Message:            "Loan approved and created",
		MonthlyInstallment: created.MonthlyRepayment,
	}, nil
}

func (s *loanService) GetLoan(ctx context.Context, loanID string) (*LoanDetail, error) {
	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", slog.String("loanID", loanID))
			return nil, fmt.Errorf("%w: loan %s", apperrors.ErrNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to get loan", slog.String("loanID", loanID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get loan %s: %v", apperrors.ErrInternalServer, loanID, err)
	}

	cust, err := s.customerService.GetCustomer(ctx, l.CustomerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to resolve loan owner", slog.String("loanID", loanID), slog.Any("error", err))
		return nil, err
	}

	return &LoanDetail{Loan: l, Customer: cust}, nil
}

func (s *loanService) GetCustomerLoans(ctx context.Context, customerID string) ([]*Loan, error) {
	if _, err := s.customerService.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	loans, err := s.repo.GetLoansByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list customer loans", slog.String("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to list loans for %s: %v", apperrors.ErrInternalServer, customerID, err)
	}
	return loans, nil
}
