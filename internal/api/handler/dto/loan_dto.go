package dto

import (
	"time"

	"credit-approval/internal/domain/loan"
	"credit-approval/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// LoanApplicationRequest is the shared body of check-eligibility and
// create-loan.
type LoanApplicationRequest struct {
	CustomerID   string  `json:"customer_id"`
	LoanAmount   float64 `json:"loan_amount"`
	InterestRate float64 `json:"interest_rate"`
	Tenure       int     `json:"tenure"`
}

func (r *LoanApplicationRequest) Validate() error {
	if r.CustomerID == "" {
		return apperrors.NewValidationError("customer_id", "customer_id is required")
	}
	if r.LoanAmount < 0 {
		return apperrors.NewValidationError("loan_amount", "loan_amount cannot be negative")
	}
	if r.InterestRate < 0 {
		return apperrors.NewValidationError("interest_rate", "interest_rate cannot be negative")
	}
	if r.Tenure < 1 {
		return apperrors.NewValidationError("tenure", "tenure must be at least 1")
	}
	return nil
}

func (r *LoanApplicationRequest) ToDomain() loan.EligibilityRequest {
	return loan.EligibilityRequest{
		CustomerID:   r.CustomerID,
		LoanAmount:   r.LoanAmount,
		InterestRate: r.InterestRate,
		Tenure:       r.Tenure,
	}
}

type EligibilityResponse struct {
	CustomerID            string  `json:"customer_id"`
	Approval              bool    `json:"approval"`
	InterestRate          float64 `json:"interest_rate"`
	CorrectedInterestRate float64 `json:"corrected_interest_rate"`
	Tenure                int     `json:"tenure"`
	MonthlyInstallment    float64 `json:"monthly_installment"`
}

func NewEligibilityResponse(res *loan.EligibilityResult) EligibilityResponse {
	return EligibilityResponse{
		CustomerID:            res.CustomerID,
		Approval:              res.Approved,
		InterestRate:          res.InterestRate,
		CorrectedInterestRate: res.CorrectedInterestRate,
		Tenure:                res.Tenure,
		MonthlyInstallment:    roundMoney(res.MonthlyInstallment),
	}
}

type CreateLoanResponse struct {
	LoanID             *string `json:"loan_id"`
	CustomerID         string  `json:"customer_id"`
	LoanApproved       bool    `json:"loan_approved"`
	Message            string  `json:"message"`
	MonthlyInstallment float64 `json:"monthly_installment"`
}

func NewCreateLoanResponse(res *loan.OriginationResult) CreateLoanResponse {
	resp := CreateLoanResponse{
		CustomerID:   res.CustomerID,
		LoanApproved: res.Approved,
		Message:      res.Message,
	}
	if res.Approved && res.Loan != nil {
		id := res.Loan.LoanID
		resp.LoanID = &id
		resp.MonthlyInstallment = roundMoney(res.MonthlyInstallment)
	}
	// Rejections carry a null loan_id and a zero installment on the wire.
	return resp
}

type CustomerSummary struct {
	CustomerID  string `json:"customer_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Age         int    `json:"age"`
}

type LoanDetailResponse struct {
	LoanID             string          `json:"loan_id"`
	Customer           CustomerSummary `json:"customer"`
	LoanAmount         float64         `json:"loan_amount"`
	Tenure             int             `json:"tenure"`
	InterestRate       float64         `json:"interest_rate"`
	MonthlyInstallment float64         `json:"monthly_installment"`
	EMIsPaidOnTime     int             `json:"emis_paid_on_time"`
	StartDate          string          `json:"start_date"`
	EndDate            *string         `json:"end_date,omitempty"`
	IsActive           bool            `json:"is_active"`
}

func NewLoanDetailResponse(detail *loan.LoanDetail) LoanDetailResponse {
	l := detail.Loan
	c := detail.Customer

	resp := LoanDetailResponse{
		LoanID: l.LoanID,
		Customer: CustomerSummary{
			CustomerID:  c.CustomerID,
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			PhoneNumber: c.PhoneNumber,
			Age:         c.Age,
		},
		LoanAmount:         l.LoanAmount,
		Tenure:             l.Tenure,
		InterestRate:       l.InterestRate,
		MonthlyInstallment: roundMoney(l.MonthlyRepayment),
		EMIsPaidOnTime:     l.EMIsPaidOnTime,
		StartDate:          l.StartDate.Format(time.RFC3339[:10]),
		IsActive:           l.IsActive,
	}
	if l.EndDate != nil {
		end := l.EndDate.Format(time.RFC3339[:10])
		resp.EndDate = &end
	}
	return resp
}

type CustomerLoanItem struct {
	LoanID             string  `json:"loan_id"`
	LoanAmount         float64 `json:"loan_amount"`
	InterestRate       float64 `json:"interest_rate"`
	MonthlyInstallment float64 `json:"monthly_installment"`
	RepaymentsLeft     int     `json:"repayments_left"`
}

func NewCustomerLoanList(loans []*loan.Loan) []CustomerLoanItem {
	items := make([]CustomerLoanItem, 0, len(loans))
	for _, l := range loans {
		items = append(items, CustomerLoanItem{
			LoanID:             l.LoanID,
			LoanAmount:         l.LoanAmount,
			InterestRate:       l.InterestRate,
			MonthlyInstallment: roundMoney(l.MonthlyRepayment),
			RepaymentsLeft:     l.RepaymentsLeft(),
		})
	}
	return items
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// NotFoundResponse is the flat 404 body, e.g. {"error": "Customer not found"}.
type NotFoundResponse struct {
	Error string `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}

func roundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
