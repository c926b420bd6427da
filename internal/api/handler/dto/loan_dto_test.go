package dto

import (
	"testing"
	"time"

	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"
	"credit-approval/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestLoanApplicationRequestValidate(t *testing.T) {
	valid := LoanApplicationRequest{
		CustomerID:   "C20240101ABCDEF01",
		LoanAmount:   200_000,
		InterestRate: 9,
		Tenure:       24,
	}

	t.Run("should accept a valid application", func(t *testing.T) {
		req := valid
		assert.NoError(t, req.Validate())
	})

	t.Run("should reject missing or out of range fields", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*LoanApplicationRequest)
			field  string
		}{
			{"missing customer id", func(r *LoanApplicationRequest) { r.CustomerID = "" }, "customer_id"},
			{"negative amount", func(r *LoanApplicationRequest) { r.LoanAmount = -1 }, "loan_amount"},
			{"negative rate", func(r *LoanApplicationRequest) { r.InterestRate = -0.1 }, "interest_rate"},
			{"zero tenure", func(r *LoanApplicationRequest) { r.Tenure = 0 }, "tenure"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				req := valid
				tc.mutate(&req)

				var vErr *apperrors.ValidationError
				assert.ErrorAs(t, req.Validate(), &vErr)
				assert.Equal(t, tc.field, vErr.Field)
			})
		}
	})

	t.Run("should allow a zero interest rate", func(t *testing.T) {
		req := valid
		req.InterestRate = 0
		assert.NoError(t, req.Validate())
	})
}

func TestNewCreateLoanResponse(t *testing.T) {
	t.Run("should carry the loan id and rounded installment on approval", func(t *testing.T) {
		resp := NewCreateLoanResponse(&loan.OriginationResult{
			Loan:               &loan.Loan{LoanID: "L20240801BBBB0001"},
			CustomerID:         "C20240101ABCDEF01",
			Approved:           true,
			Message:            "Loan approved and created",
			MonthlyInstallment: 9_136.168,
		})

		if assert.NotNil(t, resp.LoanID) {
			assert.Equal(t, "L20240801BBBB0001", *resp.LoanID)
		}
		assert.Equal(t, 9_136.17, resp.MonthlyInstallment)
	})

	t.Run("should null the loan id and zero the installment on rejection", func(t *testing.T) {
		resp := NewCreateLoanResponse(&loan.OriginationResult{
			CustomerID:         "C20240101ABCDEF01",
			Approved:           false,
			Message:            "Loan not approved based on eligibility",
			MonthlyInstallment: 9_136.168,
		})

		assert.Nil(t, resp.LoanID)
		assert.Equal(t, 0.0, resp.MonthlyInstallment)
	})
}

func TestNewLoanDetailResponse(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 24, 0)

	resp := NewLoanDetailResponse(&loan.LoanDetail{
		Loan: &loan.Loan{
			LoanID:           "L20240301ABCDEF01",
			CustomerID:       "C20240101ABCDEF01",
			LoanAmount:       200_000,
			Tenure:           24,
			InterestRate:     9,
			MonthlyRepayment: 9_136.168,
			StartDate:        start,
			EndDate:          &end,
			IsActive:         true,
		},
		Customer: &customer.Customer{
			CustomerID:  "C20240101ABCDEF01",
			FirstName:   "Asha",
			LastName:    "Rao",
			Age:         34,
			PhoneNumber: "9876543210",
		},
	})

	assert.Equal(t, "L20240301ABCDEF01", resp.LoanID)
	assert.Equal(t, "C20240101ABCDEF01", resp.Customer.CustomerID)
	assert.Equal(t, "2024-03-01", resp.StartDate)
	if assert.NotNil(t, resp.EndDate) {
		assert.Equal(t, "2026-03-01", *resp.EndDate)
	}
	assert.Equal(t, 9_136.17, resp.MonthlyInstallment)
}

func TestNewCustomerLoanList(t *testing.T) {
	items := NewCustomerLoanList([]*loan.Loan{
		{LoanID: "L1", Tenure: 24, EMIsPaidOnTime: 6, MonthlyRepayment: 10_000},
		{LoanID: "L2", Tenure: 12, EMIsPaidOnTime: 12, MonthlyRepayment: 5_000},
	})

	assert.Len(t, items, 2)
	assert.Equal(t, 18, items[0].RepaymentsLeft)
	assert.Equal(t, 0, items[1].RepaymentsLeft)
}

func TestRegisterCustomerRequestValidate(t *testing.T) {
	valid := RegisterCustomerRequest{
		FirstName:     "Asha",
		LastName:      "Rao",
		Age:           34,
		MonthlyIncome: 50_000,
		PhoneNumber:   "9876543210",
	}

	t.Run("should accept a valid registration", func(t *testing.T) {
		req := valid
		assert.NoError(t, req.Validate())
	})

	t.Run("should reject a non positive age", func(t *testing.T) {
		req := valid
		req.Age = 0

		var vErr *apperrors.ValidationError
		assert.ErrorAs(t, req.Validate(), &vErr)
		assert.Equal(t, "age", vErr.Field)
	})
}
