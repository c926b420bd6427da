package dto

import (
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/pkg/apperrors"
)

type RegisterCustomerRequest struct {
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Age           int     `json:"age"`
	MonthlyIncome float64 `json:"monthly_income"`
	PhoneNumber   string  `json:"phone_number"`
}

func (r *RegisterCustomerRequest) Validate() error {
	if r.FirstName == "" {
		return apperrors.NewValidationError("first_name", "first_name is required")
	}
	if r.LastName == "" {
		return apperrors.NewValidationError("last_name", "last_name is required")
	}
	if r.Age <= 0 {
		return apperrors.NewValidationError("age", "age must be positive")
	}
	if r.MonthlyIncome < 0 {
		return apperrors.NewValidationError("monthly_income", "monthly_income cannot be negative")
	}
	return nil
}

type CustomerResponse struct {
	CustomerID    string  `json:"customer_id"`
	Name          string  `json:"name"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Age           int     `json:"age"`
	PhoneNumber   string  `json:"phone_number"`
	MonthlyIncome float64 `json:"monthly_income"`
	ApprovedLimit float64 `json:"approved_limit"`
	CurrentDebt   float64 `json:"current_debt"`
}

func NewCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID:    c.CustomerID,
		Name:          c.Name(),
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Age:           c.Age,
		PhoneNumber:   c.PhoneNumber,
		MonthlyIncome: c.MonthlyIncome,
		ApprovedLimit: c.ApprovedLimit,
		CurrentDebt:   c.CurrentDebt,
	}
}
