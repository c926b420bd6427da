package customer

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ApprovedLimitMultiple is the income multiple used to derive a customer's
// approved credit limit at registration.
const ApprovedLimitMultiple = 36

// limitRoundingUnit is the unit the approved limit is rounded to (one lakh).
const limitRoundingUnit = 100_000.0

type Customer struct {
	CustomerID    string    `json:"customerId"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Age           int       `json:"age"`
	PhoneNumber   string    `json:"phoneNumber"`
	MonthlyIncome float64   `json:"monthlyIncome"`
	ApprovedLimit float64   `json:"approvedLimit"`
	CurrentDebt   float64   `json:"currentDebt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func NewCustomer(firstName, lastName string, age int, phoneNumber string, monthlyIncome float64) *Customer {
	now := time.Now()
	return &Customer{
		CustomerID:    GenerateCustomerID(now),
		FirstName:     firstName,
		LastName:      lastName,
		Age:           age,
		PhoneNumber:   phoneNumber,
		MonthlyIncome: monthlyIncome,
		ApprovedLimit: ApprovedLimitFor(monthlyIncome),
		CurrentDebt:   0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (c *Customer) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ApprovedLimitFor derives the credit limit as 36x monthly income rounded to
// the nearest 100,000.
func ApprovedLimitFor(monthlyIncome float64) float64 {
	return math.Round(ApprovedLimitMultiple*monthlyIncome/limitRoundingUnit) * limitRoundingUnit
}

// GenerateCustomerID produces an identifier of the form C<yyyymmdd><8 hex>.
func GenerateCustomerID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("C%s%s", now.Format("20060102"), suffix)
}
