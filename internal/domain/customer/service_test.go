package customer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"credit-approval/internal/domain/customer"
	"credit-approval/internal/event"
	"credit-approval/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	return m.Called(ctx, cust).Error(0)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, customerID string) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	var c *customer.Customer
	if v := args.Get(0); v != nil {
		c = v.(*customer.Customer)
	}
	return c, args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context) ([]*customer.Customer, error) {
	args := m.Called(ctx)
	var cs []*customer.Customer
	if v := args.Get(0); v != nil {
		cs = v.([]*customer.Customer)
	}
	return cs, args.Error(1)
}

func (m *MockCustomerRepository) UpdateApprovedLimit(ctx context.Context, customerID string, approvedLimit float64) error {
	return m.Called(ctx, customerID, approvedLimit).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishCustomerRegistered(ctx context.Context, evt event.CustomerRegisteredEvent) error {
	return m.Called(ctx, evt).Error(0)
}

func (m *MockPublisher) PublishLoanApproved(ctx context.Context, evt event.LoanApprovedEvent) error {
	return m.Called(ctx, evt).Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegisterCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("should save the customer and publish a registration event", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		pub := new(MockPublisher)

		repo.On("Save", ctx, mock.AnythingOfType("*customer.Customer")).Return(nil)
		pub.On("PublishCustomerRegistered", ctx, mock.AnythingOfType("event.CustomerRegisteredEvent")).Return(nil)

		svc := customer.NewService(repo, pub, testLogger())
		cust, err := svc.RegisterCustomer(ctx, "Asha", "Rao", 34, "9876543210", 50_000)

		assert.NoError(t, err)
		assert.Equal(t, 1_800_000.0, cust.ApprovedLimit)
		repo.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("should trim whitespace from names", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("Save", ctx, mock.AnythingOfType("*customer.Customer")).Return(nil)

		svc := customer.NewService(repo, event.NoopPublisher{}, testLogger())
		cust, err := svc.RegisterCustomer(ctx, "  Asha ", " Rao ", 34, " 9876543210 ", 50_000)

		assert.NoError(t, err)
		assert.Equal(t, "Asha", cust.FirstName)
		assert.Equal(t, "Rao", cust.LastName)
		assert.Equal(t, "9876543210", cust.PhoneNumber)
	})

	t.Run("should reject invalid input", func(t *testing.T) {
		svc := customer.NewService(new(MockCustomerRepository), event.NoopPublisher{}, testLogger())

		cases := []struct {
			name      string
			firstName string
			lastName  string
			age       int
			income    float64
			field     string
		}{
			{"empty first name", "", "Rao", 34, 50_000, "first_name"},
			{"empty last name", "Asha", "", 34, 50_000, "last_name"},
			{"non positive age", "Asha", "Rao", 0, 50_000, "age"},
			{"negative income", "Asha", "Rao", 34, -1, "monthly_income"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.RegisterCustomer(ctx, tc.firstName, tc.lastName, tc.age, "9876543210", tc.income)

				var vErr *apperrors.ValidationError
				assert.ErrorAs(t, err, &vErr)
				assert.Equal(t, tc.field, vErr.Field)
			})
		}
	})

	t.Run("should still register when event publishing fails", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		pub := new(MockPublisher)

		repo.On("Save", ctx, mock.AnythingOfType("*customer.Customer")).Return(nil)
		pub.On("PublishCustomerRegistered", ctx, mock.AnythingOfType("event.CustomerRegisteredEvent")).
			Return(errors.New("broker down"))

		svc := customer.NewService(repo, pub, testLogger())
		cust, err := svc.RegisterCustomer(ctx, "Asha", "Rao", 34, "9876543210", 50_000)

		assert.NoError(t, err)
		assert.NotNil(t, cust)
	})
}

func TestGetCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the customer from the repository", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		want := &customer.Customer{CustomerID: "C20240101ABCDEF01"}
		repo.On("FindByID", ctx, want.CustomerID).Return(want, nil)

		svc := customer.NewService(repo, event.NoopPublisher{}, testLogger())
		got, err := svc.GetCustomer(ctx, want.CustomerID)

		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("should map a repository miss to not found", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("FindByID", ctx, "C20240101FFFFFFFF").Return(nil, customer.ErrNotFound)

		svc := customer.NewService(repo, event.NoopPublisher{}, testLogger())
		_, err := svc.GetCustomer(ctx, "C20240101FFFFFFFF")

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestRecomputeApprovedLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("should update the limit when income has changed", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		cust := &customer.Customer{
			CustomerID:    "C20240101ABCDEF01",
			MonthlyIncome: 60_000,
			ApprovedLimit: 1_800_000,
		}
		repo.On("FindByID", ctx, cust.CustomerID).Return(cust, nil)
		repo.On("UpdateApprovedLimit", ctx, cust.CustomerID, 2_200_000.0).Return(nil)

		svc := customer.NewService(repo, event.NoopPublisher{}, testLogger())
		updated, err := svc.RecomputeApprovedLimit(ctx, cust.CustomerID)

		assert.NoError(t, err)
		assert.Equal(t, 2_200_000.0, updated.ApprovedLimit)
		repo.AssertExpectations(t)
	})

	t.Run("should skip customers without a recorded income", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		cust := &customer.Customer{CustomerID: "C20240101ABCDEF01", MonthlyIncome: 0}
		repo.On("FindByID", ctx, cust.CustomerID).Return(cust, nil)

		svc := customer.NewService(repo, event.NoopPublisher{}, testLogger())
		_, err := svc.RecomputeApprovedLimit(ctx, cust.CustomerID)

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "UpdateApprovedLimit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should leave an already correct limit untouched", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		cust := &customer.Customer{
			CustomerID:    "C20240101ABCDEF01",
			MonthlyIncome: 50_000,
			ApprovedLimit: 1_800_000,
		}
		repo.On("FindByID", ctx, cust.CustomerID).Return(cust, nil)

		svc := customer.NewService(repo, event.NoopPublisher{}, testLogger())
		_, err := svc.RecomputeApprovedLimit(ctx, cust.CustomerID)

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "UpdateApprovedLimit", mock.Anything, mock.Anything, mock.Anything)
	})
}
