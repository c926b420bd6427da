package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"credit-approval/internal/event"
	"credit-approval/internal/pkg/apperrors"
)

type Service interface {
	RegisterCustomer(ctx context.Context, firstName, lastName string, age int, phoneNumber string, monthlyIncome float64) (*Customer, error)

	GetCustomer(ctx context.Context, customerID string) (*Customer, error)

	ListCustomers(ctx context.Context) ([]*Customer, error)

	RecomputeApprovedLimit(ctx context.Context, customerID string) (*Customer, error)
}

var _ Service = (*customerService)(nil)

type customerService struct {
	repo   Repository
	pub    event.Publisher
	logger *slog.Logger
}

func NewService(repo Repository, publisher event.Publisher, logger *slog.Logger) Service {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewService, using default stderr handler")
	}
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}

	return &customerService{
		repo:   repo,
		pub:    publisher,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) RegisterCustomer(ctx context.Context, firstName, lastName string, age int, phoneNumber string, monthlyIncome float64) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to register new customer")

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	phoneNumber = strings.TrimSpace(phoneNumber)
	if firstName == "" {
		s.logger.WarnContext(ctx, "Validation failed: first name is empty")
		return nil, apperrors.NewValidationError("first_name", "first name cannot be empty")
	}
	if lastName == "" {
		s.logger.WarnContext(ctx, "Validation failed: last name is empty")
		return nil, apperrors.NewValidationError("last_name", "last name cannot be empty")
	}
	if age <= 0 {
		s.logger.WarnContext(ctx, "Validation failed: age must be positive", slog.Int("age", age))
		return nil, apperrors.NewValidationError("age", "age must be positive")
	}
	if monthlyIncome < 0 {
		s.logger.WarnContext(ctx, "Validation failed: monthly income is negative")
		return nil, apperrors.NewValidationError("monthly_income", "monthly income cannot be negative")
	}

	cust := NewCustomer(firstName, lastName, age, phoneNumber, monthlyIncome)
	logCtx := s.logger.With(slog.String("customerID", cust.CustomerID))

	if err := s.repo.Save(ctx, cust); err != nil {
		logCtx.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	registered := event.CustomerRegisteredEvent{
		CustomerID:    cust.CustomerID,
		Name:          cust.Name(),
		MonthlyIncome: cust.MonthlyIncome,
		ApprovedLimit: cust.ApprovedLimit,
		Timestamp:     time.Now(),
	}
	if pubErr := s.pub.PublishCustomerRegistered(ctx, registered); pubErr != nil {
		logCtx.ErrorContext(ctx, "Customer registered, but FAILED to publish registration event", slog.Any("error", pubErr))
	}

	logCtx.InfoContext(ctx, "Successfully registered new customer", slog.Float64("approvedLimit", cust.ApprovedLimit))
	return cust, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found", slog.String("customerID", customerID))
			return nil, fmt.Errorf("%w: customer %s", apperrors.ErrNotFound, customerID)
		}
		s.logger.ErrorContext(ctx, "Failed to get customer", slog.String("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer %s: %v", apperrors.ErrInternalServer, customerID, err)
	}
	return cust, nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]*Customer, error) {
	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list customers", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to list customers: %v", apperrors.ErrInternalServer, err)
	}
	return customers, nil
}

// RecomputeApprovedLimit re-derives the limit from the current income. The
// invariant is not auto-enforced after registration; this is the explicit
// recompute path used by the batch job.
func (s *customerService) RecomputeApprovedLimit(ctx context.Context, customerID string) (*Customer, error) {
	cust, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if cust.MonthlyIncome <= 0 {
		s.logger.DebugContext(ctx, "Skipping limit recompute for customer without income", slog.String("customerID", customerID))
		return cust, nil
	}

	newLimit := ApprovedLimitFor(cust.MonthlyIncome)
	if newLimit == cust.ApprovedLimit {
		return cust, nil
	}

	if err := s.repo.UpdateApprovedLimit(ctx, customerID, newLimit); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update approved limit", slog.String("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to update approved limit for %s: %w", customerID, err)
	}

	cust.ApprovedLimit = newLimit
	s.logger.InfoContext(ctx, "Approved limit recomputed", slog.String("customerID", customerID), slog.Float64("newLimit", newLimit))
	return cust, nil
}
