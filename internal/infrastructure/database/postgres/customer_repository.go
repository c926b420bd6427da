package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-approval/internal/domain/customer"
	"credit-approval/internal/infrastructure/monitoring"
	"credit-approval/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const customerColumns = `customer_id, first_name, last_name, age, phone_number, monthly_income, approved_limit, current_debt, created_at, updated_at`

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	return &CustomerRepository{db: db, logger: logger.With("component", "CustomerRepository")}
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.CustomerID, &c.FirstName, &c.LastName, &c.Age, &c.PhoneNumber,
		&c.MonthlyIncome, &c.ApprovedLimit, &c.CurrentDebt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	insertSQL := `
        INSERT INTO customers (customer_id, first_name, last_name, age, phone_number, monthly_income, approved_limit, current_debt, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, insertSQL,
		c.CustomerID, c.FirstName, c.LastName, c.Age, c.PhoneNumber,
		c.MonthlyIncome, c.ApprovedLimit, c.CurrentDebt,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		translated := translateDBError(err, r.logger)
		if errors.Is(translated, apperrors.ErrAlreadyExists) {
			return fmt.Errorf("%w: %w", customer.ErrDuplicateID, translated)
		}
		return translated
	}

	r.logger.InfoContext(ctx, "Customer created in DB", "customer_id", c.CustomerID)
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID string) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE customer_id = $1`

	status := "success"
	startTime := time.Now()
	c, err := scanCustomer(r.db.QueryRow(ctx, query, customerID))
	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("FindCustomerByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", "customer_id", customerID)
			return nil, customer.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get customer by ID", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return c, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context) ([]*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY customer_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return customers, nil
}

func (r *CustomerRepository) UpdateApprovedLimit(ctx context.Context, customerID string, approvedLimit float64) error {
	sql := `UPDATE customers SET approved_limit = $1, updated_at = NOW() WHERE customer_id = $2`

	cmdTag, err := r.db.Exec(ctx, sql, approvedLimit, customerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update approved limit", "customer_id", customerID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.WarnContext(ctx, "Approved limit update affected zero rows", "customer_id", customerID)
		return customer.ErrNotFound
	}
	return nil
}
