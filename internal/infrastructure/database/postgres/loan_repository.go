package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-approval/internal/domain/loan"
	"credit-approval/internal/infrastructure/monitoring"
	"credit-approval/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

var errMsgFormat = "%w: %w"

const loanColumns = `loan_id, customer_id, loan_amount, tenure, interest_rate, monthly_repayment, emis_paid_on_time, start_date, end_date, is_active, created_at, updated_at`

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.LoanID, &l.CustomerID, &l.LoanAmount, &l.Tenure, &l.InterestRate,
		&l.MonthlyRepayment, &l.EMIsPaidOnTime, &l.StartDate, &l.EndDate,
		&l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateApprovedLoan persists the loan and the debt increment as one unit.
// The customer row is locked first so concurrent originations for the same
// customer serialize, and the installment total is re-checked under that
// lock before anything is written.
func (r *LoanRepository) CreateApprovedLoan(ctx context.Context, newLoan *loan.Loan, installmentCap loan.Money) (*loan.Loan, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", rbErr)
		}
	}()

	lockSQL := `SELECT current_debt FROM customers WHERE customer_id = $1 FOR UPDATE`
	var currentDebt float64
	if err := tx.QueryRow(ctx, lockSQL, newLoan.CustomerID).Scan(&currentDebt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer vanished before loan insert", "customer_id", newLoan.CustomerID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to lock customer row", "customer_id", newLoan.CustomerID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	emiSQL := `SELECT COALESCE(SUM(monthly_repayment), 0) FROM loans WHERE customer_id = $1 AND is_active`
	var activeEMIs float64
	if err := tx.QueryRow(ctx, emiSQL, newLoan.CustomerID).Scan(&activeEMIs); err != nil {
		r.logger.ErrorContext(ctx, "Failed to sum active installments", "customer_id", newLoan.CustomerID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	if activeEMIs+newLoan.MonthlyRepayment > installmentCap {
		r.logger.WarnContext(ctx, "Affordability cap breached under customer lock",
			"customer_id", newLoan.CustomerID,
			"active_emis", activeEMIs,
			"new_emi", newLoan.MonthlyRepayment,
			"cap", installmentCap,
		)
		return nil, loan.ErrAffordabilityBreached
	}

	insertSQL := `
        INSERT INTO loans (loan_id, customer_id, loan_amount, tenure, interest_rate, monthly_repayment, emis_paid_on_time, start_date, end_date, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
        RETURNING ` + loanColumns

	created, err := scanLoan(tx.QueryRow(ctx, insertSQL,
		newLoan.LoanID, newLoan.CustomerID, newLoan.LoanAmount, newLoan.Tenure,
		newLoan.InterestRate, newLoan.MonthlyRepayment, newLoan.EMIsPaidOnTime,
		newLoan.StartDate, newLoan.EndDate, newLoan.IsActive,
	))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return nil, fmt.Errorf("%w: failed to insert loan: %w", apperrors.ErrDatabase, err)
	}

	debtSQL := `UPDATE customers SET current_debt = current_debt + $1, updated_at = NOW() WHERE customer_id = $2`
	cmdTag, err := tx.Exec(ctx, debtSQL, newLoan.LoanAmount, newLoan.CustomerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to increment customer debt", "customer_id", newLoan.CustomerID, "error", err)
		return nil, fmt.Errorf("%w: failed to update customer debt: %w", apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Debt update affected zero rows", "customer_id", newLoan.CustomerID)
		return nil, fmt.Errorf("%w: debt update affected zero rows", apperrors.ErrDatabase)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit loan creation", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", created.LoanID, "customer_id", created.CustomerID)
	return created, nil
}

func (r *LoanRepository) CreateIngestedLoan(ctx context.Context, newLoan *loan.Loan) error {
	insertSQL := `
        INSERT INTO loans (loan_id, customer_id, loan_amount, tenure, interest_rate, monthly_repayment, emis_paid_on_time, start_date, end_date, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`

	_, err := r.db.Exec(ctx, insertSQL,
		newLoan.LoanID, newLoan.CustomerID, newLoan.LoanAmount, newLoan.Tenure,
		newLoan.InterestRate, newLoan.MonthlyRepayment, newLoan.EMIsPaidOnTime,
		newLoan.StartDate, newLoan.EndDate, newLoan.IsActive,
	)
	if err != nil {
		return translateDBError(err, r.logger)
	}
	return nil
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, loanID string) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE loan_id = $1`

	status := "success"
	startTime := time.Now()
	l, err := scanLoan(r.db.QueryRow(ctx, query, loanID))
	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetLoanByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return l, nil
}

func (r *LoanRepository) GetLoansByCustomer(ctx context.Context, customerID string) ([]*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1 ORDER BY start_date, loan_id`

	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customer loans", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	return collectLoans(rows, r.logger)
}

func (r *LoanRepository) GetActiveLoans(ctx context.Context) ([]*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE is_active ORDER BY loan_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query active loans", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	return collectLoans(rows, r.logger)
}

func collectLoans(rows pgx.Rows, logger *slog.Logger) ([]*loan.Loan, error) {
	loans := make([]*loan.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			logger.Error("Failed to scan loan row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Error iterating loan rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return loans, nil
}

func (r *LoanRepository) UpdateActiveFlag(ctx context.Context, loanID string, isActive bool) error {
	sql := `UPDATE loans SET is_active = $1, updated_at = NOW() WHERE loan_id = $2`

	cmdTag, err := r.db.Exec(ctx, sql, isActive, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update active flag", "loan_id", loanID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Active flag update affected zero rows", "loan_id", loanID)
		return fmt.Errorf("%w: active flag update affected zero rows", apperrors.ErrDatabase)
	}
	return nil
}

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			contextLogger.Warn("Database unique constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyExists, pgErr.ConstraintName)
		}

		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s", apperrors.ErrDatabase, pgErr.Code)
	}

	contextLogger.Error("Generic database error", "error", err)
	return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
}
