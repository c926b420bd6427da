package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"credit-approval/internal/domain/loan"
	"credit-approval/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

var loanStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
var loanEnd = loanStart.AddDate(0, 24, 0)

var loanTest = &loan.Loan{
	LoanID:           "L20240301ABCDEF01",
	CustomerID:       "C20240101ABCDEF01",
	LoanAmount:       200_000,
	Tenure:           24,
	InterestRate:     9,
	MonthlyRepayment: 9_136.17,
	EMIsPaidOnTime:   0,
	StartDate:        loanStart,
	EndDate:          &loanEnd,
	IsActive:         true,
	CreatedAt:        loanStart,
	UpdatedAt:        loanStart,
}

func setupLoanRepo(t *testing.T) (context.Context, *LoanRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}

	ctx := context.Background()
	repo := NewLoanRepository(mockPool, logger)

	return ctx, repo, mockPool
}

func loanRows(l *loan.Loan) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"loan_id", "customer_id", "loan_amount", "tenure", "interest_rate",
		"monthly_repayment", "emis_paid_on_time", "start_date", "end_date",
		"is_active", "created_at", "updated_at",
	}).AddRow(
		l.LoanID, l.CustomerID, l.LoanAmount, l.Tenure, l.InterestRate,
		l.MonthlyRepayment, l.EMIsPaidOnTime, l.StartDate, l.EndDate,
		l.IsActive, l.CreatedAt, l.UpdatedAt,
	)
}

func expectApprovedLoanPrelude(mockPool pgxmock.PgxPoolIface, l *loan.Loan, currentDebt, activeEMIs float64) {
	mockPool.ExpectBegin()
	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT current_debt FROM customers WHERE customer_id = $1 FOR UPDATE`)).
		WithArgs(l.CustomerID).
		WillReturnRows(pgxmock.NewRows([]string{"current_debt"}).AddRow(currentDebt))
	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(monthly_repayment), 0) FROM loans WHERE customer_id = $1 AND is_active`)).
		WithArgs(l.CustomerID).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(activeEMIs))
}

func TestCreateApprovedLoanWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	expectApprovedLoanPrelude(mockPool, loanTest, 0, 0)
	mockPool.ExpectQuery(regexp.QuoteMeta(`INSERT INTO loans`)).
		WithArgs(
			loanTest.LoanID, loanTest.CustomerID, loanTest.LoanAmount, loanTest.Tenure,
			loanTest.InterestRate, loanTest.MonthlyRepayment, loanTest.EMIsPaidOnTime,
			loanTest.StartDate, loanTest.EndDate, loanTest.IsActive,
		).
		WillReturnRows(loanRows(loanTest))
	mockPool.ExpectExec(regexp.QuoteMeta(`UPDATE customers SET current_debt = current_debt + $1, updated_at = NOW() WHERE customer_id = $2`)).
		WithArgs(loanTest.LoanAmount, loanTest.CustomerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockPool.ExpectCommit()
	mockPool.ExpectRollback()

	created, err := repo.CreateApprovedLoan(ctx, loanTest, 50_000)
	assert.NoError(t, err)
	assert.Equal(t, loanTest, created)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestCreateApprovedLoanWhenAffordabilityBreachedUnderLock(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	// A concurrent approval already pushed active installments to the cap.
	expectApprovedLoanPrelude(mockPool, loanTest, 500_000, 45_000)
	mockPool.ExpectRollback()

	_, err := repo.CreateApprovedLoan(ctx, loanTest, 50_000)
	assert.ErrorIs(t, err, loan.ErrAffordabilityBreached)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestCreateApprovedLoanWhenCustomerMissing(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	mockPool.ExpectBegin()
	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT current_debt FROM customers WHERE customer_id = $1 FOR UPDATE`)).
		WithArgs(loanTest.CustomerID).
		WillReturnError(pgx.ErrNoRows)
	mockPool.ExpectRollback()

	_, err := repo.CreateApprovedLoan(ctx, loanTest, 50_000)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestCreateIngestedLoanWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	mockPool.ExpectExec(regexp.QuoteMeta(`INSERT INTO loans`)).
		WithArgs(
			loanTest.LoanID, loanTest.CustomerID, loanTest.LoanAmount, loanTest.Tenure,
			loanTest.InterestRate, loanTest.MonthlyRepayment, loanTest.EMIsPaidOnTime,
			loanTest.StartDate, loanTest.EndDate, loanTest.IsActive,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.CreateIngestedLoan(ctx, loanTest)
	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestGetLoanByIDWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT `+loanColumns+` FROM loans WHERE loan_id = $1`)).
		WithArgs(loanTest.LoanID).
		WillReturnRows(loanRows(loanTest))

	found, err := repo.GetLoanByID(ctx, loanTest.LoanID)
	assert.NoError(t, err)
	assert.Equal(t, loanTest, found)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestGetLoanByIDWhenNotFound(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT `+loanColumns+` FROM loans WHERE loan_id = $1`)).
		WithArgs("L20240301FFFFFFFF").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetLoanByID(ctx, "L20240301FFFFFFFF")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestGetLoansByCustomerWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT `+loanColumns+` FROM loans WHERE customer_id = $1 ORDER BY start_date, loan_id`)).
		WithArgs(loanTest.CustomerID).
		WillReturnRows(loanRows(loanTest))

	loans, err := repo.GetLoansByCustomer(ctx, loanTest.CustomerID)
	assert.NoError(t, err)
	assert.Len(t, loans, 1)
	assert.Equal(t, loanTest, loans[0])
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestGetLoansByCustomerWhenEmpty(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT `+loanColumns+` FROM loans WHERE customer_id = $1 ORDER BY start_date, loan_id`)).
		WithArgs("C20240101FFFFFFFF").
		WillReturnRows(pgxmock.NewRows([]string{
			"loan_id", "customer_id", "loan_amount", "tenure", "interest_rate",
			"monthly_repayment", "emis_paid_on_time", "start_date", "end_date",
			"is_active", "created_at", "updated_at",
		}))

	loans, err := repo.GetLoansByCustomer(ctx, "C20240101FFFFFFFF")
	assert.NoError(t, err)
	assert.Empty(t, loans)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestGetActiveLoansWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT ` + loanColumns + ` FROM loans WHERE is_active ORDER BY loan_id`)).
		WillReturnRows(loanRows(loanTest))

	loans, err := repo.GetActiveLoans(ctx)
	assert.NoError(t, err)
	assert.Len(t, loans, 1)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestUpdateActiveFlagWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	mockPool.ExpectExec(regexp.QuoteMeta(`UPDATE loans SET is_active = $1, updated_at = NOW() WHERE loan_id = $2`)).
		WithArgs(false, loanTest.LoanID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateActiveFlag(ctx, loanTest.LoanID, false)
	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestUpdateActiveFlagWhenLoanMissing(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	mockPool.ExpectExec(regexp.QuoteMeta(`UPDATE loans SET is_active = $1, updated_at = NOW() WHERE loan_id = $2`)).
		WithArgs(false, "L20240301FFFFFFFF").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateActiveFlag(ctx, "L20240301FFFFFFFF", false)
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}
