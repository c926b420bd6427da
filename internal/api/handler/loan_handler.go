package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"credit-approval/internal/api/handler/dto"
	"credit-approval/internal/domain/loan"
	"credit-approval/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

const (
	msgCustomerNotFound = "Customer not found"
	msgLoanNotFound     = "Loan not found"
)

type LoanHandler struct {
	service loan.Service
	logger  *slog.Logger
}

func NewLoanHandler(s loan.Service, l *slog.Logger) *LoanHandler {
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

func (h *LoanHandler) decodeApplication(r *http.Request) (*dto.LoanApplicationRequest, error) {
	var req dto.LoanApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// CheckEligibility evaluates a loan application without persisting anything.
//
// @Summary Check loan eligibility
// @Description Scores the customer's loan history, applies the tiered approval policy and the affordability cap, and reports the verdict with the possibly corrected interest rate and monthly installment.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.LoanApplicationRequest true "Loan application payload"
// @Success 200 {object} dto.EligibilityResponse "Eligibility verdict"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.NotFoundResponse "Customer not found"
// @Router /check-eligibility [post]
func (h *LoanHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeApplication(r)
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.CheckEligibility(r.Context(), req.ToDomain())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondNotFound(w, msgCustomerNotFound)
			return
		}
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewEligibilityResponse(result))
}

// CreateLoan runs the full origination workflow.
//
// @Summary Create an approved loan
// @Description Evaluates the application like check-eligibility and, when approved, persists the loan together with the customer's debt increment. Rejections return 400 with a null loan_id.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.LoanApplicationRequest true "Loan application payload"
// @Success 201 {object} dto.CreateLoanResponse "Loan approved and created"
// @Failure 400 {object} dto.CreateLoanResponse "Loan rejected"
// @Failure 404 {object} dto.NotFoundResponse "Customer not found"
// @Router /create-loan [post]
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeApplication(r)
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.CreateLoan(r.Context(), req.ToDomain())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondNotFound(w, msgCustomerNotFound)
			return
		}
		respondError(w, err)
		return
	}

	status := http.StatusCreated
	if !result.Approved {
		status = http.StatusBadRequest
	}
	respondJSON(w, status, dto.NewCreateLoanResponse(result))
}

// ViewLoan returns a single loan with an embedded customer summary.
//
// @Summary View loan details
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanDetailResponse "Loan details"
// @Failure 404 {object} dto.NotFoundResponse "Loan not found"
// @Router /view-loan/{loanID} [get]
func (h *LoanHandler) ViewLoan(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "loanID")
	if loanID == "" {
		respondError(w, fmt.Errorf("%w: loanID not found in URL path", apperrors.ErrInvalidArgument))
		return
	}

	detail, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondNotFound(w, msgLoanNotFound)
			return
		}
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanDetailResponse(detail))
}

// ViewLoans lists all loans owned by a customer.
//
// @Summary View a customer's loans
// @Tags Loans
// @Produce json
// @Param customerID path string true "Customer ID"
// @Success 200 {array} dto.CustomerLoanItem "Loans owned by the customer"
// @Failure 404 {object} dto.NotFoundResponse "Customer not found"
// @Router /view-loans/{customerID} [get]
func (h *LoanHandler) ViewLoans(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	if customerID == "" {
		respondError(w, fmt.Errorf("%w: customerID not found in URL path", apperrors.ErrInvalidArgument))
		return
	}

	loans, err := h.service.GetCustomerLoans(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondNotFound(w, msgCustomerNotFound)
			return
		}
		respondError(w, err)
		return
	}

	if len(loans) == 0 {
		respondJSON(w, http.StatusOK, dto.MessageResponse{Message: "No loans found for this customer"})
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerLoanList(loans))
}
