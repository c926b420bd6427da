package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"credit-approval/internal/api/handler/dto"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	service customer.Service
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.Service, l *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

// Register creates a new customer with a derived approved limit.
//
// @Summary Register a customer
// @Description Registers a customer; the approved credit limit is derived as 36x monthly income rounded to the nearest 100,000.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.RegisterCustomerRequest true "Registration payload"
// @Success 201 {object} dto.CustomerResponse "Customer registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Router /register [post]
func (h *CustomerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, apperrors.NewValidationError("", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	cust, err := h.service.RegisterCustomer(r.Context(), req.FirstName, req.LastName, req.Age, req.PhoneNumber, req.MonthlyIncome)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewCustomerResponse(cust))
}

// GetCustomer returns a single customer.
//
// @Summary Get customer details
// @Tags Customers
// @Produce json
// @Param customerID path string true "Customer ID"
// @Success 200 {object} dto.CustomerResponse "Customer details"
// @Failure 404 {object} dto.NotFoundResponse "Customer not found"
// @Router /customers/{customerID} [get]
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	cust, err := h.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondNotFound(w, msgCustomerNotFound)
			return
		}
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}
