package customer

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("customer not found")

	ErrDuplicateID = errors.New("customer ID already exists")
)

type Repository interface {
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID string) (*Customer, error)

	FindAll(ctx context.Context) ([]*Customer, error)

	UpdateApprovedLimit(ctx context.Context, customerID string, approvedLimit float64) error
}
