package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/RaikyD/orders-intake-service/internal/domain"
)

var ErrNotFound = errors.New("order not found")

// OrderRepo is a keyed store of orders. PutOrder replaces any record with the same id
// and either writes the whole order or nothing.
type OrderRepo interface {
	PutOrder(ctx context.Context, order domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
}
