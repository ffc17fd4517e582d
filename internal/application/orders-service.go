package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/RaikyD/orders-intake-service/internal/domain"
	"github.com/RaikyD/orders-intake-service/internal/logger"
	"github.com/RaikyD/orders-intake-service/internal/repository"
)

// OrdersService is the keyed-store facade used by the consumers and the read API.
type OrdersService struct {
	repo repository.OrderRepo
}

func NewOrdersService(r repository.OrderRepo) *OrdersService {
	return &OrdersService{repo: r}
}

// Save writes the order under its id. Writing the same order again overwrites the
// record with identical content, so redelivered messages are harmless.
func (s *OrdersService) Save(ctx context.Context, order domain.Order) error {
	if order.ID == uuid.Nil {
		return fmt.Errorf("%w: order id is empty", domain.ErrStoreWrite)
	}
	if order.Format == "" {
		return fmt.Errorf("%w: order format is empty", domain.ErrStoreWrite)
	}
	if err := s.repo.PutOrder(ctx, order); err != nil {
		logger.Warn("Error while saving order", "order_id", order.ID, "err", err)
		return fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}
	return nil
}

func (s *OrdersService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		logger.Warn("Order service getbyid trouble", "order_id", id, "err", err)
		return nil, fmt.Errorf("repo.GetOrderByID: %w", err)
	}
	return o, nil
}
