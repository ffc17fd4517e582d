package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/RaikyD/orders-intake-service/internal/domain"
)

type MemoryOrderRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]domain.Order
}

var _ OrderRepo = (*MemoryOrderRepository)(nil)

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{byID: make(map[uuid.UUID]domain.Order)}
}

func (m *MemoryOrderRepository) PutOrder(_ context.Context, o domain.Order) error {
	o.Items = slices.Clone(o.Items)
	m.mu.Lock()
	m.byID[o.ID] = o
	m.mu.Unlock()
	return nil
}

func (m *MemoryOrderRepository) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.RLock()
	o, ok := m.byID[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	o.Items = slices.Clone(o.Items)
	return &o, nil
}

func (m *MemoryOrderRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}
