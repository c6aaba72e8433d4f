package memory

import (
	"fmt"
	"sync"

	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/domain/repositories"
)

// SupplyRepository provides an in-memory supply position store
type SupplyRepository struct {
	mu        sync.RWMutex
	positions map[entities.ItemID]entities.SupplyPosition
	version   uint64
}

// NewSupplyRepository creates an in-memory supply repository
func NewSupplyRepository() *SupplyRepository {
	return &SupplyRepository{
		positions: make(map[entities.ItemID]entities.SupplyPosition),
	}
}

// Verify interface compliance
var _ repositories.SupplyRepository = (*SupplyRepository)(nil)

// SnapshotVersion returns the monotonic catalog version (Versioned interface)
func (r *SupplyRepository) SnapshotVersion() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// LoadSupplyPositions loads positions into the repository
// (SupplyRepository interface)
func (r *SupplyRepository) LoadSupplyPositions(positions []*entities.SupplyPosition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, position := range positions {
		if _, exists := r.positions[position.ItemID]; exists {
			return fmt.Errorf("duplicate supply position for item: %s", position.ItemID)
		}
		copied := *position
		copied.OpenOrders = append([]entities.SupplyOrder(nil), position.OpenOrders...)
		r.positions[position.ItemID] = copied
	}
	r.version++
	return nil
}

// GetSupplyPosition returns one item's supply position, or an empty position
// when the item holds no stock and no orders (SupplyRepository interface)
func (r *SupplyRepository) GetSupplyPosition(itemID entities.ItemID) (*entities.SupplyPosition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	position, exists := r.positions[itemID]
	if !exists {
		return &entities.SupplyPosition{ItemID: itemID}, nil
	}
	copied := position
	copied.OpenOrders = append([]entities.SupplyOrder(nil), position.OpenOrders...)
	return &copied, nil
}

// GetAllSupplyPositions returns all positions (SupplyRepository interface)
func (r *SupplyRepository) GetAllSupplyPositions() ([]*entities.SupplyPosition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entities.SupplyPosition, 0, len(r.positions))
	for _, position := range r.positions {
		copied := position
		copied.OpenOrders = append([]entities.SupplyOrder(nil), position.OpenOrders...)
		out = append(out, &copied)
	}
	return out, nil
}
