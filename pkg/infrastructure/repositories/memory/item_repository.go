package memory

import (
	"fmt"
	"sync"

	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/domain/repositories"
)

// ItemRepository provides an in-memory item master implementation
type ItemRepository struct {
	mu      sync.RWMutex
	items   []entities.Item
	index   map[entities.ItemID]int
	version uint64
}

// NewItemRepository creates an in-memory item repository
func NewItemRepository(expectedItems int) *ItemRepository {
	return &ItemRepository{
		items: make([]entities.Item, 0, expectedItems),
		index: make(map[entities.ItemID]int, expectedItems),
	}
}

// Verify interface compliance
var _ repositories.ItemRepository = (*ItemRepository)(nil)

// SnapshotVersion returns the monotonic catalog version (Versioned interface)
func (r *ItemRepository) SnapshotVersion() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// LoadItems loads items into the repository (ItemRepository interface)
func (r *ItemRepository) LoadItems(items []*entities.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		if _, exists := r.index[item.ID]; exists {
			return fmt.Errorf("duplicate item id: %s", item.ID)
		}
		r.index[item.ID] = len(r.items)
		r.items = append(r.items, *item)
	}
	r.version++
	return nil
}

// GetItem returns item master data for an item id (ItemRepository interface)
func (r *ItemRepository) GetItem(itemID entities.ItemID) (*entities.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, exists := r.index[itemID]
	if !exists {
		return nil, fmt.Errorf("item not found: %s", itemID)
	}
	item := r.items[i]
	return &item, nil
}

// GetAllItems returns all items (ItemRepository interface)
func (r *ItemRepository) GetAllItems() ([]*entities.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]*entities.Item, len(r.items))
	for i := range r.items {
		item := r.items[i]
		items[i] = &item
	}
	return items, nil
}
