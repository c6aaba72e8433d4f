package repositories

import "github.com/openfactory/planning/pkg/domain/entities"

// Versioned exposes a monotonic snapshot version. The orchestrator captures it
// at run start and re-checks it before persisting outputs; a change mid-run
// invalidates the snapshot.
type Versioned interface {
	SnapshotVersion() uint64
}

// ItemRepository provides access to item master data
type ItemRepository interface {
	Versioned
	GetItem(itemID entities.ItemID) (*entities.Item, error)
	GetAllItems() ([]*entities.Item, error)
	LoadItems(items []*entities.Item) error
}
