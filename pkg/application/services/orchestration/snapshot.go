package orchestration

import (
	"fmt"
	"time"

	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/domain/repositories"
)

// catalogVersions records the snapshot version of each catalog repository at
// capture time
type catalogVersions struct {
	items  uint64
	bom    uint64
	supply uint64
	demand uint64
}

// Snapshot is the immutable catalog capture a run works from. Captured once
// at run start so concurrent master-data edits can never tear a read; the
// versions are re-checked before outputs persist.
type Snapshot struct {
	TakenAt  time.Time
	Items    map[entities.ItemID]*entities.Item
	BOMLines []*entities.BOMLine
	Supply   map[entities.ItemID]*entities.SupplyPosition
	Demands  []*entities.IndependentDemand

	versions catalogVersions
}

// captureSnapshot copies the catalog state as of now
func captureSnapshot(
	itemRepo repositories.ItemRepository,
	bomRepo repositories.BOMRepository,
	supplyRepo repositories.SupplyRepository,
	demandRepo repositories.DemandRepository,
) (*Snapshot, error) {
	snapshot := &Snapshot{
		TakenAt: time.Now().UTC(),
		versions: catalogVersions{
			items:  itemRepo.SnapshotVersion(),
			bom:    bomRepo.SnapshotVersion(),
			supply: supplyRepo.SnapshotVersion(),
			demand: demandRepo.SnapshotVersion(),
		},
	}

	items, err := itemRepo.GetAllItems()
	if err != nil {
		return nil, fmt.Errorf("failed to capture item master: %w", err)
	}
	snapshot.Items = make(map[entities.ItemID]*entities.Item, len(items))
	for _, item := range items {
		copied := *item
		snapshot.Items[item.ID] = &copied
	}

	lines, err := bomRepo.GetAllBOMLines()
	if err != nil {
		return nil, fmt.Errorf("failed to capture BOM lines: %w", err)
	}
	snapshot.BOMLines = make([]*entities.BOMLine, len(lines))
	for i, line := range lines {
		copied := *line
		snapshot.BOMLines[i] = &copied
	}

	positions, err := supplyRepo.GetAllSupplyPositions()
	if err != nil {
		return nil, fmt.Errorf("failed to capture supply positions: %w", err)
	}
	snapshot.Supply = make(map[entities.ItemID]*entities.SupplyPosition, len(positions))
	for _, position := range positions {
		copied := *position
		copied.OpenOrders = append([]entities.SupplyOrder(nil), position.OpenOrders...)
		snapshot.Supply[position.ItemID] = &copied
	}

	demands, err := demandRepo.GetDemands()
	if err != nil {
		return nil, fmt.Errorf("failed to capture independent demand: %w", err)
	}
	snapshot.Demands = make([]*entities.IndependentDemand, len(demands))
	for i, demand := range demands {
		copied := *demand
		snapshot.Demands[i] = &copied
	}

	return snapshot, nil
}

// verify re-reads the catalog versions and fails with a
// ConcurrentModificationError if any changed since capture
func (s *Snapshot) verify(
	itemRepo repositories.ItemRepository,
	bomRepo repositories.BOMRepository,
	supplyRepo repositories.SupplyRepository,
	demandRepo repositories.DemandRepository,
) error {
	switch {
	case itemRepo.SnapshotVersion() != s.versions.items:
		return &entities.ConcurrentModificationError{Resource: "item master"}
	case bomRepo.SnapshotVersion() != s.versions.bom:
		return &entities.ConcurrentModificationError{Resource: "BOM lines"}
	case supplyRepo.SnapshotVersion() != s.versions.supply:
		return &entities.ConcurrentModificationError{Resource: "supply positions"}
	case demandRepo.SnapshotVersion() != s.versions.demand:
		return &entities.ConcurrentModificationError{Resource: "independent demand"}
	}
	return nil
}
