package repositories

import "github.com/openfactory/planning/pkg/domain/entities"

// StandardCostRepository persists standard cost history. A rollup run appends
// one record per touched item; the prior active record for that item is
// flagged inactive, never deleted.
type StandardCostRepository interface {
	// SaveRecords atomically appends the records and deactivates each item's
	// prior active record.
	SaveRecords(records []*entities.StandardCostRecord) error

	// GetRecords returns an item's cost history ordered by effective date
	// descending.
	GetRecords(itemID entities.ItemID) ([]*entities.StandardCostRecord, error)

	// GetActiveRecord returns the item's current active record, or nil if the
	// item has never been costed.
	GetActiveRecord(itemID entities.ItemID) (*entities.StandardCostRecord, error)

	// GetByRun returns the records written by one rollup run, in insertion
	// order.
	GetByRun(runID entities.RunID) ([]*entities.StandardCostRecord, error)
}
