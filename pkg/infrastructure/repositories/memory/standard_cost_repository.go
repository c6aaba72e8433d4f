package memory

import (
	"sort"
	"sync"

	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/domain/repositories"
)

// StandardCostRepository provides an in-memory standard cost history store
type StandardCostRepository struct {
	mu      sync.RWMutex
	records []entities.StandardCostRecord
}

// NewStandardCostRepository creates an in-memory standard cost repository
func NewStandardCostRepository() *StandardCostRepository {
	return &StandardCostRepository{}
}

// Verify interface compliance
var _ repositories.StandardCostRepository = (*StandardCostRepository)(nil)

// SaveRecords appends the records and deactivates each item's prior active
// record (StandardCostRepository interface)
func (r *StandardCostRepository) SaveRecords(records []*entities.StandardCostRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	touched := make(map[entities.ItemID]bool, len(records))
	for _, record := range records {
		touched[record.ItemID] = true
	}
	for i := range r.records {
		if touched[r.records[i].ItemID] {
			r.records[i].Active = false
		}
	}
	for _, record := range records {
		copied := *record
		copied.Breakdown = record.Breakdown.Clone()
		r.records = append(r.records, copied)
	}
	return nil
}

// GetRecords returns an item's cost history, effective date descending with
// newest insertions first on ties (StandardCostRepository interface)
func (r *StandardCostRepository) GetRecords(itemID entities.ItemID) ([]*entities.StandardCostRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	// Reverse insertion order so the latest write leads inside one
	// effective date after the stable sort.
	var out []*entities.StandardCostRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].ItemID == itemID {
			record := r.records[i]
			record.Breakdown = r.records[i].Breakdown.Clone()
			out = append(out, &record)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveDate.After(out[j].EffectiveDate)
	})
	return out, nil
}

// GetActiveRecord returns the item's current active record
// (StandardCostRepository interface)
func (r *StandardCostRepository) GetActiveRecord(itemID entities.ItemID) (*entities.StandardCostRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].ItemID == itemID && r.records[i].Active {
			record := r.records[i]
			record.Breakdown = r.records[i].Breakdown.Clone()
			return &record, nil
		}
	}
	return nil, nil
}

// GetByRun returns the records written by one rollup run
// (StandardCostRepository interface)
func (r *StandardCostRepository) GetByRun(runID entities.RunID) ([]*entities.StandardCostRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entities.StandardCostRecord
	for i := range r.records {
		if r.records[i].RunID == runID {
			record := r.records[i]
			record.Breakdown = r.records[i].Breakdown.Clone()
			out = append(out, &record)
		}
	}
	return out, nil
}
