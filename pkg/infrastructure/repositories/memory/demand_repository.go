package memory

import (
	"sync"
	"time"

	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/domain/repositories"
)

// DemandRepository provides an in-memory independent demand store
type DemandRepository struct {
	mu      sync.RWMutex
	demands []entities.IndependentDemand
	version uint64
}

// NewDemandRepository creates an in-memory demand repository
func NewDemandRepository() *DemandRepository {
	return &DemandRepository{}
}

// Verify interface compliance
var _ repositories.DemandRepository = (*DemandRepository)(nil)

// SnapshotVersion returns the monotonic catalog version (Versioned interface)
func (r *DemandRepository) SnapshotVersion() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// LoadDemands loads demands into the repository (DemandRepository interface)
func (r *DemandRepository) LoadDemands(demands []*entities.IndependentDemand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, demand := range demands {
		r.demands = append(r.demands, *demand)
	}
	r.version++
	return nil
}

// GetDemands returns all demands (DemandRepository interface)
func (r *DemandRepository) GetDemands() ([]*entities.IndependentDemand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entities.IndependentDemand, len(r.demands))
	for i := range r.demands {
		demand := r.demands[i]
		out[i] = &demand
	}
	return out, nil
}

// GetDemandsInHorizon returns demands inside [start, end] inclusive
// (DemandRepository interface)
func (r *DemandRepository) GetDemandsInHorizon(start, end time.Time) ([]*entities.IndependentDemand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entities.IndependentDemand
	for i := range r.demands {
		if r.demands[i].NeedDate.Before(start) || r.demands[i].NeedDate.After(end) {
			continue
		}
		demand := r.demands[i]
		out = append(out, &demand)
	}
	return out, nil
}
