package memory

import (
	"fmt"
	"sync"

	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/domain/repositories"
)

type storedRecommendation struct {
	rec      entities.PlannedRecommendation
	scopeKey string
}

// RecommendationRepository provides an in-memory planned recommendation
// store with scope supersession
type RecommendationRepository struct {
	mu   sync.RWMutex
	recs []storedRecommendation
}

// NewRecommendationRepository creates an in-memory recommendation repository
func NewRecommendationRepository() *RecommendationRepository {
	return &RecommendationRepository{}
}

// Verify interface compliance
var _ repositories.RecommendationRepository = (*RecommendationRepository)(nil)

// ReplaceForScope stores a completed run's recommendations and supersedes
// prior Proposed recommendations for the same scope key
// (RecommendationRepository interface)
func (r *RecommendationRepository) ReplaceForScope(
	scopeKey string,
	runID entities.RunID,
	recs []*entities.PlannedRecommendation,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.recs {
		if r.recs[i].scopeKey != scopeKey || r.recs[i].rec.RunID == runID {
			continue
		}
		// Accepted and Rejected recommendations belong to the caller's
		// workflow now; only open proposals are replaced.
		if r.recs[i].rec.Status == entities.Proposed {
			r.recs[i].rec.Status = entities.Superseded
		}
	}

	for _, rec := range recs {
		r.recs = append(r.recs, storedRecommendation{rec: *rec, scopeKey: scopeKey})
	}
	return nil
}

// GetByRun returns a run's recommendations (RecommendationRepository interface)
func (r *RecommendationRepository) GetByRun(runID entities.RunID) ([]*entities.PlannedRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entities.PlannedRecommendation
	for i := range r.recs {
		if r.recs[i].rec.RunID == runID {
			rec := r.recs[i].rec
			out = append(out, &rec)
		}
	}
	return out, nil
}

// GetByItem returns every stored recommendation for an item
// (RecommendationRepository interface)
func (r *RecommendationRepository) GetByItem(itemID entities.ItemID) ([]*entities.PlannedRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entities.PlannedRecommendation
	for i := range r.recs {
		if r.recs[i].rec.ItemID == itemID {
			rec := r.recs[i].rec
			out = append(out, &rec)
		}
	}
	return out, nil
}

// UpdateStatus transitions one recommendation's workflow status
// (RecommendationRepository interface)
func (r *RecommendationRepository) UpdateStatus(
	runID entities.RunID,
	itemID entities.ItemID,
	recType entities.RecommendationType,
	status entities.RecommendationStatus,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.recs {
		rec := &r.recs[i].rec
		if rec.RunID == runID && rec.ItemID == itemID && rec.Type == recType {
			rec.Status = status
			return nil
		}
	}
	return fmt.Errorf("recommendation not found: run %s item %s type %s", runID, itemID, recType)
}
