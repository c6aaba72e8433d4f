package memory

import (
	"sync"
	"time"

	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/domain/repositories"
)

// BOMRepository provides an in-memory BOM line store indexed by parent
type BOMRepository struct {
	mu      sync.RWMutex
	lines   []entities.BOMLine
	byParen map[entities.ItemID][]int
	version uint64
}

// NewBOMRepository creates an in-memory BOM repository
func NewBOMRepository(expectedLines int) *BOMRepository {
	return &BOMRepository{
		lines:   make([]entities.BOMLine, 0, expectedLines),
		byParen: make(map[entities.ItemID][]int),
	}
}

// Verify interface compliance
var _ repositories.BOMRepository = (*BOMRepository)(nil)

// SnapshotVersion returns the monotonic catalog version (Versioned interface)
func (r *BOMRepository) SnapshotVersion() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// LoadBOMLines loads BOM lines into the repository (BOMRepository interface)
func (r *BOMRepository) LoadBOMLines(lines []*entities.BOMLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range lines {
		index := len(r.lines)
		r.lines = append(r.lines, *line)
		r.byParen[line.ParentID] = append(r.byParen[line.ParentID], index)
	}
	r.version++
	return nil
}

// GetBOMLines returns every line under a parent (BOMRepository interface)
func (r *BOMRepository) GetBOMLines(parentID entities.ItemID) ([]*entities.BOMLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entities.BOMLine
	for _, i := range r.byParen[parentID] {
		line := r.lines[i]
		out = append(out, &line)
	}
	return out, nil
}

// GetEffectiveLines returns the lines under a parent effective at asOf
// (BOMRepository interface)
func (r *BOMRepository) GetEffectiveLines(parentID entities.ItemID, asOf time.Time) ([]*entities.BOMLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entities.BOMLine
	for _, i := range r.byParen[parentID] {
		if r.lines[i].Effectivity.Contains(asOf) {
			line := r.lines[i]
			out = append(out, &line)
		}
	}
	return out, nil
}

// GetAllBOMLines returns all lines (BOMRepository interface)
func (r *BOMRepository) GetAllBOMLines() ([]*entities.BOMLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entities.BOMLine, len(r.lines))
	for i := range r.lines {
		line := r.lines[i]
		out[i] = &line
	}
	return out, nil
}
