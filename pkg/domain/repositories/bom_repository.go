package repositories

import (
	"time"

	"github.com/openfactory/planning/pkg/domain/entities"
)

// BOMRepository provides access to Bill of Materials data
type BOMRepository interface {
	Versioned
	GetBOMLines(parentID entities.ItemID) ([]*entities.BOMLine, error)

	// GetEffectiveLines returns the lines under a parent whose date
	// effectivity contains asOf.
	GetEffectiveLines(parentID entities.ItemID, asOf time.Time) ([]*entities.BOMLine, error)

	GetAllBOMLines() ([]*entities.BOMLine, error)
	LoadBOMLines(lines []*entities.BOMLine) error
}
