package repositories

import (
	"time"

	"github.com/openfactory/planning/pkg/domain/entities"
)

// DemandRepository provides access to independent demand data
type DemandRepository interface {
	Versioned
	GetDemands() ([]*entities.IndependentDemand, error)

	// GetDemandsInHorizon returns demands whose need date falls inside
	// [start, end], inclusive.
	GetDemandsInHorizon(start, end time.Time) ([]*entities.IndependentDemand, error)

	LoadDemands(demands []*entities.IndependentDemand) error
}
