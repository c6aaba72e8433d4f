package repositories

import "github.com/openfactory/planning/pkg/domain/entities"

// SupplyRepository provides access to supply position data: on-hand balances
// and open supply orders. Read-only input to a planning run.
type SupplyRepository interface {
	Versioned
	GetSupplyPosition(itemID entities.ItemID) (*entities.SupplyPosition, error)
	GetAllSupplyPositions() ([]*entities.SupplyPosition, error)
	LoadSupplyPositions(positions []*entities.SupplyPosition) error
}
