package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ItemID represents a unique item identifier
type ItemID string

// Quantity represents an integer quantity value for discrete manufacturing units
type Quantity int64

// ProcurementType is the closed set of ways an item is sourced
type ProcurementType int

const (
	Make ProcurementType = iota
	Buy
	Resource
)

// String method for ProcurementType enum
func (p ProcurementType) String() string {
	switch p {
	case Make:
		return "Make"
	case Buy:
		return "Buy"
	case Resource:
		return "Resource"
	default:
		return "Unknown"
	}
}

// LotSizePolicy represents the lot sizing policy for an item
type LotSizePolicy int

const (
	Discrete LotSizePolicy = iota
	FixedOrderQuantity
	PeriodOrderQuantity
)

// String method for LotSizePolicy enum
func (l LotSizePolicy) String() string {
	switch l {
	case Discrete:
		return "Discrete"
	case FixedOrderQuantity:
		return "FixedOrderQuantity"
	case PeriodOrderQuantity:
		return "PeriodOrderQuantity"
	default:
		return "Unknown"
	}
}

// Item represents an item master record. Immutable reference data during a run.
type Item struct {
	ID              ItemID
	Description     string
	Procurement     ProcurementType
	LeadTimeDays    int
	LotSizePolicy   LotSizePolicy
	FixedOrderQty   Quantity // order multiple for FixedOrderQuantity
	PeriodDays      int      // bucket size for PeriodOrderQuantity
	SafetyStock     Quantity
	UnitOfMeasure   string
	ResourceRate    decimal.Decimal // per-unit rate, Resource items only
	ResourceAccount string          // GL account the rate posts to

	// DirectCosts are the item's directly-assigned cost elements: purchase
	// price for buy items, labor/overhead rates for routed operations.
	DirectCosts []CostElement
}

// Validate checks the capability set implied by the procurement type.
// Make and Buy items must be orderable; Resource items must carry a rate.
func (i *Item) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("item id cannot be empty")
	}
	switch i.Procurement {
	case Make, Buy:
		if i.LeadTimeDays < 0 {
			return fmt.Errorf("item %s: lead time cannot be negative, got %d", i.ID, i.LeadTimeDays)
		}
		if i.LotSizePolicy == FixedOrderQuantity && i.FixedOrderQty <= 0 {
			return fmt.Errorf("item %s: fixed order quantity policy requires a positive order quantity", i.ID)
		}
		if i.LotSizePolicy == PeriodOrderQuantity && i.PeriodDays <= 0 {
			return fmt.Errorf("item %s: period order quantity policy requires a positive period", i.ID)
		}
	case Resource:
		if !i.ResourceRate.IsPositive() {
			return fmt.Errorf("item %s: resource requires a positive rate", i.ID)
		}
	default:
		return fmt.Errorf("item %s: unknown procurement type %d", i.ID, i.Procurement)
	}
	if i.SafetyStock < 0 {
		return fmt.Errorf("item %s: safety stock cannot be negative, got %d", i.ID, i.SafetyStock)
	}
	return nil
}
