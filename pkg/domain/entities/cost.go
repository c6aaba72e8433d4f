package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CostElementClass classifies a cost bucket
type CostElementClass int

const (
	Material CostElementClass = iota
	Labor
	Overhead
)

// String method for CostElementClass enum
func (c CostElementClass) String() string {
	switch c {
	case Material:
		return "Material"
	case Labor:
		return "Labor"
	case Overhead:
		return "Overhead"
	default:
		return "Unknown"
	}
}

// CostElement is a directly-assigned cost on an item or resource, tagged with
// the GL account it posts to
type CostElement struct {
	Class     CostElementClass
	GLAccount string
	Amount    decimal.Decimal
}

// NewCostElement creates a validated CostElement
func NewCostElement(class CostElementClass, glAccount string, amount decimal.Decimal) (*CostElement, error) {
	if class < Material || class > Overhead {
		return nil, fmt.Errorf("unknown cost element class %d", class)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("cost element amount cannot be negative, got %s", amount)
	}
	return &CostElement{Class: class, GLAccount: glAccount, Amount: amount}, nil
}

// CostBreakdown holds per-class cost totals for an item
type CostBreakdown map[CostElementClass]decimal.Decimal

// Add folds amount into the class bucket
func (b CostBreakdown) Add(class CostElementClass, amount decimal.Decimal) {
	b[class] = b[class].Add(amount)
}

// Total sums all class buckets
func (b CostBreakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range b {
		total = total.Add(amount)
	}
	return total
}

// Clone returns an independent copy of the breakdown
func (b CostBreakdown) Clone() CostBreakdown {
	out := make(CostBreakdown, len(b))
	for class, amount := range b {
		out[class] = amount
	}
	return out
}

// StandardCostRecord is one historical unit-cost record for an item. A rollup
// run writes a new active record and deactivates the prior one; history is
// retained, never deleted.
type StandardCostRecord struct {
	ItemID        ItemID
	UnitCost      decimal.Decimal
	Breakdown     CostBreakdown
	EffectiveDate time.Time
	Active        bool
	RunID         RunID
}

// NewStandardCostRecord creates a validated, active StandardCostRecord
func NewStandardCostRecord(
	itemID ItemID,
	breakdown CostBreakdown,
	effectiveDate time.Time,
	runID RunID,
) (*StandardCostRecord, error) {
	if string(itemID) == "" {
		return nil, fmt.Errorf("item id cannot be empty")
	}
	if effectiveDate.IsZero() {
		return nil, fmt.Errorf("effective date cannot be zero")
	}
	return &StandardCostRecord{
		ItemID:        itemID,
		UnitCost:      breakdown.Total(),
		Breakdown:     breakdown.Clone(),
		EffectiveDate: effectiveDate,
		Active:        true,
		RunID:         runID,
	}, nil
}
