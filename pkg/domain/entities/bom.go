package entities

import (
	"fmt"
	"time"
)

// DateEffectivity defines the date range for which a BOM line is effective
type DateEffectivity struct {
	From time.Time
	To   time.Time // zero = open ended
}

// NewDateEffectivity creates a validated DateEffectivity
func NewDateEffectivity(from, to time.Time) (*DateEffectivity, error) {
	if from.IsZero() {
		return nil, fmt.Errorf("effective-from date cannot be zero")
	}
	if !to.IsZero() && to.Before(from) {
		return nil, fmt.Errorf("effective-to %v cannot precede effective-from %v", to, from)
	}
	return &DateEffectivity{From: from, To: to}, nil
}

// Contains reports whether the given date falls inside the effectivity window
func (e DateEffectivity) Contains(date time.Time) bool {
	if date.Before(e.From) {
		return false
	}
	if e.To.IsZero() {
		return true
	}
	return !date.After(e.To)
}

// BOMLine represents a single line in a Bill of Materials
type BOMLine struct {
	ParentID    ItemID
	ChildID     ItemID
	QtyPer      Quantity
	Effectivity DateEffectivity
}

// NewBOMLine creates a validated BOMLine
func NewBOMLine(parentID, childID ItemID, qtyPer Quantity, effectivity DateEffectivity) (*BOMLine, error) {
	if string(parentID) == "" {
		return nil, fmt.Errorf("parent item id cannot be empty")
	}
	if string(childID) == "" {
		return nil, fmt.Errorf("child item id cannot be empty")
	}
	if parentID == childID {
		return nil, fmt.Errorf("parent and child item ids cannot be the same: %s", parentID)
	}
	if qtyPer <= 0 {
		return nil, fmt.Errorf("quantity per must be positive, got %d", qtyPer)
	}

	return &BOMLine{
		ParentID:    parentID,
		ChildID:     childID,
		QtyPer:      qtyPer,
		Effectivity: effectivity,
	}, nil
}
