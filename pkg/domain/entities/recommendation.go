package entities

import (
	"fmt"
	"time"
)

// RecommendationType represents the type of planned recommendation
type RecommendationType int

const (
	PlannedWorkOrder RecommendationType = iota
	PlannedPurchaseOrder
	Expedite
	Deschedule
	Cancel
)

// String method for RecommendationType enum
func (r RecommendationType) String() string {
	switch r {
	case PlannedWorkOrder:
		return "PLANNED_WORK_ORDER"
	case PlannedPurchaseOrder:
		return "PLANNED_PURCHASE_ORDER"
	case Expedite:
		return "EXPEDITE"
	case Deschedule:
		return "DESCHEDULE"
	case Cancel:
		return "CANCEL"
	default:
		return "UNKNOWN"
	}
}

// RecommendationStatus tracks the acceptance workflow state of a recommendation
type RecommendationStatus int

const (
	Proposed RecommendationStatus = iota
	Accepted
	Rejected
	Superseded
)

// String method for RecommendationStatus enum
func (s RecommendationStatus) String() string {
	switch s {
	case Proposed:
		return "Proposed"
	case Accepted:
		return "Accepted"
	case Rejected:
		return "Rejected"
	case Superseded:
		return "Superseded"
	default:
		return "Unknown"
	}
}

// PlannedRecommendation is the output of a planning run. Created only by a
// completed run; status transitions happen in acceptance workflows outside
// the planning core.
type PlannedRecommendation struct {
	ItemID        ItemID
	Type          RecommendationType
	Quantity      Quantity
	SuggestedDate time.Time
	OpenOrderID   string // referenced open order for EXPEDITE/DESCHEDULE/CANCEL
	RunID         RunID
	Pegging       string
	Status        RecommendationStatus
}

// NewPlannedRecommendation creates a validated PlannedRecommendation in
// Proposed status
func NewPlannedRecommendation(
	itemID ItemID,
	recType RecommendationType,
	quantity Quantity,
	suggestedDate time.Time,
	openOrderID string,
	runID RunID,
	pegging string,
) (*PlannedRecommendation, error) {
	if string(itemID) == "" {
		return nil, fmt.Errorf("item id cannot be empty")
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if suggestedDate.IsZero() {
		return nil, fmt.Errorf("suggested date cannot be zero")
	}
	switch recType {
	case Expedite, Deschedule, Cancel:
		if openOrderID == "" {
			return nil, fmt.Errorf("%s recommendation for %s must reference an open order", recType, itemID)
		}
	}

	return &PlannedRecommendation{
		ItemID:        itemID,
		Type:          recType,
		Quantity:      quantity,
		SuggestedDate: suggestedDate,
		OpenOrderID:   openOrderID,
		RunID:         runID,
		Pegging:       pegging,
		Status:        Proposed,
	}, nil
}
