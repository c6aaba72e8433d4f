package entities

import (
	"fmt"
	"time"
)

// SupplyOrder represents an open supply order (work order or purchase order)
// expected to receive on DueDate
type SupplyOrder struct {
	OrderID  string
	ItemID   ItemID
	Quantity Quantity
	DueDate  time.Time
}

// NewSupplyOrder creates a validated SupplyOrder
func NewSupplyOrder(orderID string, itemID ItemID, quantity Quantity, dueDate time.Time) (*SupplyOrder, error) {
	if orderID == "" {
		return nil, fmt.Errorf("order id cannot be empty")
	}
	if string(itemID) == "" {
		return nil, fmt.Errorf("item id cannot be empty")
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if dueDate.IsZero() {
		return nil, fmt.Errorf("due date cannot be zero")
	}
	return &SupplyOrder{
		OrderID:  orderID,
		ItemID:   itemID,
		Quantity: quantity,
		DueDate:  dueDate,
	}, nil
}

// SupplyPosition is the read-only supply picture for one item at run start:
// on-hand plus open orders sorted by receipt date.
type SupplyPosition struct {
	ItemID     ItemID
	OnHand     Quantity
	OpenOrders []SupplyOrder
}
