package entities

import "time"

// IndependentDemand represents top-level demand from sales orders or forecast
type IndependentDemand struct {
	ItemID   ItemID
	Quantity Quantity
	NeedDate time.Time
	Source   string // originating sales order / forecast reference
}

// GrossRequirement is a date-bucketed requirement for an item, either seeded
// from independent demand or exploded from a parent's planned order
type GrossRequirement struct {
	ItemID   ItemID
	Quantity Quantity
	NeedDate time.Time
	Pegging  string // demand chain that caused this requirement
}

// NetRequirement is the residual after netting gross requirements against
// on-hand and scheduled receipts
type NetRequirement struct {
	ItemID   ItemID
	Quantity Quantity
	NeedDate time.Time
	Pegging  string
}
