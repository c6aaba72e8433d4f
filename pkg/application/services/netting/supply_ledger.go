package netting

import (
	"sort"
	"time"

	"github.com/openfactory/planning/pkg/domain/entities"
)

// orderSlot tracks how much of one open supply order the netting pass
// consumed, and against which need dates
type orderSlot struct {
	order           entities.SupplyOrder
	consumedQty     entities.Quantity
	expeditedQty    entities.Quantity
	firstNeedServed time.Time
	firstLateNeed   time.Time
}

func (s *orderSlot) remaining() entities.Quantity {
	return s.order.Quantity - s.consumedQty - s.expeditedQty
}

// supplyLedger applies FIFO consumption of one item's supply position:
// on-hand first, then scheduled receipts in due-date order. Safety stock is a
// standing floor subtracted from on-hand up front, never consumed.
type supplyLedger struct {
	onHand entities.Quantity
	orders []*orderSlot
}

func newSupplyLedger(position *entities.SupplyPosition, safetyStock entities.Quantity) *supplyLedger {
	ledger := &supplyLedger{}
	if position != nil {
		ledger.onHand = position.OnHand
		for _, order := range position.OpenOrders {
			ledger.orders = append(ledger.orders, &orderSlot{order: order})
		}
		sort.Slice(ledger.orders, func(i, j int) bool {
			if !ledger.orders[i].order.DueDate.Equal(ledger.orders[j].order.DueDate) {
				return ledger.orders[i].order.DueDate.Before(ledger.orders[j].order.DueDate)
			}
			return ledger.orders[i].order.OrderID < ledger.orders[j].order.OrderID
		})
	}
	// A position below the safety floor starts in deficit and generates a
	// replenishment requirement through normal netting.
	ledger.onHand -= safetyStock
	return ledger
}

// consumeOnTime draws qty from on-hand and from receipts due on or before
// needDate, returning the unsatisfied residual
func (l *supplyLedger) consumeOnTime(qty entities.Quantity, needDate time.Time) entities.Quantity {
	// On hand below the safety floor: the deficit joins the first
	// requirement so the floor is restored.
	if l.onHand < 0 {
		qty -= l.onHand
		l.onHand = 0
	}
	if l.onHand > 0 {
		take := min(l.onHand, qty)
		l.onHand -= take
		qty -= take
	}
	for _, slot := range l.orders {
		if qty <= 0 {
			break
		}
		if slot.order.DueDate.After(needDate) {
			continue
		}
		take := min(slot.remaining(), qty)
		if take <= 0 {
			continue
		}
		slot.consumedQty += take
		if slot.firstNeedServed.IsZero() {
			slot.firstNeedServed = needDate
		}
		qty -= take
	}
	return qty
}

// consumeFloorDeficit draws an outstanding safety floor deficit from open
// receipts regardless of due date, returning the unreplenished remainder. The
// floor is a standing requirement with no need date of its own, so a receipt
// that restores it is on time by definition.
func (l *supplyLedger) consumeFloorDeficit() entities.Quantity {
	if l.onHand >= 0 {
		return 0
	}
	qty := -l.onHand
	l.onHand = 0
	for _, slot := range l.orders {
		if qty <= 0 {
			break
		}
		take := min(slot.remaining(), qty)
		if take <= 0 {
			continue
		}
		slot.consumedQty += take
		if slot.firstNeedServed.IsZero() {
			slot.firstNeedServed = slot.order.DueDate
		}
		qty -= take
	}
	return qty
}

// consumeLate draws residual demand from receipts due after needDate. The
// caller raises EXPEDITE signals from the slots this touches.
func (l *supplyLedger) consumeLate(qty entities.Quantity, needDate time.Time) entities.Quantity {
	for _, slot := range l.orders {
		if qty <= 0 {
			break
		}
		if !slot.order.DueDate.After(needDate) {
			continue
		}
		take := min(slot.remaining(), qty)
		if take <= 0 {
			continue
		}
		slot.expeditedQty += take
		if slot.firstLateNeed.IsZero() {
			slot.firstLateNeed = needDate
		}
		qty -= take
	}
	return qty
}

func min(a, b entities.Quantity) entities.Quantity {
	if a < b {
		return a
	}
	return b
}
