package netting

import (
	"time"

	"github.com/openfactory/planning/pkg/domain/entities"
)

// plannedLot is one lot-sized order quantity due on needDate
type plannedLot struct {
	qty      entities.Quantity
	needDate time.Time
	pegging  string
}

// applyLotSizing turns date-ordered net requirements into order lots per the
// item's policy. Deterministic, policy-driven rounding only.
func applyLotSizing(item *entities.Item, nets []entities.NetRequirement) []plannedLot {
	if len(nets) == 0 {
		return nil
	}

	switch item.LotSizePolicy {
	case entities.FixedOrderQuantity:
		lots := make([]plannedLot, 0, len(nets))
		for _, net := range nets {
			lots = append(lots, plannedLot{
				qty:      roundUpToMultiple(net.Quantity, item.FixedOrderQty),
				needDate: net.NeedDate,
				pegging:  net.Pegging,
			})
		}
		return lots

	case entities.PeriodOrderQuantity:
		// Combine requirements falling in the same period into one lot due
		// at the period's first need date.
		var lots []plannedLot
		periodEnd := time.Time{}
		for _, net := range nets {
			if len(lots) == 0 || net.NeedDate.After(periodEnd) {
				lots = append(lots, plannedLot{
					qty:      net.Quantity,
					needDate: net.NeedDate,
					pegging:  net.Pegging,
				})
				periodEnd = net.NeedDate.AddDate(0, 0, item.PeriodDays-1)
				continue
			}
			last := &lots[len(lots)-1]
			last.qty += net.Quantity
			if net.Pegging != "" && last.pegging != net.Pegging {
				last.pegging += "; " + net.Pegging
			}
		}
		return lots

	default: // Discrete: one lot per net requirement, as-is
		lots := make([]plannedLot, 0, len(nets))
		for _, net := range nets {
			lots = append(lots, plannedLot{
				qty:      net.Quantity,
				needDate: net.NeedDate,
				pegging:  net.Pegging,
			})
		}
		return lots
	}
}

func roundUpToMultiple(qty, multiple entities.Quantity) entities.Quantity {
	if multiple <= 0 {
		return qty
	}
	lots := (qty + multiple - 1) / multiple
	return lots * multiple
}
