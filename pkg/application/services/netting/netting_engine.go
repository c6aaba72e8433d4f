package netting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/domain/services"
)

// Config holds netting engine policy knobs
type Config struct {
	// Workers bounds the per-level worker pool
	Workers int
	// ExpediteToleranceDays is how many days late an open order may be
	// before an EXPEDITE is raised. 0 flags any positive lateness.
	ExpediteToleranceDays int
	// ContinueOnMasterDataError downgrades incomplete master data from
	// run-fatal to a per-branch warning
	ContinueOnMasterDataError bool
}

// Engine implements time-phased requirements netting over a level-ordered
// BOM traversal
type Engine struct {
	cfg Config
	log *logrus.Entry
}

// NewEngine creates a netting engine
func NewEngine(cfg Config, log *logrus.Entry) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{cfg: cfg, log: log}
}

// Input is the immutable snapshot a planning run works from. Captured at run
// start; never read live.
type Input struct {
	RunID   entities.RunID
	RunDate time.Time
	Graph   *services.BOMGraph
	Levels  *services.LevelAssignment
	Items   map[entities.ItemID]*entities.Item
	Supply  map[entities.ItemID]*entities.SupplyPosition
	Demands []*entities.IndependentDemand
}

// Result is the output of one netting run
type Result struct {
	Recommendations []*entities.PlannedRecommendation
	Warnings        []*entities.IncompleteMasterDataError
	ItemsPlanned    int
	LevelsProcessed int
}

// grossBucket accumulates same-date requirements for one item
type grossBucket struct {
	date    time.Time
	qty     entities.Quantity
	pegging string
}

// itemPlan is one worker's output for a single item at the current level
type itemPlan struct {
	itemID     entities.ItemID
	recs       []*entities.PlannedRecommendation
	childGross []entities.GrossRequirement
	warning    *entities.IncompleteMasterDataError
}

// Plan executes a single netting run: seed gross requirements from
// independent demand, then process items strictly in ascending low-level-code
// order, netting each level against supply and exploding make orders into the
// next level's gross requirements. Items within one level run on a bounded
// worker pool; a barrier joins the level before its child contributions merge.
func (e *Engine) Plan(ctx context.Context, in *Input) (*Result, error) {
	gross := make(map[entities.ItemID][]grossBucket)
	for _, demand := range in.Demands {
		addGross(gross, demand.ItemID, demand.NeedDate, demand.Quantity, demand.Source)
	}

	result := &Result{}
	maxLevel := in.Levels.MaxLevel()

	for level := 0; level <= maxLevel; level++ {
		itemIDs := e.itemsToPlanAtLevel(level, in, gross)
		if len(itemIDs) == 0 {
			continue
		}
		result.LevelsProcessed++

		plans := make([]*itemPlan, len(itemIDs))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.cfg.Workers)

		for i, itemID := range itemIDs {
			i, itemID := i, itemID
			buckets := gross[itemID]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				plan, err := e.planItem(in, itemID, buckets)
				if err != nil {
					return err
				}
				plans[i] = plan
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		// Deterministic post-level reduction: plans merge in item-id order,
		// so sibling contributions to a shared child always sum identically.
		for _, plan := range plans {
			if plan.warning != nil {
				if !e.cfg.ContinueOnMasterDataError {
					return nil, plan.warning
				}
				e.log.WithFields(logrus.Fields{
					"run_id": in.RunID,
					"item":   plan.warning.ItemID,
				}).Warn("skipping branch with incomplete master data")
				result.Warnings = append(result.Warnings, plan.warning)
				continue
			}
			result.Recommendations = append(result.Recommendations, plan.recs...)
			for _, req := range plan.childGross {
				addGross(gross, req.ItemID, req.NeedDate, req.Quantity, req.Pegging)
			}
			result.ItemsPlanned++
		}
	}

	sortRecommendations(result.Recommendations)
	e.log.WithFields(logrus.Fields{
		"run_id":          in.RunID,
		"items":           result.ItemsPlanned,
		"levels":          result.LevelsProcessed,
		"recommendations": len(result.Recommendations),
	}).Info("netting run complete")
	return result, nil
}

// itemsToPlanAtLevel returns, sorted by id, the items at the given low-level
// code that have gross requirements to net, plus items whose supply position
// needs attention on its own: open orders must raise CANCEL signals when
// nothing offsets them, and stock below the safety floor must be replenished
// even with no demand in the horizon.
func (e *Engine) itemsToPlanAtLevel(
	level int,
	in *Input,
	gross map[entities.ItemID][]grossBucket,
) []entities.ItemID {
	candidates := make(map[entities.ItemID]bool)
	for itemID, buckets := range gross {
		if len(buckets) > 0 {
			candidates[itemID] = true
		}
	}
	for itemID, position := range in.Supply {
		item, known := in.Items[itemID]
		if !known {
			continue
		}
		if len(position.OpenOrders) > 0 || position.OnHand < item.SafetyStock {
			candidates[itemID] = true
		}
	}

	var out []entities.ItemID
	for itemID := range candidates {
		if in.Levels.Level(itemID) == level {
			out = append(out, itemID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// planItem nets one item's gross requirements against its supply position,
// applies lot sizing and lead-time offset, emits recommendations, and
// explodes make orders into child gross requirements.
func (e *Engine) planItem(
	in *Input,
	itemID entities.ItemID,
	buckets []grossBucket,
) (*itemPlan, error) {
	plan := &itemPlan{itemID: itemID}

	item, ok := in.Items[itemID]
	if !ok {
		plan.warning = &entities.IncompleteMasterDataError{ItemID: itemID, Missing: "item master record"}
		return plan, nil
	}
	if item.Procurement == entities.Resource {
		// Resources carry rates for costing; they are never netted or ordered
		return plan, nil
	}

	sort.Slice(buckets, func(i, j int) bool { return buckets[i].date.Before(buckets[j].date) })

	supply := newSupplyLedger(in.Supply[itemID], item.SafetyStock)

	var nets []entities.NetRequirement
	for _, bucket := range buckets {
		residual := supply.consumeOnTime(bucket.qty, bucket.date)
		if residual > 0 {
			residual = supply.consumeLate(residual, bucket.date)
		}
		if residual > 0 {
			nets = append(nets, entities.NetRequirement{
				ItemID:   itemID,
				Quantity: residual,
				NeedDate: bucket.date,
				Pegging:  bucket.pegging,
			})
		}
	}

	// With no gross requirements to ride on, a floor deficit is still a
	// standing requirement: open receipts offset it before any CANCEL, and
	// the remainder becomes a replenishment order placed today.
	if deficit := supply.consumeFloorDeficit(); deficit > 0 {
		nets = append(nets, entities.NetRequirement{
			ItemID:   itemID,
			Quantity: deficit,
			NeedDate: in.RunDate.AddDate(0, 0, item.LeadTimeDays),
			Pegging:  "safety stock",
		})
	}

	if len(nets) > 0 {
		if err := checkOrderability(item); err != nil {
			plan.warning = err
			return plan, nil
		}
	}

	// Exception signals against the item's open orders
	plan.recs = append(plan.recs, e.exceptionRecommendations(in, item, supply)...)

	// Lot-sized planned orders with lead-time offset, exploding make orders
	for _, order := range applyLotSizing(item, nets) {
		suggestedDate := order.needDate.AddDate(0, 0, -item.LeadTimeDays)

		recType := entities.PlannedPurchaseOrder
		if item.Procurement == entities.Make {
			recType = entities.PlannedWorkOrder
		}
		rec, err := entities.NewPlannedRecommendation(
			itemID, recType, order.qty, suggestedDate, "", in.RunID, order.pegging)
		if err != nil {
			return nil, fmt.Errorf("failed to build recommendation for %s: %w", itemID, err)
		}
		plan.recs = append(plan.recs, rec)

		if item.Procurement == entities.Make {
			for _, edge := range in.Graph.Children(itemID) {
				plan.childGross = append(plan.childGross, entities.GrossRequirement{
					ItemID:   edge.ChildID,
					Quantity: order.qty * edge.QtyPer,
					NeedDate: suggestedDate,
					Pegging:  order.pegging + " -> " + string(itemID),
				})
			}
		}
	}

	return plan, nil
}

// exceptionRecommendations inspects how the ledger consumed open orders and
// raises EXPEDITE, DESCHEDULE, and CANCEL signals
func (e *Engine) exceptionRecommendations(
	in *Input,
	item *entities.Item,
	supply *supplyLedger,
) []*entities.PlannedRecommendation {
	var recs []*entities.PlannedRecommendation
	tolerance := e.cfg.ExpediteToleranceDays

	for _, slot := range supply.orders {
		if slot.expeditedQty > 0 {
			lateness := daysBetween(slot.order.DueDate, slot.firstLateNeed)
			if lateness > tolerance {
				rec, err := entities.NewPlannedRecommendation(
					item.ID, entities.Expedite, slot.expeditedQty, slot.firstLateNeed,
					slot.order.OrderID, in.RunID, "")
				if err == nil {
					recs = append(recs, rec)
				}
			}
		}

		if slot.consumedQty > 0 && slot.expeditedQty == 0 && !slot.firstNeedServed.IsZero() {
			earliness := daysBetween(slot.firstNeedServed, slot.order.DueDate)
			if earliness > tolerance {
				rec, err := entities.NewPlannedRecommendation(
					item.ID, entities.Deschedule, slot.consumedQty, slot.firstNeedServed,
					slot.order.OrderID, in.RunID, "")
				if err == nil {
					recs = append(recs, rec)
				}
			}
		}

		if remaining := slot.remaining(); remaining > 0 {
			rec, err := entities.NewPlannedRecommendation(
				item.ID, entities.Cancel, remaining, in.RunDate,
				slot.order.OrderID, in.RunID, "")
			if err == nil {
				recs = append(recs, rec)
			}
		}
	}
	return recs
}

// checkOrderability verifies the master data an order-generating item must
// carry. Fatal by default per run policy.
func checkOrderability(item *entities.Item) *entities.IncompleteMasterDataError {
	if item.LeadTimeDays <= 0 {
		return &entities.IncompleteMasterDataError{ItemID: item.ID, Missing: "lead time"}
	}
	switch item.LotSizePolicy {
	case entities.FixedOrderQuantity:
		if item.FixedOrderQty <= 0 {
			return &entities.IncompleteMasterDataError{ItemID: item.ID, Missing: "fixed order quantity"}
		}
	case entities.PeriodOrderQuantity:
		if item.PeriodDays <= 0 {
			return &entities.IncompleteMasterDataError{ItemID: item.ID, Missing: "order period"}
		}
	}
	return nil
}

func addGross(
	gross map[entities.ItemID][]grossBucket,
	itemID entities.ItemID,
	date time.Time,
	qty entities.Quantity,
	pegging string,
) {
	day := date.UTC().Truncate(24 * time.Hour)
	buckets := gross[itemID]
	for i := range buckets {
		if buckets[i].date.Equal(day) {
			// Same item, same date: demands sum before netting
			buckets[i].qty += qty
			if pegging != "" && buckets[i].pegging != pegging {
				buckets[i].pegging += "; " + pegging
			}
			return
		}
	}
	gross[itemID] = append(buckets, grossBucket{date: day, qty: qty, pegging: pegging})
}

func sortRecommendations(recs []*entities.PlannedRecommendation) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].ItemID != recs[j].ItemID {
			return recs[i].ItemID < recs[j].ItemID
		}
		if !recs[i].SuggestedDate.Equal(recs[j].SuggestedDate) {
			return recs[i].SuggestedDate.Before(recs[j].SuggestedDate)
		}
		return recs[i].Type < recs[j].Type
	})
}

// daysBetween counts whole calendar days; clock-time components on either
// date must not shave a day off the difference
func daysBetween(later, earlier time.Time) int {
	laterDay := later.UTC().Truncate(24 * time.Hour)
	earlierDay := earlier.UTC().Truncate(24 * time.Hour)
	return int(laterDay.Sub(earlierDay).Hours() / 24)
}
