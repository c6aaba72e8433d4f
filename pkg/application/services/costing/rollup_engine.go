package costing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/domain/services"
)

// Engine implements standard cost rollup as an explicit bottom-up pass over
// the low-level-code order. Shared sub-assemblies are computed exactly once
// per run; deep structures never recurse.
type Engine struct {
	log *logrus.Entry
}

// NewEngine creates a cost rollup engine
func NewEngine(log *logrus.Entry) *Engine {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{log: log}
}

// Input is the immutable snapshot a rollup run works from
type Input struct {
	RunID   entities.RunID
	RunDate time.Time
	Target  entities.ItemID
	Graph   *services.BOMGraph
	Items   map[entities.ItemID]*entities.Item
}

// Result is the output of one rollup run: a new standard cost record for
// every item the target's structure touches
type Result struct {
	Target  entities.ItemID
	Records []*entities.StandardCostRecord
}

// Rollup restricts the graph to the target's transitive closure, assigns
// levels over the subgraph, then accumulates unit costs deepest-first: each
// item's cost is its own directly-assigned elements plus every child's
// already-computed unit cost scaled by quantity-per.
func (e *Engine) Rollup(in *Input) (*Result, error) {
	if _, ok := in.Items[in.Target]; !ok {
		return nil, &entities.InvalidScopeError{Reason: "target item " + string(in.Target) + " not found"}
	}

	sub := in.Graph.Restrict(in.Target)
	levels := services.NewLevelAssigner().Assign(sub)

	rolled := make(map[entities.ItemID]entities.CostBreakdown, len(sub.Items()))
	result := &Result{Target: in.Target}

	for _, itemID := range levels.BottomUp() {
		item, ok := in.Items[itemID]
		if !ok {
			return nil, &entities.IncompleteMasterDataError{ItemID: itemID, Missing: "item master record"}
		}

		breakdown := directCosts(item)
		for _, edge := range sub.Children(itemID) {
			childCosts, ok := rolled[edge.ChildID]
			if !ok {
				// Unreachable on a level-ordered pass; children always
				// precede their parents.
				return nil, &entities.IncompleteMasterDataError{ItemID: edge.ChildID, Missing: "rolled cost"}
			}
			qty := decimal.NewFromInt(int64(edge.QtyPer))
			for class, amount := range childCosts {
				breakdown.Add(class, amount.Mul(qty))
			}
		}
		rolled[itemID] = breakdown

		record, err := entities.NewStandardCostRecord(itemID, breakdown, in.RunDate, in.RunID)
		if err != nil {
			return nil, err
		}
		result.Records = append(result.Records, record)
	}

	e.log.WithFields(logrus.Fields{
		"run_id": in.RunID,
		"target": in.Target,
		"items":  len(result.Records),
	}).Info("cost rollup complete")
	return result, nil
}

// directCosts sums an item's own cost elements into a per-class breakdown.
// Resource items contribute their rate as a Labor element when no explicit
// elements are assigned.
func directCosts(item *entities.Item) entities.CostBreakdown {
	breakdown := make(entities.CostBreakdown)
	for _, element := range item.DirectCosts {
		breakdown.Add(element.Class, element.Amount)
	}
	if item.Procurement == entities.Resource && len(item.DirectCosts) == 0 {
		breakdown.Add(entities.Labor, item.ResourceRate)
	}
	return breakdown
}
