package services

import (
	"sort"

	"github.com/openfactory/planning/pkg/domain/entities"
)

// LevelAssignment is the low-level-code result for one graph: a level per
// item and the deterministic total processing order derived from it.
// Recomputed at the start of every run; never cached across runs.
type LevelAssignment struct {
	levels map[entities.ItemID]int
	order  []entities.ItemID
}

// LevelAssigner computes low-level codes over a cycle-checked BOM graph
type LevelAssigner struct{}

// NewLevelAssigner creates a new level assigner
func NewLevelAssigner() *LevelAssigner {
	return &LevelAssigner{}
}

// Assign computes, for every item in the graph, the deepest level at which it
// appears in any product structure: items with no parent are level 0, every
// other item is 1 + max(level of each parent). Shared children take the
// maximum depth, so by the time any parent is processed top-down, every
// instance of the child is accounted at a single level.
func (a *LevelAssigner) Assign(graph *BOMGraph) *LevelAssignment {
	levels := make(map[entities.ItemID]int)
	indegree := make(map[entities.ItemID]int)

	items := graph.Items()
	for _, id := range items {
		indegree[id] = len(graph.Parents(id))
	}

	// Kahn's algorithm over the already cycle-checked graph: roots first,
	// children finalized only after all their parents.
	queue := make([]entities.ItemID, 0, len(items))
	for _, id := range items {
		if indegree[id] == 0 {
			levels[id] = 0
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, edge := range graph.Children(current) {
			child := edge.ChildID
			if levels[current]+1 > levels[child] {
				levels[child] = levels[current] + 1
			}
			indegree[child]--
			if indegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	order := make([]entities.ItemID, len(items))
	copy(order, items)
	sort.Slice(order, func(i, j int) bool {
		if levels[order[i]] != levels[order[j]] {
			return levels[order[i]] < levels[order[j]]
		}
		return order[i] < order[j]
	})

	return &LevelAssignment{levels: levels, order: order}
}

// Level returns the item's low-level code. Items not in the graph are level 0.
func (la *LevelAssignment) Level(itemID entities.ItemID) int {
	return la.levels[itemID]
}

// MaxLevel returns the deepest level in the assignment
func (la *LevelAssignment) MaxLevel() int {
	max := 0
	for _, level := range la.levels {
		if level > max {
			max = level
		}
	}
	return max
}

// TopDown returns every item in ascending level order, ties broken by item
// id. Parents always strictly precede any child they use.
func (la *LevelAssignment) TopDown() []entities.ItemID {
	return la.order
}

// BottomUp returns every item in descending level order, ties broken by item
// id. Children always strictly precede any parent that uses them.
func (la *LevelAssignment) BottomUp() []entities.ItemID {
	out := make([]entities.ItemID, len(la.order))
	for i, id := range la.order {
		out[len(la.order)-1-i] = id
	}
	// Keep ascending item-id ties within a level for determinism
	sort.SliceStable(out, func(i, j int) bool {
		if la.levels[out[i]] != la.levels[out[j]] {
			return la.levels[out[i]] > la.levels[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// AtLevel returns the items assigned to one level, sorted by id
func (la *LevelAssignment) AtLevel(level int) []entities.ItemID {
	var out []entities.ItemID
	for _, id := range la.order {
		if la.levels[id] == level {
			out = append(out, id)
		}
	}
	return out
}
