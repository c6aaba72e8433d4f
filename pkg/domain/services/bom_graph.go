package services

import (
	"sort"
	"time"

	"github.com/openfactory/planning/pkg/domain/entities"
)

// BOMEdge is one parent->child edge in the graph with its quantity-per
type BOMEdge struct {
	ChildID entities.ItemID
	QtyPer  entities.Quantity
}

// BOMGraph is an in-memory adjacency view of the BOM lines effective at a
// run date. Read-only once built; safe to share across workers.
type BOMGraph struct {
	asOf     time.Time
	children map[entities.ItemID][]BOMEdge
	parents  map[entities.ItemID][]entities.ItemID
	items    map[entities.ItemID]bool
}

// GraphBuilder constructs cycle-checked BOM graphs from line snapshots
type GraphBuilder struct{}

// NewGraphBuilder creates a new graph builder
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{}
}

// Build constructs the graph from the lines effective at asOf. Self-references
// and transitive cycles fail with *entities.CycleError; a cyclic structure
// indicates corrupt master data, so no graph is produced.
func (b *GraphBuilder) Build(lines []*entities.BOMLine, asOf time.Time) (*BOMGraph, error) {
	g := &BOMGraph{
		asOf:     asOf,
		children: make(map[entities.ItemID][]BOMEdge),
		parents:  make(map[entities.ItemID][]entities.ItemID),
		items:    make(map[entities.ItemID]bool),
	}

	for _, line := range lines {
		if !line.Effectivity.Contains(asOf) {
			continue
		}
		if line.ParentID == line.ChildID {
			return nil, &entities.CycleError{Path: []entities.ItemID{line.ParentID, line.ChildID}}
		}
		g.items[line.ParentID] = true
		g.items[line.ChildID] = true
		g.children[line.ParentID] = append(g.children[line.ParentID], BOMEdge{
			ChildID: line.ChildID,
			QtyPer:  line.QtyPer,
		})
		g.parents[line.ChildID] = append(g.parents[line.ChildID], line.ParentID)
	}

	// Deterministic edge order regardless of input order
	for id := range g.children {
		edges := g.children[id]
		sort.Slice(edges, func(i, j int) bool { return edges[i].ChildID < edges[j].ChildID })
	}
	for id := range g.parents {
		parents := g.parents[id]
		sort.Slice(parents, func(i, j int) bool { return parents[i] < parents[j] })
	}

	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}
	return g, nil
}

// AsOf returns the run date the graph was restricted to
func (g *BOMGraph) AsOf() time.Time {
	return g.asOf
}

// Children returns the effective component edges under a parent
func (g *BOMGraph) Children(parentID entities.ItemID) []BOMEdge {
	return g.children[parentID]
}

// Parents returns the items that directly use the given child
func (g *BOMGraph) Parents(childID entities.ItemID) []entities.ItemID {
	return g.parents[childID]
}

// Items returns every item referenced by the graph, sorted by id
func (g *BOMGraph) Items() []entities.ItemID {
	items := make([]entities.ItemID, 0, len(g.items))
	for id := range g.items {
		items = append(items, id)
	}
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	return items
}

// Contains reports whether the item appears anywhere in the graph
func (g *BOMGraph) Contains(itemID entities.ItemID) bool {
	return g.items[itemID]
}

// Restrict returns the subgraph reachable from target, for rollup scoping.
// The target itself is always included even when it has no BOM.
func (g *BOMGraph) Restrict(target entities.ItemID) *BOMGraph {
	sub := &BOMGraph{
		asOf:     g.asOf,
		children: make(map[entities.ItemID][]BOMEdge),
		parents:  make(map[entities.ItemID][]entities.ItemID),
		items:    map[entities.ItemID]bool{target: true},
	}

	stack := []entities.ItemID{target}
	visited := map[entities.ItemID]bool{target: true}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, edge := range g.children[current] {
			sub.children[current] = append(sub.children[current], edge)
			sub.parents[edge.ChildID] = append(sub.parents[edge.ChildID], current)
			sub.items[edge.ChildID] = true
			if !visited[edge.ChildID] {
				visited[edge.ChildID] = true
				stack = append(stack, edge.ChildID)
			}
		}
	}
	return sub
}

// checkAcyclic runs a depth-first traversal with a recursion stack; any item
// re-encountered while still on the stack closes a cycle.
func (g *BOMGraph) checkAcyclic() error {
	visited := make(map[entities.ItemID]bool)
	onStack := make(map[entities.ItemID]bool)

	roots := g.Items()
	for _, root := range roots {
		if visited[root] {
			continue
		}
		if cycle := g.dfsCycle(root, visited, onStack, nil); cycle != nil {
			return &entities.CycleError{Path: cycle}
		}
	}
	return nil
}

func (g *BOMGraph) dfsCycle(
	current entities.ItemID,
	visited, onStack map[entities.ItemID]bool,
	path []entities.ItemID,
) []entities.ItemID {
	visited[current] = true
	onStack[current] = true
	path = append(path, current)

	for _, edge := range g.children[current] {
		child := edge.ChildID
		if onStack[child] {
			// Extract the closed cycle from the path
			start := 0
			for i, id := range path {
				if id == child {
					start = i
					break
				}
			}
			cycle := append([]entities.ItemID{}, path[start:]...)
			return append(cycle, child)
		}
		if !visited[child] {
			if cycle := g.dfsCycle(child, visited, onStack, path); cycle != nil {
				return cycle
			}
		}
	}

	onStack[current] = false
	return nil
}
