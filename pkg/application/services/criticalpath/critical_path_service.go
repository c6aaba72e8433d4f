package criticalpath

import (
	"github.com/openfactory/planning/pkg/application/dto"
	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/domain/services"
)

// CriticalPathService finds the longest cumulative-lead-time chain below a
// target item, for workbench display next to rollup results
type CriticalPathService struct{}

// NewCriticalPathService creates a new critical path service
func NewCriticalPathService() *CriticalPathService {
	return &CriticalPathService{}
}

// Analyze walks the target's subgraph bottom-up over the low-level-code
// order: each item's longest tail is its lead time plus the max of its
// children's tails, so shared sub-assemblies are evaluated once.
func (s *CriticalPathService) Analyze(
	graph *services.BOMGraph,
	items map[entities.ItemID]*entities.Item,
	target entities.ItemID,
) *dto.CriticalPathResult {
	sub := graph.Restrict(target)
	levels := services.NewLevelAssigner().Assign(sub)

	type tail struct {
		leadTime int
		next     entities.ItemID
	}
	tails := make(map[entities.ItemID]tail, len(sub.Items()))

	for _, itemID := range levels.BottomUp() {
		ownLead := 0
		if item, ok := items[itemID]; ok {
			ownLead = item.LeadTimeDays
		}

		longest := tail{leadTime: ownLead}
		for _, edge := range sub.Children(itemID) {
			childTail := tails[edge.ChildID]
			if ownLead+childTail.leadTime > longest.leadTime {
				longest = tail{leadTime: ownLead + childTail.leadTime, next: edge.ChildID}
			}
		}
		tails[itemID] = longest
	}

	result := &dto.CriticalPathResult{TotalLeadTime: tails[target].leadTime}
	for current := target; current != ""; current = tails[current].next {
		result.Path = append(result.Path, current)
	}
	return result
}
