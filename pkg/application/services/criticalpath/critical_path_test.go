package criticalpath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/domain/services"
)

func TestCriticalPathService_Analyze(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	effectivity := entities.DateEffectivity{From: asOf.AddDate(-1, 0, 0)}

	lines := []*entities.BOMLine{
		{ParentID: "ROCKET", ChildID: "ENGINE", QtyPer: 9, Effectivity: effectivity},
		{ParentID: "ROCKET", ChildID: "TANK", QtyPer: 1, Effectivity: effectivity},
		{ParentID: "ENGINE", ChildID: "TURBOPUMP", QtyPer: 1, Effectivity: effectivity},
	}
	graph, err := services.NewGraphBuilder().Build(lines, asOf)
	require.NoError(t, err)

	items := map[entities.ItemID]*entities.Item{
		"ROCKET":    {ID: "ROCKET", Procurement: entities.Make, LeadTimeDays: 30},
		"ENGINE":    {ID: "ENGINE", Procurement: entities.Make, LeadTimeDays: 60},
		"TANK":      {ID: "TANK", Procurement: entities.Buy, LeadTimeDays: 45},
		"TURBOPUMP": {ID: "TURBOPUMP", Procurement: entities.Buy, LeadTimeDays: 90},
	}

	result := NewCriticalPathService().Analyze(graph, items, "ROCKET")

	// 30 + 60 + 90 beats 30 + 45
	assert.Equal(t, 180, result.TotalLeadTime)
	assert.Equal(t, []entities.ItemID{"ROCKET", "ENGINE", "TURBOPUMP"}, result.Path)
}

func TestCriticalPathService_LeafTarget(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	graph, err := services.NewGraphBuilder().Build(nil, asOf)
	require.NoError(t, err)

	items := map[entities.ItemID]*entities.Item{
		"BOLT": {ID: "BOLT", Procurement: entities.Buy, LeadTimeDays: 14},
	}

	result := NewCriticalPathService().Analyze(graph, items, "BOLT")
	assert.Equal(t, 14, result.TotalLeadTime)
	assert.Equal(t, []entities.ItemID{"BOLT"}, result.Path)
}
