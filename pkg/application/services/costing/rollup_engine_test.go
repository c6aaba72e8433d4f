package costing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/domain/services"
)

var runDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func material(amount int64) entities.CostElement {
	return entities.CostElement{
		Class:     entities.Material,
		GLAccount: "5000",
		Amount:    decimal.NewFromInt(amount),
	}
}

func buildInput(t *testing.T, lines []*entities.BOMLine, items []*entities.Item, target entities.ItemID) *Input {
	t.Helper()
	graph, err := services.NewGraphBuilder().Build(lines, runDate)
	require.NoError(t, err)

	itemMap := make(map[entities.ItemID]*entities.Item, len(items))
	for _, item := range items {
		itemMap[item.ID] = item
	}
	return &Input{
		RunID:   entities.NewRunID(),
		RunDate: runDate,
		Target:  target,
		Graph:   graph,
		Items:   itemMap,
	}
}

func bomLine(parent, child entities.ItemID, qty entities.Quantity) *entities.BOMLine {
	return &entities.BOMLine{
		ParentID:    parent,
		ChildID:     child,
		QtyPer:      qty,
		Effectivity: entities.DateEffectivity{From: runDate.AddDate(-1, 0, 0)},
	}
}

func recordFor(t *testing.T, records []*entities.StandardCostRecord, itemID entities.ItemID) *entities.StandardCostRecord {
	t.Helper()
	for _, record := range records {
		if record.ItemID == itemID {
			return record
		}
	}
	t.Fatalf("no record for %s", itemID)
	return nil
}

func TestEngine_Rollup_Conservation(t *testing.T) {
	// A uses 2x B ($5) and 3x C ($1): child contribution must be exactly $13
	items := []*entities.Item{
		{ID: "A", Procurement: entities.Make, LeadTimeDays: 5,
			DirectCosts: []entities.CostElement{material(2)}},
		{ID: "B", Procurement: entities.Buy, LeadTimeDays: 5,
			DirectCosts: []entities.CostElement{material(5)}},
		{ID: "C", Procurement: entities.Buy, LeadTimeDays: 5,
			DirectCosts: []entities.CostElement{material(1)}},
	}
	lines := []*entities.BOMLine{
		bomLine("A", "B", 2),
		bomLine("A", "C", 3),
	}

	result, err := NewEngine(nil).Rollup(buildInput(t, lines, items, "A"))
	require.NoError(t, err)
	require.Len(t, result.Records, 3)

	recordA := recordFor(t, result.Records, "A")
	assert.True(t, recordA.UnitCost.Equal(decimal.NewFromInt(15)),
		"expected 2 own + 13 from children, got %s", recordA.UnitCost)
	assert.True(t, recordA.Breakdown[entities.Material].Equal(decimal.NewFromInt(15)))
	assert.True(t, recordA.Active)
	assert.Equal(t, runDate, recordA.EffectiveDate)
}

func TestEngine_Rollup_ClassesPropagateSeparately(t *testing.T) {
	items := []*entities.Item{
		{ID: "PUMP", Procurement: entities.Make, LeadTimeDays: 5,
			DirectCosts: []entities.CostElement{
				{Class: entities.Overhead, GLAccount: "6200", Amount: decimal.NewFromInt(4)},
			}},
		{ID: "CASTING", Procurement: entities.Buy, LeadTimeDays: 5,
			DirectCosts: []entities.CostElement{material(10)}},
		{ID: "MACHINING", Procurement: entities.Resource,
			ResourceRate: decimal.NewFromInt(25)},
	}
	lines := []*entities.BOMLine{
		bomLine("PUMP", "CASTING", 2),
		bomLine("PUMP", "MACHINING", 1),
	}

	result, err := NewEngine(nil).Rollup(buildInput(t, lines, items, "PUMP"))
	require.NoError(t, err)

	record := recordFor(t, result.Records, "PUMP")
	assert.True(t, record.Breakdown[entities.Material].Equal(decimal.NewFromInt(20)))
	assert.True(t, record.Breakdown[entities.Labor].Equal(decimal.NewFromInt(25)))
	assert.True(t, record.Breakdown[entities.Overhead].Equal(decimal.NewFromInt(4)))
	assert.True(t, record.UnitCost.Equal(decimal.NewFromInt(49)))
}

func TestEngine_Rollup_SharedSubAssemblyComputedOnce(t *testing.T) {
	items := []*entities.Item{
		{ID: "TOP", Procurement: entities.Make, LeadTimeDays: 5},
		{ID: "LEFT", Procurement: entities.Make, LeadTimeDays: 5},
		{ID: "RIGHT", Procurement: entities.Make, LeadTimeDays: 5},
		{ID: "SHARED", Procurement: entities.Buy, LeadTimeDays: 5,
			DirectCosts: []entities.CostElement{material(7)}},
	}
	lines := []*entities.BOMLine{
		bomLine("TOP", "LEFT", 1),
		bomLine("TOP", "RIGHT", 1),
		bomLine("LEFT", "SHARED", 2),
		bomLine("RIGHT", "SHARED", 3),
	}

	result, err := NewEngine(nil).Rollup(buildInput(t, lines, items, "TOP"))
	require.NoError(t, err)

	// One record per touched item, SHARED included exactly once
	require.Len(t, result.Records, 4)
	record := recordFor(t, result.Records, "TOP")
	assert.True(t, record.UnitCost.Equal(decimal.NewFromInt(35)),
		"expected (2+3) x 7 = 35, got %s", record.UnitCost)
}

func TestEngine_Rollup_ScopedToTargetClosure(t *testing.T) {
	items := []*entities.Item{
		{ID: "BIKE", Procurement: entities.Make, LeadTimeDays: 5},
		{ID: "WHEEL", Procurement: entities.Buy, LeadTimeDays: 5,
			DirectCosts: []entities.CostElement{material(20)}},
		{ID: "UNRELATED", Procurement: entities.Buy, LeadTimeDays: 5,
			DirectCosts: []entities.CostElement{material(99)}},
		{ID: "SCREW", Procurement: entities.Buy, LeadTimeDays: 5},
	}
	lines := []*entities.BOMLine{
		bomLine("BIKE", "WHEEL", 2),
		bomLine("UNRELATED", "SCREW", 4),
	}

	result, err := NewEngine(nil).Rollup(buildInput(t, lines, items, "BIKE"))
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	for _, record := range result.Records {
		assert.NotEqual(t, entities.ItemID("UNRELATED"), record.ItemID)
		assert.NotEqual(t, entities.ItemID("SCREW"), record.ItemID)
	}
}

func TestEngine_Rollup_TargetNotFound(t *testing.T) {
	_, err := NewEngine(nil).Rollup(buildInput(t, nil, nil, "GHOST"))

	var scopeErr *entities.InvalidScopeError
	require.ErrorAs(t, err, &scopeErr)
}

func TestEngine_Rollup_MissingComponentMasterData(t *testing.T) {
	items := []*entities.Item{
		{ID: "BIKE", Procurement: entities.Make, LeadTimeDays: 5},
	}
	lines := []*entities.BOMLine{bomLine("BIKE", "PHANTOM", 1)}

	_, err := NewEngine(nil).Rollup(buildInput(t, lines, items, "BIKE"))

	var mdErr *entities.IncompleteMasterDataError
	require.ErrorAs(t, err, &mdErr)
	assert.Equal(t, entities.ItemID("PHANTOM"), mdErr.ItemID)
}

func TestEngine_Rollup_LeafTargetWithoutBOM(t *testing.T) {
	items := []*entities.Item{
		{ID: "BEARING", Procurement: entities.Buy, LeadTimeDays: 5,
			DirectCosts: []entities.CostElement{material(3)}},
	}

	result, err := NewEngine(nil).Rollup(buildInput(t, nil, items, "BEARING"))
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.True(t, result.Records[0].UnitCost.Equal(decimal.NewFromInt(3)))
}
