package testing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/infrastructure/repositories/memory"
)

// Repos bundles the in-memory repositories a planning scenario works against
type Repos struct {
	Items   *memory.ItemRepository
	BOM     *memory.BOMRepository
	Supply  *memory.SupplyRepository
	Demands *memory.DemandRepository
	Recs    *memory.RecommendationRepository
	Costs   *memory.StandardCostRepository
}

func NewRepos() *Repos {
	return &Repos{
		Items:   memory.NewItemRepository(16),
		BOM:     memory.NewBOMRepository(32),
		Supply:  memory.NewSupplyRepository(),
		Demands: memory.NewDemandRepository(),
		Recs:    memory.NewRecommendationRepository(),
		Costs:   memory.NewStandardCostRepository(),
	}
}

// BuildRocketScenario loads a three-level launch vehicle scenario: a
// vehicle assembled from engines, each engine built around a purchased
// turbopump, with a machining resource charged on the engine.
func BuildRocketScenario() *Repos {
	repos := NewRepos()
	baseDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	items := []*entities.Item{
		{
			ID:            "VEHICLE",
			Description:   "Launch Vehicle",
			Procurement:   entities.Make,
			LeadTimeDays:  30,
			LotSizePolicy: entities.Discrete,
			UnitOfMeasure: "EA",
			DirectCosts: []entities.CostElement{
				{Class: entities.Labor, Amount: decimal.NewFromInt(5000)},
			},
		},
		{
			ID:            "ENGINE",
			Description:   "Engine Assembly",
			Procurement:   entities.Make,
			LeadTimeDays:  20,
			LotSizePolicy: entities.FixedOrderQuantity,
			FixedOrderQty: 5,
			SafetyStock:   2,
			UnitOfMeasure: "EA",
			DirectCosts: []entities.CostElement{
				{Class: entities.Labor, Amount: decimal.NewFromInt(1200)},
				{Class: entities.Overhead, Amount: decimal.NewFromInt(300)},
			},
		},
		{
			ID:            "TURBOPUMP",
			Description:   "Turbopump",
			Procurement:   entities.Buy,
			LeadTimeDays:  45,
			LotSizePolicy: entities.Discrete,
			UnitOfMeasure: "EA",
			DirectCosts: []entities.CostElement{
				{Class: entities.Material, Amount: decimal.NewFromInt(800)},
			},
		},
		{
			ID:            "MACHINING",
			Description:   "Machining Center",
			Procurement:   entities.Resource,
			UnitOfMeasure: "HR",
			ResourceRate:  decimal.NewFromInt(95),
		},
	}
	if err := repos.Items.LoadItems(items); err != nil {
		panic(err)
	}

	lines := []*entities.BOMLine{
		{ParentID: "VEHICLE", ChildID: "ENGINE", QtyPer: 5,
			Effectivity: entities.DateEffectivity{From: baseDate.AddDate(-1, 0, 0)}},
		{ParentID: "ENGINE", ChildID: "TURBOPUMP", QtyPer: 1,
			Effectivity: entities.DateEffectivity{From: baseDate.AddDate(-1, 0, 0)}},
		{ParentID: "ENGINE", ChildID: "MACHINING", QtyPer: 8,
			Effectivity: entities.DateEffectivity{From: baseDate.AddDate(-1, 0, 0)}},
	}
	if err := repos.BOM.LoadBOMLines(lines); err != nil {
		panic(err)
	}

	supply := []*entities.SupplyPosition{
		{
			ItemID: "ENGINE",
			OnHand: 3,
			OpenOrders: []entities.SupplyOrder{
				{OrderID: "WO-1001", ItemID: "ENGINE", Quantity: 5, DueDate: baseDate.AddDate(0, 0, 40)},
			},
		},
		{ItemID: "TURBOPUMP", OnHand: 4},
	}
	if err := repos.Supply.LoadSupplyPositions(supply); err != nil {
		panic(err)
	}

	demands := []*entities.IndependentDemand{
		{ItemID: "VEHICLE", Quantity: 2, NeedDate: baseDate.AddDate(0, 0, 120), Source: "SO-2026-001"},
	}
	if err := repos.Demands.LoadDemands(demands); err != nil {
		panic(err)
	}

	return repos
}

// BuildSimpleScenario loads a single parent with one purchased component
func BuildSimpleScenario() *Repos {
	repos := NewRepos()
	baseDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	items := []*entities.Item{
		{
			ID:            "ASSEMBLY_A",
			Description:   "Test Assembly A",
			Procurement:   entities.Make,
			LeadTimeDays:  10,
			LotSizePolicy: entities.Discrete,
			UnitOfMeasure: "EA",
		},
		{
			ID:            "COMPONENT_A",
			Description:   "Test Component A",
			Procurement:   entities.Buy,
			LeadTimeDays:  5,
			LotSizePolicy: entities.Discrete,
			UnitOfMeasure: "EA",
		},
	}
	if err := repos.Items.LoadItems(items); err != nil {
		panic(err)
	}

	line := &entities.BOMLine{
		ParentID: "ASSEMBLY_A", ChildID: "COMPONENT_A", QtyPer: 2,
		Effectivity: entities.DateEffectivity{From: baseDate.AddDate(-1, 0, 0)},
	}
	if err := repos.BOM.LoadBOMLines([]*entities.BOMLine{line}); err != nil {
		panic(err)
	}

	demand := &entities.IndependentDemand{
		ItemID: "ASSEMBLY_A", Quantity: 10,
		NeedDate: baseDate.AddDate(0, 0, 60), Source: "SO-TEST",
	}
	if err := repos.Demands.LoadDemands([]*entities.IndependentDemand{demand}); err != nil {
		panic(err)
	}

	return repos
}
