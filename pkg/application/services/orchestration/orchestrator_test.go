package orchestration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfactory/planning/pkg/domain/entities"
	testhelpers "github.com/openfactory/planning/pkg/infrastructure/testing"
)

func newTestOrchestrator(repos *testhelpers.Repos, cfg Config) *Orchestrator {
	return NewOrchestrator(cfg, nil,
		repos.Items, repos.BOM, repos.Supply, repos.Demands, repos.Recs, repos.Costs, nil)
}

func waitCompleted(t *testing.T, o *Orchestrator, runID entities.RunID) *entities.PlanRun {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	run, err := o.WaitForRun(ctx, runID)
	require.NoError(t, err)
	if run.Status == entities.Failed {
		t.Fatalf("run failed: %v", run.Err)
	}
	require.Equal(t, entities.Completed, run.Status)
	return run
}

func TestPlanningRunLifecycle(t *testing.T) {
	repos := testhelpers.BuildSimpleScenario()
	o := newTestOrchestrator(repos, Config{Workers: 2})

	day0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	runID, err := o.StartPlanningRun(context.Background(),
		entities.PlanScope{}, day0, day0.AddDate(0, 6, 0))
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	run := waitCompleted(t, o, runID)
	assert.Equal(t, entities.PlanningRun, run.Type)
	assert.False(t, run.StartedAt.IsZero())
	assert.False(t, run.FinishedAt.IsZero())

	recs, err := o.GetRecommendations(runID)
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	// 10 assemblies with no supply plus 20 purchased components
	byItem := make(map[entities.ItemID]entities.Quantity)
	for _, rec := range recs {
		assert.Equal(t, runID, rec.RunID)
		assert.Equal(t, entities.Proposed, rec.Status)
		byItem[rec.ItemID] += rec.Quantity
	}
	assert.Equal(t, entities.Quantity(10), byItem["ASSEMBLY_A"])
	assert.Equal(t, entities.Quantity(20), byItem["COMPONENT_A"])
}

func TestPlanningRunRejectsInvertedHorizon(t *testing.T) {
	repos := testhelpers.BuildSimpleScenario()
	o := newTestOrchestrator(repos, Config{})

	day0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := o.StartPlanningRun(context.Background(),
		entities.PlanScope{}, day0.AddDate(0, 0, 30), day0)
	var scopeErr *entities.InvalidScopeError
	require.ErrorAs(t, err, &scopeErr)

	_, err = o.StartPlanningRun(context.Background(), entities.PlanScope{}, time.Time{}, day0)
	require.ErrorAs(t, err, &scopeErr)
}

func TestPlanningRunRejectsUnknownScopeItem(t *testing.T) {
	repos := testhelpers.BuildSimpleScenario()
	o := newTestOrchestrator(repos, Config{})

	day0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := o.StartPlanningRun(context.Background(),
		entities.PlanScope{Items: []entities.ItemID{"NO_SUCH_ITEM"}},
		day0, day0.AddDate(0, 6, 0))
	var scopeErr *entities.InvalidScopeError
	require.ErrorAs(t, err, &scopeErr)
	assert.Contains(t, scopeErr.Reason, "NO_SUCH_ITEM")
}

func TestRerunSupersedesPriorProposals(t *testing.T) {
	repos := testhelpers.BuildSimpleScenario()
	o := newTestOrchestrator(repos, Config{Workers: 2})

	day0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	first, err := o.StartPlanningRun(context.Background(),
		entities.PlanScope{}, day0, day0.AddDate(0, 6, 0))
	require.NoError(t, err)
	waitCompleted(t, o, first)

	second, err := o.StartPlanningRun(context.Background(),
		entities.PlanScope{}, day0, day0.AddDate(0, 6, 0))
	require.NoError(t, err)
	waitCompleted(t, o, second)

	firstRecs, err := repos.Recs.GetByRun(first)
	require.NoError(t, err)
	require.NotEmpty(t, firstRecs)
	for _, rec := range firstRecs {
		assert.Equal(t, entities.Superseded, rec.Status)
	}

	secondRecs, err := o.GetRecommendations(second)
	require.NoError(t, err)
	for _, rec := range secondRecs {
		assert.Equal(t, entities.Proposed, rec.Status)
	}
}

func TestRecommendationsHiddenUntilCompleted(t *testing.T) {
	repos := testhelpers.BuildSimpleScenario()
	o := newTestOrchestrator(repos, Config{})

	run := &entities.PlanRun{ID: entities.NewRunID(), Type: entities.PlanningRun, Status: entities.Pending}
	o.register(run)

	_, err := o.GetRecommendations(run.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completed")

	_, err = o.GetRecommendations("missing-run")
	require.Error(t, err)
}

func TestPlanningSummaryCarriesEngineStats(t *testing.T) {
	repos := testhelpers.BuildSimpleScenario()
	o := newTestOrchestrator(repos, Config{Workers: 2})

	day0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	runID, err := o.StartPlanningRun(context.Background(),
		entities.PlanScope{}, day0, day0.AddDate(0, 6, 0))
	require.NoError(t, err)
	waitCompleted(t, o, runID)

	summary, err := o.PlanningSummary(runID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ItemsPlanned)
	assert.Equal(t, 2, summary.LevelsProcessed)
	assert.Empty(t, summary.Warnings)
	assert.NotEmpty(t, summary.Recommendations)
}

func TestPlanningSummarySurfacesWarnings(t *testing.T) {
	repos := testhelpers.BuildSimpleScenario()
	require.NoError(t, repos.Items.LoadItems([]*entities.Item{{
		ID:            "NO_LEAD_TIME",
		Procurement:   entities.Buy,
		LotSizePolicy: entities.Discrete,
		UnitOfMeasure: "EA",
	}}))
	require.NoError(t, repos.Demands.LoadDemands([]*entities.IndependentDemand{{
		ItemID: "NO_LEAD_TIME", Quantity: 5,
		NeedDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), Source: "SO-X",
	}}))

	o := newTestOrchestrator(repos, Config{Workers: 2, ContinueOnMasterDataError: true})

	day0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	runID, err := o.StartPlanningRun(context.Background(),
		entities.PlanScope{}, day0, day0.AddDate(0, 6, 0))
	require.NoError(t, err)
	waitCompleted(t, o, runID)

	summary, err := o.PlanningSummary(runID)
	require.NoError(t, err)
	require.Len(t, summary.Warnings, 1)
	assert.Equal(t, entities.ItemID("NO_LEAD_TIME"), summary.Warnings[0].ItemID)
}

func TestGetRunStatusReturnsIsolatedCopy(t *testing.T) {
	repos := testhelpers.BuildSimpleScenario()
	o := newTestOrchestrator(repos, Config{Workers: 2})

	day0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	runID, err := o.StartPlanningRun(context.Background(),
		entities.PlanScope{Items: []entities.ItemID{"ASSEMBLY_A"}}, day0, day0.AddDate(0, 6, 0))
	require.NoError(t, err)
	waitCompleted(t, o, runID)

	first, err := o.GetRunStatus(runID)
	require.NoError(t, err)
	require.Len(t, first.Scope.Items, 1)
	first.Scope.Items[0] = "MUTATED"

	second, err := o.GetRunStatus(runID)
	require.NoError(t, err)
	assert.Equal(t, entities.ItemID("ASSEMBLY_A"), second.Scope.Items[0])
}

func TestCostRollupRunLifecycle(t *testing.T) {
	repos := testhelpers.BuildRocketScenario()
	o := newTestOrchestrator(repos, Config{})

	runID, err := o.StartCostRollup(context.Background(), "VEHICLE")
	require.NoError(t, err)
	waitCompleted(t, o, runID)

	records, err := o.GetStandardCosts("VEHICLE")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Active)
	assert.Equal(t, runID, records[0].RunID)

	// 5000 own labor + 5 engines at (1200 labor + 300 overhead +
	// 800 turbopump material + 8h machining at 95)
	assert.Equal(t, "20300", records[0].Breakdown.Total().String())

	// rollup covers every item in the target's closure
	engine, err := repos.Costs.GetActiveRecord("ENGINE")
	require.NoError(t, err)
	require.NotNil(t, engine)
	assert.Equal(t, "3060", engine.Breakdown.Total().String())
}

func TestCostRollupRejectsUnknownTarget(t *testing.T) {
	repos := testhelpers.BuildRocketScenario()
	o := newTestOrchestrator(repos, Config{})

	_, err := o.StartCostRollup(context.Background(), "NO_SUCH_ITEM")
	var scopeErr *entities.InvalidScopeError
	require.ErrorAs(t, err, &scopeErr)
}

func TestRollupHistoryAccumulatesAcrossRuns(t *testing.T) {
	repos := testhelpers.BuildRocketScenario()
	o := newTestOrchestrator(repos, Config{})

	first, err := o.StartCostRollup(context.Background(), "VEHICLE")
	require.NoError(t, err)
	waitCompleted(t, o, first)

	second, err := o.StartCostRollup(context.Background(), "VEHICLE")
	require.NoError(t, err)
	waitCompleted(t, o, second)

	records, err := o.GetStandardCosts("VEHICLE")
	require.NoError(t, err)
	require.Len(t, records, 2)

	active := 0
	for _, record := range records {
		if record.Active {
			active++
			assert.Equal(t, second, record.RunID)
		}
	}
	assert.Equal(t, 1, active)
}

func TestSnapshotVerifyDetectsConcurrentModification(t *testing.T) {
	repos := testhelpers.BuildSimpleScenario()

	snapshot, err := captureSnapshot(repos.Items, repos.BOM, repos.Supply, repos.Demands)
	require.NoError(t, err)
	require.NoError(t, snapshot.verify(repos.Items, repos.BOM, repos.Supply, repos.Demands))

	// any catalog write after the snapshot invalidates the run
	require.NoError(t, repos.Demands.LoadDemands([]*entities.IndependentDemand{{
		ItemID: "ASSEMBLY_A", Quantity: 1,
		NeedDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), Source: "SO-LATE",
	}}))

	err = snapshot.verify(repos.Items, repos.BOM, repos.Supply, repos.Demands)
	var modErr *entities.ConcurrentModificationError
	require.ErrorAs(t, err, &modErr)
}

func TestCancelRun(t *testing.T) {
	repos := testhelpers.BuildSimpleScenario()
	o := newTestOrchestrator(repos, Config{})

	run := &entities.PlanRun{ID: entities.NewRunID(), Type: entities.PlanningRun, Status: entities.Pending}
	state := o.register(run)

	go o.executeRun(state, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	require.Eventually(t, func() bool {
		current, err := o.GetRunStatus(run.ID)
		return err == nil && current.Status == entities.Running
	}, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, o.CancelRun(run.ID))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	final, err := o.WaitForRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.Failed, final.Status)
	assert.ErrorIs(t, final.Err, context.Canceled)

	require.Error(t, o.CancelRun("missing-run"))
}

func TestScopedPlanningRunLeavesOtherScopesAlone(t *testing.T) {
	repos := testhelpers.BuildRocketScenario()
	o := newTestOrchestrator(repos, Config{Workers: 2})

	day0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	full, err := o.StartPlanningRun(context.Background(),
		entities.PlanScope{}, day0, day0.AddDate(1, 0, 0))
	require.NoError(t, err)
	waitCompleted(t, o, full)

	scoped, err := o.StartPlanningRun(context.Background(),
		entities.PlanScope{Items: []entities.ItemID{"TURBOPUMP"}}, day0, day0.AddDate(1, 0, 0))
	require.NoError(t, err)
	waitCompleted(t, o, scoped)

	fullRecs, err := repos.Recs.GetByRun(full)
	require.NoError(t, err)
	for _, rec := range fullRecs {
		assert.Equal(t, entities.Proposed, rec.Status,
			"scoped rerun must not supersede the full-scope plan")
	}
}

func TestFilterDemands(t *testing.T) {
	day0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	demands := []*entities.IndependentDemand{
		{ItemID: "A", Quantity: 1, NeedDate: day0.AddDate(0, 0, 10)},
		{ItemID: "B", Quantity: 1, NeedDate: day0.AddDate(0, 0, 20)},
		{ItemID: "A", Quantity: 1, NeedDate: day0.AddDate(0, 0, 400)},
	}

	filtered := filterDemands(demands, entities.PlanScope{}, day0, day0.AddDate(0, 6, 0))
	assert.Len(t, filtered, 2)

	scoped := filterDemands(demands,
		entities.PlanScope{Items: []entities.ItemID{"A"}}, day0, day0.AddDate(0, 6, 0))
	require.Len(t, scoped, 1)
	assert.Equal(t, entities.ItemID("A"), scoped[0].ItemID)
}
