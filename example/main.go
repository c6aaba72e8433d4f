package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openfactory/planning/pkg/application/services/orchestration"
	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/infrastructure/events"
	testhelpers "github.com/openfactory/planning/pkg/infrastructure/testing"
)

func main() {
	ctx := context.Background()

	// Launch vehicle scenario: vehicle -> engines -> turbopumps
	repos := testhelpers.BuildRocketScenario()

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	store := events.NewInMemoryEventStore(logrus.NewEntry(logger))

	o := orchestration.NewOrchestrator(
		orchestration.Config{Workers: 4},
		logrus.NewEntry(logger),
		repos.Items, repos.BOM, repos.Supply, repos.Demands, repos.Recs, repos.Costs,
		events.NewRunEventPublisher(store),
	)

	day0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	fmt.Println("🚀 Planning the launch vehicle program...")

	runID, err := o.StartPlanningRun(ctx, entities.PlanScope{}, day0, day0.AddDate(1, 0, 0))
	if err != nil {
		fmt.Printf("❌ Planning failed to start: %v\n", err)
		return
	}
	run, err := o.WaitForRun(ctx, runID)
	if err != nil {
		fmt.Printf("❌ Planning did not finish: %v\n", err)
		return
	}
	if run.Status == entities.Failed {
		fmt.Printf("❌ Planning run failed: %v\n", run.Err)
		return
	}

	recs, _ := o.GetRecommendations(runID)
	fmt.Printf("📊 Planning run %s produced %d recommendations:\n", runID, len(recs))
	for _, rec := range recs {
		fmt.Printf("  %-12s %-22s qty %-5d by %s\n",
			rec.ItemID, rec.Type, rec.Quantity, rec.SuggestedDate.Format("2006-01-02"))
	}
	fmt.Println()

	fmt.Println("💰 Rolling up vehicle standard cost...")
	rollupID, err := o.StartCostRollup(ctx, "VEHICLE")
	if err != nil {
		fmt.Printf("❌ Rollup failed to start: %v\n", err)
		return
	}
	if _, err := o.WaitForRun(ctx, rollupID); err != nil {
		fmt.Printf("❌ Rollup did not finish: %v\n", err)
		return
	}

	summary, err := o.RollupSummary(rollupID)
	if err != nil {
		fmt.Printf("❌ Rollup summary unavailable: %v\n", err)
		return
	}
	for _, record := range summary.Records {
		fmt.Printf("  %-12s unit cost %s\n", record.ItemID, record.UnitCost.StringFixed(2))
	}
	if summary.CriticalPath != nil {
		fmt.Printf("  Critical path lead time: %d days\n", summary.CriticalPath.TotalLeadTime)
	}

	history, _ := store.ReadEvents(string(runID), 1)
	fmt.Printf("\n📨 %d lifecycle events recorded for the planning run\n", len(history))
}
