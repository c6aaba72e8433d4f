package orchestration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openfactory/planning/pkg/application/dto"
	"github.com/openfactory/planning/pkg/application/services/costing"
	"github.com/openfactory/planning/pkg/application/services/criticalpath"
	"github.com/openfactory/planning/pkg/application/services/netting"
	"github.com/openfactory/planning/pkg/domain/entities"
	"github.com/openfactory/planning/pkg/domain/repositories"
	"github.com/openfactory/planning/pkg/domain/services"
)

// RunPublisher receives run lifecycle notifications. Implemented by the
// event store infrastructure; a nil publisher disables notifications.
type RunPublisher interface {
	RunStarted(run *entities.PlanRun)
	RunCompleted(run *entities.PlanRun)
	RunFailed(run *entities.PlanRun, err error)
}

// Config holds orchestrator policy knobs, normally sourced from
// pkg/configuration
type Config struct {
	Workers                   int
	ExpediteToleranceDays     int
	ContinueOnMasterDataError bool
	RunTimeout                time.Duration
}

// Orchestrator owns the run lifecycle for planning and rollup runs. Runs are
// asynchronous and isolated by run id; callers poll GetRunStatus or block on
// WaitForRun. Outputs persist atomically on completion only.
type Orchestrator struct {
	cfg Config
	log *logrus.Entry

	itemRepo   repositories.ItemRepository
	bomRepo    repositories.BOMRepository
	supplyRepo repositories.SupplyRepository
	demandRepo repositories.DemandRepository
	recRepo    repositories.RecommendationRepository
	costRepo   repositories.StandardCostRepository

	publisher RunPublisher

	mu   sync.RWMutex
	runs map[entities.RunID]*runState
}

type runState struct {
	run    *entities.PlanRun
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// engine output retained for the run summary, set before completion
	planning *netting.Result
}

// NewOrchestrator creates a run orchestrator
func NewOrchestrator(
	cfg Config,
	log *logrus.Entry,
	itemRepo repositories.ItemRepository,
	bomRepo repositories.BOMRepository,
	supplyRepo repositories.SupplyRepository,
	demandRepo repositories.DemandRepository,
	recRepo repositories.RecommendationRepository,
	costRepo repositories.StandardCostRepository,
	publisher RunPublisher,
) *Orchestrator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Orchestrator{
		cfg:        cfg,
		log:        log,
		itemRepo:   itemRepo,
		bomRepo:    bomRepo,
		supplyRepo: supplyRepo,
		demandRepo: demandRepo,
		recRepo:    recRepo,
		costRepo:   costRepo,
		publisher:  publisher,
		runs:       make(map[entities.RunID]*runState),
	}
}

// StartPlanningRun validates the request, registers a pending run, and kicks
// off the netting pass in the background. Scope validation happens before
// the run id is handed back; processing errors surface via GetRunStatus.
func (o *Orchestrator) StartPlanningRun(
	ctx context.Context,
	scope entities.PlanScope,
	horizonStart, horizonEnd time.Time,
) (entities.RunID, error) {
	if horizonStart.IsZero() || horizonEnd.IsZero() {
		return "", &entities.InvalidScopeError{Reason: "planning horizon dates are required"}
	}
	if horizonStart.After(horizonEnd) {
		return "", &entities.InvalidScopeError{Reason: fmt.Sprintf(
			"horizon start %s is after horizon end %s",
			horizonStart.Format(time.DateOnly), horizonEnd.Format(time.DateOnly))}
	}
	for _, itemID := range scope.Items {
		if _, err := o.itemRepo.GetItem(itemID); err != nil {
			return "", &entities.InvalidScopeError{Reason: fmt.Sprintf("scope item %s not found", itemID)}
		}
	}

	run := &entities.PlanRun{
		ID:           entities.NewRunID(),
		Type:         entities.PlanningRun,
		Scope:        scope,
		HorizonStart: horizonStart,
		HorizonEnd:   horizonEnd,
		Status:       entities.Pending,
	}
	state := o.register(run)

	go o.executeRun(state, func(runCtx context.Context) error {
		return o.executePlanning(runCtx, run)
	})
	return run.ID, nil
}

// StartCostRollup validates the target and kicks off a rollup run in the
// background
func (o *Orchestrator) StartCostRollup(
	ctx context.Context,
	targetItemID entities.ItemID,
) (entities.RunID, error) {
	if _, err := o.itemRepo.GetItem(targetItemID); err != nil {
		return "", &entities.InvalidScopeError{Reason: fmt.Sprintf("target item %s not found", targetItemID)}
	}

	run := &entities.PlanRun{
		ID:         entities.NewRunID(),
		Type:       entities.CostRollupRun,
		TargetItem: targetItemID,
		Status:     entities.Pending,
	}
	state := o.register(run)

	go o.executeRun(state, func(runCtx context.Context) error {
		return o.executeRollup(runCtx, run)
	})
	return run.ID, nil
}

// GetRunStatus returns a copy of the run's current lifecycle state
func (o *Orchestrator) GetRunStatus(runID entities.RunID) (*entities.PlanRun, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	state, ok := o.runs[runID]
	if !ok {
		return nil, fmt.Errorf("unknown run id %s", runID)
	}
	copied := *state.run
	copied.Scope.Items = append([]entities.ItemID(nil), state.run.Scope.Items...)
	return &copied, nil
}

// GetRecommendations returns the persisted recommendations of a completed
// run. Failed or in-flight runs have no visible outputs.
func (o *Orchestrator) GetRecommendations(runID entities.RunID) ([]*entities.PlannedRecommendation, error) {
	run, err := o.GetRunStatus(runID)
	if err != nil {
		return nil, err
	}
	if run.Status != entities.Completed {
		return nil, fmt.Errorf("run %s is %s; recommendations exist only for completed runs", runID, run.Status)
	}
	return o.recRepo.GetByRun(runID)
}

// GetStandardCosts returns an item's standard cost history, effective date
// descending
func (o *Orchestrator) GetStandardCosts(itemID entities.ItemID) ([]*entities.StandardCostRecord, error) {
	return o.costRepo.GetRecords(itemID)
}

// CancelRun cancels an in-flight run. In-progress results are discarded;
// the run cannot be resumed, only replaced by a new run id.
func (o *Orchestrator) CancelRun(runID entities.RunID) error {
	o.mu.RLock()
	state, ok := o.runs[runID]
	o.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown run id %s", runID)
	}
	state.cancel()
	return nil
}

// WaitForRun blocks until the run finishes or ctx expires, returning the
// final run state
func (o *Orchestrator) WaitForRun(ctx context.Context, runID entities.RunID) (*entities.PlanRun, error) {
	o.mu.RLock()
	state, ok := o.runs[runID]
	o.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown run id %s", runID)
	}
	select {
	case <-state.done:
		return o.GetRunStatus(runID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// register records the run and arms its cancellation context before the
// worker goroutine starts, so CancelRun is valid the moment the id is
// handed back
func (o *Orchestrator) register(run *entities.PlanRun) *runState {
	runCtx := context.Background()
	var cancel context.CancelFunc
	if o.cfg.RunTimeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, o.cfg.RunTimeout)
	} else {
		runCtx, cancel = context.WithCancel(runCtx)
	}
	state := &runState{run: run, ctx: runCtx, cancel: cancel, done: make(chan struct{})}
	o.mu.Lock()
	o.runs[run.ID] = state
	o.mu.Unlock()
	return state
}

// executeRun drives one run's lifecycle around the type-specific body
func (o *Orchestrator) executeRun(state *runState, body func(context.Context) error) {
	runCtx := state.ctx
	defer state.cancel()
	defer close(state.done)

	o.mu.Lock()
	state.run.Status = entities.Running
	state.run.StartedAt = time.Now().UTC()
	o.mu.Unlock()

	if o.publisher != nil {
		o.publisher.RunStarted(state.run)
	}
	log := o.log.WithFields(logrus.Fields{"run_id": state.run.ID, "run_type": state.run.Type.String()})
	log.Info("run started")

	err := body(runCtx)

	o.mu.Lock()
	state.run.FinishedAt = time.Now().UTC()
	if err != nil {
		state.run.Status = entities.Failed
		state.run.Err = err
	} else {
		state.run.Status = entities.Completed
	}
	o.mu.Unlock()

	if err != nil {
		log.WithError(err).Error("run failed")
		if o.publisher != nil {
			o.publisher.RunFailed(state.run, err)
		}
		return
	}
	log.Info("run completed")
	if o.publisher != nil {
		o.publisher.RunCompleted(state.run)
	}
}

// executePlanning is the body of a requirements planning run
func (o *Orchestrator) executePlanning(ctx context.Context, run *entities.PlanRun) error {
	snapshot, err := captureSnapshot(o.itemRepo, o.bomRepo, o.supplyRepo, o.demandRepo)
	if err != nil {
		return err
	}

	runDate := snapshot.TakenAt.Truncate(24 * time.Hour)
	graph, err := services.NewGraphBuilder().Build(snapshot.BOMLines, runDate)
	if err != nil {
		return err
	}

	// An empty horizon is a valid, empty plan: it still supersedes stale
	// proposals for the scope.
	demands := filterDemands(snapshot.Demands, run.Scope, run.HorizonStart, run.HorizonEnd)

	// A scoped run only touches supply inside the scope's closure, so its
	// exception signals never reach items another plan owns.
	supply := snapshot.Supply
	if len(run.Scope.Items) > 0 {
		inClosure := make(map[entities.ItemID]bool)
		for _, target := range run.Scope.Items {
			inClosure[target] = true
			if !graph.Contains(target) {
				continue
			}
			for _, itemID := range graph.Restrict(target).Items() {
				inClosure[itemID] = true
			}
		}
		supply = make(map[entities.ItemID]*entities.SupplyPosition, len(inClosure))
		for itemID, position := range snapshot.Supply {
			if inClosure[itemID] {
				supply[itemID] = position
			}
		}
	}

	engine := netting.NewEngine(netting.Config{
		Workers:                   o.cfg.Workers,
		ExpediteToleranceDays:     o.cfg.ExpediteToleranceDays,
		ContinueOnMasterDataError: o.cfg.ContinueOnMasterDataError,
	}, o.log.WithField("run_id", run.ID))

	result, err := engine.Plan(ctx, &netting.Input{
		RunID:   run.ID,
		RunDate: runDate,
		Graph:   graph,
		Levels:  services.NewLevelAssigner().Assign(graph),
		Items:   snapshot.Items,
		Supply:  supply,
		Demands: demands,
	})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// The snapshot must still be valid before anything becomes visible
	if err := snapshot.verify(o.itemRepo, o.bomRepo, o.supplyRepo, o.demandRepo); err != nil {
		return err
	}
	if err := o.recRepo.ReplaceForScope(run.Scope.Key(), run.ID, result.Recommendations); err != nil {
		return err
	}

	o.mu.Lock()
	if state, ok := o.runs[run.ID]; ok {
		state.planning = result
	}
	o.mu.Unlock()
	return nil
}

// executeRollup is the body of a standard cost rollup run
func (o *Orchestrator) executeRollup(ctx context.Context, run *entities.PlanRun) error {
	snapshot, err := captureSnapshot(o.itemRepo, o.bomRepo, o.supplyRepo, o.demandRepo)
	if err != nil {
		return err
	}

	runDate := snapshot.TakenAt.Truncate(24 * time.Hour)
	graph, err := services.NewGraphBuilder().Build(snapshot.BOMLines, runDate)
	if err != nil {
		return err
	}

	engine := costing.NewEngine(o.log.WithField("run_id", run.ID))
	result, err := engine.Rollup(&costing.Input{
		RunID:   run.ID,
		RunDate: runDate,
		Target:  run.TargetItem,
		Graph:   graph,
		Items:   snapshot.Items,
	})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := criticalpath.NewCriticalPathService().Analyze(graph, snapshot.Items, run.TargetItem)
	o.log.WithFields(logrus.Fields{
		"run_id":    run.ID,
		"target":    run.TargetItem,
		"lead_time": path.TotalLeadTime,
	}).Debug("critical path computed")

	if err := snapshot.verify(o.itemRepo, o.bomRepo, o.supplyRepo, o.demandRepo); err != nil {
		return err
	}
	return o.costRepo.SaveRecords(result.Records)
}

// filterDemands restricts snapshot demand to the run's scope and horizon
func filterDemands(
	demands []*entities.IndependentDemand,
	scope entities.PlanScope,
	horizonStart, horizonEnd time.Time,
) []*entities.IndependentDemand {
	inScope := make(map[entities.ItemID]bool, len(scope.Items))
	for _, itemID := range scope.Items {
		inScope[itemID] = true
	}

	var out []*entities.IndependentDemand
	for _, demand := range demands {
		if len(inScope) > 0 && !inScope[demand.ItemID] {
			continue
		}
		if demand.NeedDate.Before(horizonStart) || demand.NeedDate.After(horizonEnd) {
			continue
		}
		out = append(out, demand)
	}
	return out
}

// PlanningSummary builds the caller-facing DTO for a completed planning run,
// including the engine's per-branch warnings and traversal stats
func (o *Orchestrator) PlanningSummary(runID entities.RunID) (*dto.PlanningResult, error) {
	run, err := o.GetRunStatus(runID)
	if err != nil {
		return nil, err
	}
	recs, err := o.GetRecommendations(runID)
	if err != nil {
		return nil, err
	}

	result := &dto.PlanningResult{
		RunID:           runID,
		Recommendations: recs,
		PlannedAt:       run.FinishedAt,
	}
	o.mu.RLock()
	if state, ok := o.runs[runID]; ok && state.planning != nil {
		result.Warnings = state.planning.Warnings
		result.ItemsPlanned = state.planning.ItemsPlanned
		result.LevelsProcessed = state.planning.LevelsProcessed
	}
	o.mu.RUnlock()
	return result, nil
}

// RollupSummary builds the caller-facing DTO for a completed rollup run. The
// critical path is recomputed from the current BOM for workbench display.
func (o *Orchestrator) RollupSummary(runID entities.RunID) (*dto.RollupResult, error) {
	run, err := o.GetRunStatus(runID)
	if err != nil {
		return nil, err
	}
	if run.Type != entities.CostRollupRun {
		return nil, fmt.Errorf("run %s is not a cost rollup run", runID)
	}
	if run.Status != entities.Completed {
		return nil, fmt.Errorf("run %s is %s; cost records exist only for completed runs", runID, run.Status)
	}
	records, err := o.costRepo.GetByRun(runID)
	if err != nil {
		return nil, err
	}

	result := &dto.RollupResult{
		RunID:      runID,
		TargetItem: run.TargetItem,
		Records:    records,
		RolledAt:   run.FinishedAt,
	}
	snapshot, err := captureSnapshot(o.itemRepo, o.bomRepo, o.supplyRepo, o.demandRepo)
	if err != nil {
		return result, nil
	}
	graph, err := services.NewGraphBuilder().Build(snapshot.BOMLines, run.FinishedAt.Truncate(24*time.Hour))
	if err != nil {
		return result, nil
	}
	result.CriticalPath = criticalpath.NewCriticalPathService().Analyze(graph, snapshot.Items, run.TargetItem)
	return result, nil
}
