package events

import (
	"github.com/openfactory/planning/pkg/application/services/orchestration"
	"github.com/openfactory/planning/pkg/domain/entities"
)

const (
	RunStartedEvent   = "run.started"
	RunCompletedEvent = "run.completed"
	RunFailedEvent    = "run.failed"

	RecommendationsPublishedEvent = "recommendations.published"
	StandardCostsPublishedEvent   = "standard_costs.published"
)

type RunStarted struct {
	Run entities.PlanRun `json:"run"`
}

type RunCompleted struct {
	Run entities.PlanRun `json:"run"`
}

type RunFailed struct {
	Run    entities.PlanRun `json:"run"`
	Reason string           `json:"reason"`
}

type RecommendationsPublished struct {
	RunID entities.RunID `json:"run_id"`
	Count int            `json:"count"`
}

type StandardCostsPublished struct {
	RunID entities.RunID `json:"run_id"`
	Count int            `json:"count"`
}

func NewRunStartedEvent(run *entities.PlanRun) Event {
	return NewEvent(RunStartedEvent, string(run.ID), RunStarted{Run: *run})
}

func NewRunCompletedEvent(run *entities.PlanRun) Event {
	return NewEvent(RunCompletedEvent, string(run.ID), RunCompleted{Run: *run})
}

func NewRunFailedEvent(run *entities.PlanRun, err error) Event {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	return NewEvent(RunFailedEvent, string(run.ID), RunFailed{Run: *run, Reason: reason})
}

// RunEventPublisher bridges orchestrator lifecycle notifications onto an
// event store, one stream per run
type RunEventPublisher struct {
	store EventStore
}

var _ orchestration.RunPublisher = (*RunEventPublisher)(nil)

func NewRunEventPublisher(store EventStore) *RunEventPublisher {
	return &RunEventPublisher{store: store}
}

func (p *RunEventPublisher) RunStarted(run *entities.PlanRun) {
	_ = p.store.AppendEvent(string(run.ID), NewRunStartedEvent(run))
}

func (p *RunEventPublisher) RunCompleted(run *entities.PlanRun) {
	_ = p.store.AppendEvent(string(run.ID), NewRunCompletedEvent(run))
}

func (p *RunEventPublisher) RunFailed(run *entities.PlanRun, err error) {
	_ = p.store.AppendEvent(string(run.ID), NewRunFailedEvent(run, err))
}
