package entities

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunID uniquely identifies a planning or rollup run
type RunID string

// NewRunID generates a fresh run identifier
func NewRunID() RunID {
	return RunID(uuid.NewString())
}

// RunType distinguishes planning runs from cost rollup runs
type RunType int

const (
	PlanningRun RunType = iota
	CostRollupRun
)

// String method for RunType enum
func (t RunType) String() string {
	switch t {
	case PlanningRun:
		return "Planning"
	case CostRollupRun:
		return "CostRollup"
	default:
		return "Unknown"
	}
}

// RunStatus is the lifecycle state of a run
type RunStatus int

const (
	Pending RunStatus = iota
	Running
	Completed
	Failed
)

// String method for RunStatus enum
func (s RunStatus) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// PlanScope names the set of top-level items a planning run covers.
// Empty Items means every item with independent demand in the horizon.
type PlanScope struct {
	Items []ItemID
}

// Key returns a stable identity for supersession matching. Two runs with the
// same key replace each other's Proposed recommendations.
func (s PlanScope) Key() string {
	if len(s.Items) == 0 {
		return "*"
	}
	ids := make([]string, len(s.Items))
	for i, id := range s.Items {
		ids[i] = string(id)
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

// PlanRun tracks the lifecycle of one planning or rollup run
type PlanRun struct {
	ID           RunID
	Type         RunType
	Scope        PlanScope
	TargetItem   ItemID // rollup runs only
	HorizonStart time.Time
	HorizonEnd   time.Time
	Status       RunStatus
	Err          error
	StartedAt    time.Time
	FinishedAt   time.Time
}
