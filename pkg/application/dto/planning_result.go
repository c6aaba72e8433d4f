package dto

import (
	"time"

	"github.com/openfactory/planning/pkg/domain/entities"
)

// PlanningResult contains the complete output of a requirements planning run
type PlanningResult struct {
	RunID           entities.RunID
	Recommendations []*entities.PlannedRecommendation
	Warnings        []*entities.IncompleteMasterDataError
	ItemsPlanned    int
	LevelsProcessed int
	PlannedAt       time.Time
}

// RollupResult contains the complete output of a standard cost rollup run
type RollupResult struct {
	RunID        entities.RunID
	TargetItem   entities.ItemID
	Records      []*entities.StandardCostRecord
	CriticalPath *CriticalPathResult
	RolledAt     time.Time
}

// CriticalPathResult reports the longest cumulative-lead-time chain below a
// target item, for workbench display
type CriticalPathResult struct {
	Path          []entities.ItemID
	TotalLeadTime int
}
