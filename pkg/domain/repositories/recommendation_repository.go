package repositories

import "github.com/openfactory/planning/pkg/domain/entities"

// RecommendationRepository persists planned recommendations keyed by run id.
type RecommendationRepository interface {
	// ReplaceForScope atomically stores a completed run's recommendations and
	// marks the prior runs' Proposed recommendations for the same scope key
	// Superseded. Accepted and Rejected recommendations are never touched.
	ReplaceForScope(scopeKey string, runID entities.RunID, recs []*entities.PlannedRecommendation) error

	GetByRun(runID entities.RunID) ([]*entities.PlannedRecommendation, error)
	GetByItem(itemID entities.ItemID) ([]*entities.PlannedRecommendation, error)

	// UpdateStatus transitions one recommendation's workflow status. Used by
	// the acceptance workflow outside the planning core.
	UpdateStatus(runID entities.RunID, itemID entities.ItemID, recType entities.RecommendationType, status entities.RecommendationStatus) error
}
