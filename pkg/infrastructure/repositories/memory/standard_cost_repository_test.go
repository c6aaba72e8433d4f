package memory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfactory/planning/pkg/domain/entities"
)

func costRecord(itemID entities.ItemID, cost int64, effective time.Time) *entities.StandardCostRecord {
	breakdown := make(entities.CostBreakdown)
	breakdown.Add(entities.Material, decimal.NewFromInt(cost))
	return &entities.StandardCostRecord{
		ItemID:        itemID,
		UnitCost:      decimal.NewFromInt(cost),
		Breakdown:     breakdown,
		EffectiveDate: effective,
		Active:        true,
		RunID:         entities.NewRunID(),
	}
}

func TestStandardCostRepository_HistoryRetained(t *testing.T) {
	repo := NewStandardCostRepository()
	day1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 1, 0)

	require.NoError(t, repo.SaveRecords([]*entities.StandardCostRecord{costRecord("PUMP", 10, day1)}))
	require.NoError(t, repo.SaveRecords([]*entities.StandardCostRecord{costRecord("PUMP", 12, day2)}))

	records, err := repo.GetRecords("PUMP")
	require.NoError(t, err)
	require.Len(t, records, 2, "history is retained, never deleted")

	// Ordered by effective date descending
	assert.True(t, records[0].EffectiveDate.After(records[1].EffectiveDate))
	assert.True(t, records[0].Active)
	assert.False(t, records[1].Active, "prior record deactivated")
	assert.True(t, records[0].UnitCost.Equal(decimal.NewFromInt(12)))
}

func TestStandardCostRepository_GetActiveRecord(t *testing.T) {
	repo := NewStandardCostRepository()
	day1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	active, err := repo.GetActiveRecord("NOTHING")
	require.NoError(t, err)
	assert.Nil(t, active)

	require.NoError(t, repo.SaveRecords([]*entities.StandardCostRecord{costRecord("PUMP", 10, day1)}))
	require.NoError(t, repo.SaveRecords([]*entities.StandardCostRecord{costRecord("PUMP", 12, day1.AddDate(0, 1, 0))}))

	active, err = repo.GetActiveRecord("PUMP")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.True(t, active.UnitCost.Equal(decimal.NewFromInt(12)))
}

func TestStandardCostRepository_DeactivationIsPerItem(t *testing.T) {
	repo := NewStandardCostRepository()
	day1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveRecords([]*entities.StandardCostRecord{
		costRecord("PUMP", 10, day1),
		costRecord("VALVE", 5, day1),
	}))
	require.NoError(t, repo.SaveRecords([]*entities.StandardCostRecord{costRecord("PUMP", 12, day1.AddDate(0, 1, 0))}))

	valve, err := repo.GetActiveRecord("VALVE")
	require.NoError(t, err)
	require.NotNil(t, valve)
	assert.True(t, valve.Active)
	assert.True(t, valve.UnitCost.Equal(decimal.NewFromInt(5)))
}
