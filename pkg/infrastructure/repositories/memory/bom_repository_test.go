package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfactory/planning/pkg/domain/entities"
)

func TestBOMRepositoryGetByParent(t *testing.T) {
	repo := NewBOMRepository(4)
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	err := repo.LoadBOMLines([]*entities.BOMLine{
		{ParentID: "BIKE", ChildID: "WHEEL", QtyPer: 2, Effectivity: entities.DateEffectivity{From: from}},
		{ParentID: "BIKE", ChildID: "FRAME", QtyPer: 1, Effectivity: entities.DateEffectivity{From: from}},
		{ParentID: "WHEEL", ChildID: "SPOKE", QtyPer: 32, Effectivity: entities.DateEffectivity{From: from}},
	})
	require.NoError(t, err)

	lines, err := repo.GetBOMLines("BIKE")
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	none, err := repo.GetBOMLines("SPOKE")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBOMRepositoryEffectivityFilter(t *testing.T) {
	repo := NewBOMRepository(4)
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	err := repo.LoadBOMLines([]*entities.BOMLine{
		{ParentID: "BIKE", ChildID: "WHEEL_V1", QtyPer: 2,
			Effectivity: entities.DateEffectivity{From: from, To: to}},
		{ParentID: "BIKE", ChildID: "WHEEL_V2", QtyPer: 2,
			Effectivity: entities.DateEffectivity{From: to.AddDate(0, 0, 1)}},
	})
	require.NoError(t, err)

	early, err := repo.GetEffectiveLines("BIKE", from.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, early, 1)
	assert.Equal(t, entities.ItemID("WHEEL_V1"), early[0].ChildID)

	late, err := repo.GetEffectiveLines("BIKE", to.AddDate(0, 2, 0))
	require.NoError(t, err)
	require.Len(t, late, 1)
	assert.Equal(t, entities.ItemID("WHEEL_V2"), late[0].ChildID)
}

func TestBOMRepositoryVersionBumpsOnLoad(t *testing.T) {
	repo := NewBOMRepository(1)
	before := repo.SnapshotVersion()

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.LoadBOMLines([]*entities.BOMLine{
		{ParentID: "BIKE", ChildID: "WHEEL", QtyPer: 2, Effectivity: entities.DateEffectivity{From: from}},
	}))
	assert.Greater(t, repo.SnapshotVersion(), before)
}
