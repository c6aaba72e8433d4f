package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfactory/planning/pkg/domain/entities"
)

func TestItemRepositoryLoadAndGet(t *testing.T) {
	repo := NewItemRepository(4)

	err := repo.LoadItems([]*entities.Item{
		{ID: "BIKE", Description: "Bicycle", Procurement: entities.Make, LeadTimeDays: 5},
		{ID: "WHEEL", Description: "Wheel", Procurement: entities.Buy, LeadTimeDays: 10},
	})
	require.NoError(t, err)

	item, err := repo.GetItem("WHEEL")
	require.NoError(t, err)
	assert.Equal(t, "Wheel", item.Description)

	_, err = repo.GetItem("MISSING")
	assert.Error(t, err)

	all, err := repo.GetAllItems()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestItemRepositoryRejectsDuplicates(t *testing.T) {
	repo := NewItemRepository(2)
	require.NoError(t, repo.LoadItems([]*entities.Item{{ID: "BIKE"}}))

	err := repo.LoadItems([]*entities.Item{{ID: "BIKE"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestItemRepositoryVersionBumpsOnLoad(t *testing.T) {
	repo := NewItemRepository(2)
	before := repo.SnapshotVersion()

	require.NoError(t, repo.LoadItems([]*entities.Item{{ID: "BIKE"}}))
	assert.Greater(t, repo.SnapshotVersion(), before)
}

func TestItemRepositoryReturnsCopies(t *testing.T) {
	repo := NewItemRepository(1)
	require.NoError(t, repo.LoadItems([]*entities.Item{{ID: "BIKE", LeadTimeDays: 5}}))

	item, err := repo.GetItem("BIKE")
	require.NoError(t, err)
	item.LeadTimeDays = 99

	again, err := repo.GetItem("BIKE")
	require.NoError(t, err)
	assert.Equal(t, 5, again.LeadTimeDays)
}
