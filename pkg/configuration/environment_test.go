package configuration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c := &Configuration{}
	require.NoError(t, c.load(nil))

	assert.Equal(t, 4, c.Planner.Workers)
	assert.Equal(t, 0, c.Planner.ExpediteToleranceDays)
	assert.False(t, c.Planner.ContinueOnMasterDataError)
	assert.Equal(t, 10*time.Minute, c.Planner.RunTimeout)
	assert.NotNil(t, c.Logger())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PLANNER_WORKERS", "8")
	t.Setenv("PLANNER_EXPEDITE_TOLERANCE_DAYS", "2")
	t.Setenv("PLANNER_RUN_TIMEOUT", "30s")
	t.Setenv("LOG_LEVEL", "debug")

	c := &Configuration{}
	require.NoError(t, c.load(nil))

	assert.Equal(t, 8, c.Planner.Workers)
	assert.Equal(t, 2, c.Planner.ExpediteToleranceDays)
	assert.Equal(t, 30*time.Second, c.Planner.RunTimeout)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestPlannerValidation(t *testing.T) {
	t.Setenv("PLANNER_WORKERS", "0")

	c := &Configuration{}
	err := c.load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Workers")
}
