package core

import (
	"testing"

	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/arcflow-labs/pocl/internal/ordering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedStepDurationDummyIsZero(t *testing.T) {
	ord := ordering.NewBinary()
	s := domain.Step{ID: 1, Action: domain.DummyInitialAction(&domain.Action{Name: "travel"})}
	ord = seedStepDuration(ord, s)

	start, ok := ord.StartTime(1)
	require.True(t, ok)
	assert.Equal(t, 0.0, start)
}

func TestSeedStepDurationPrimitiveStepIsUnitCost(t *testing.T) {
	ord := ordering.NewBinary()
	initial := domain.Step{ID: domain.InitialStepID, Action: &domain.Action{Name: "<initial>"}}
	a := domain.Step{ID: 1, Action: &domain.Action{Name: "A"}}
	ord = seedStepDuration(ord, initial)
	ord = seedStepDuration(ord, a)

	ord, ok := ord.Refine(initial.Ref(domain.AtEnd), a.Ref(domain.AtStart), 0)
	require.True(t, ok)

	start, ok := ord.StartTime(1)
	require.True(t, ok)
	assert.Equal(t, 0.0, start)

	makespan, ok := ord.Schedule()
	require.True(t, ok)
	assert.Equal(t, 1.0, makespan)
}

func TestSeedStepDurationDurativeUsesDeclaredDuration(t *testing.T) {
	ord := ordering.NewTemporal()
	s := domain.Step{ID: 1, Action: &domain.Action{Name: "fly", Durative: true, Duration: 3.5}}
	ord = seedStepDuration(ord, s)

	makespan, ok := ord.Schedule()
	require.True(t, ok)
	assert.Equal(t, 3.5, makespan)
}
