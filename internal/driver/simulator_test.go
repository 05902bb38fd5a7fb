package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bravo-deck-backend/internal/deck"
)

func newConnectedSimulator(t *testing.T) (*Simulator, *deck.DeckState) {
	t.Helper()
	state := deck.New(9)
	sim := NewSimulator(state, "test")
	require.NoError(t, sim.Connect())
	return sim, state
}

func TestCommandsRequireConnection(t *testing.T) {
	state := deck.New(9)
	sim := NewSimulator(state, "test")

	assert.ErrorIs(t, sim.Aspirate(1, 100), ErrNotConnected)
	assert.ErrorIs(t, sim.Dispense(1, 100), ErrNotConnected)
	assert.ErrorIs(t, sim.TipsOn(1, "200uL"), ErrNotConnected)
	assert.ErrorIs(t, sim.MoveToLocation(1), ErrNotConnected)

	// Each rejection is recorded as a deck-level error.
	assert.Equal(t, 4, state.GetDeckSummary().DeckInfo.ErrorCount)

	require.NoError(t, sim.Connect())
	assert.True(t, sim.IsConnected())
	sim.Disconnect()
	assert.False(t, sim.IsConnected())
}

func TestVolumeValidation(t *testing.T) {
	sim, state := newConnectedSimulator(t)

	assert.ErrorIs(t, sim.Aspirate(2, 0), ErrInvalidVolume)
	assert.ErrorIs(t, sim.Dispense(2, -10), ErrInvalidVolume)

	// The failure is pinned to the addressed nest.
	nest := state.GetNest(2)
	assert.Equal(t, deck.StatusError, nest.OperationStatus)
	assert.Equal(t, 2, state.GetDeckSummary().DeckInfo.ErrorCount)

	// Counters are untouched: rejected commands never start operations.
	assert.Equal(t, 0, state.GetDeckSummary().DeckInfo.GlobalOperationCount)
}

func TestAspirateDispenseRoundTrip(t *testing.T) {
	sim, state := newConnectedSimulator(t)

	state.SetLabwareAtNest(2, "microplate_96", "Source")
	state.SetLabwareAtNest(3, "microplate_96", "Dest")

	require.NoError(t, sim.Aspirate(2, 100))
	require.NoError(t, sim.Dispense(3, 100))

	assert.Equal(t, 100.0, state.GetNest(2).Volume.CurrentVolume)
	assert.Equal(t, -100.0, state.GetNest(3).Volume.CurrentVolume)

	summary := state.GetDeckSummary()
	assert.Equal(t, 2, summary.DeckInfo.GlobalOperationCount)
	assert.Equal(t, 0, summary.ActiveOperations)
}

func TestTipsLifecycle(t *testing.T) {
	sim, state := newConnectedSimulator(t)
	state.SetLabwareAtNest(1, "tip_rack", "200uL Tips")

	require.NoError(t, sim.TipsOn(1, "200uL"))
	assert.Equal(t, []int{1}, state.GetNestsWithTips())
	assert.Equal(t, "200uL", state.GetNest(1).Tips.TipType)

	require.NoError(t, sim.TipsOff(1))
	assert.Empty(t, state.GetNestsWithTips())
	assert.Equal(t, "tips_off", state.GetNest(1).Tips.LastTipOperation)
}

func TestWashAccumulatesTotals(t *testing.T) {
	sim, state := newConnectedSimulator(t)
	state.SetLabwareAtNest(4, "reservoir", "Wash Buffer")

	require.NoError(t, sim.Wash(4, 200, 3))

	v := state.GetNest(4).Volume
	assert.Equal(t, 0.0, v.CurrentVolume)
	assert.Equal(t, 600.0, v.TotalAspirated)
	assert.Equal(t, 600.0, v.TotalDispensed)
}

func TestMixAndPumpLeaveVolumeAlone(t *testing.T) {
	sim, state := newConnectedSimulator(t)

	require.NoError(t, sim.Mix(2, 50, 5))
	require.NoError(t, sim.Pump(4, 1000))

	assert.Equal(t, 0.0, state.GetNest(2).Volume.CurrentVolume)
	assert.Equal(t, 0.0, state.GetNest(4).Volume.CurrentVolume)
	assert.Equal(t, 2, state.GetDeckSummary().DeckInfo.GlobalOperationCount)
}

func TestPickAndPlaceMovesLabware(t *testing.T) {
	sim, state := newConnectedSimulator(t)
	state.SetLabwareAtNest(5, "microplate_96", "Plate A")

	require.NoError(t, sim.PickAndPlace(5, 6))

	assert.Equal(t, deck.LabwareEmpty, state.GetNest(5).LabwareType)
	assert.Equal(t, deck.LabwareMicroplate96, state.GetNest(6).LabwareType)
	assert.Equal(t, "Plate A", state.GetNest(6).LabwareName)
}

func TestPickAndPlaceRejectsEmptySource(t *testing.T) {
	sim, state := newConnectedSimulator(t)

	err := sim.PickAndPlace(5, 6)
	assert.ErrorIs(t, err, ErrInvalidNest)
	assert.Equal(t, 1, state.GetDeckSummary().DeckInfo.ErrorCount)

	assert.ErrorIs(t, sim.PickAndPlace(0, 6), ErrInvalidNest)
	assert.ErrorIs(t, sim.PickAndPlace(5, 99), ErrInvalidNest)
}

func TestMoveToLocation(t *testing.T) {
	sim, state := newConnectedSimulator(t)

	require.NoError(t, sim.MoveToLocation(7))
	assert.Equal(t, deck.StatusIdle, state.GetNest(7).OperationStatus)
	assert.Equal(t, 1, state.GetDeckSummary().DeckInfo.GlobalOperationCount)
	assert.ErrorIs(t, sim.MoveToLocation(12), ErrInvalidNest)
}
