package radiation

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"Flashover/internal/calc/correlation"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/timestep"
)

func opening() input.Fields {
	return input.Fields{"emitter_temperature": "800", "width": "4", "height": "3", "distance": "5"}
}

func TestFlux(t *testing.T) {
	res, err := Run(opening())
	require.NoError(t, err)
	require.Equal(t, []string{"emissivity=1", "ambient=20", "critical_flux=12.6"}, res.DefaultsApplied)

	emitted := correlation.RadiativeFlux(1, 1073.15, 293.15)
	require.InDelta(t, emitted, res.EmittedFlux, 1e-9)
	require.InDelta(t, correlation.ViewFactorParallel(4, 3, 5), res.ViewFactor, 1e-12)
	require.InDelta(t, emitted*res.ViewFactor, res.ReceivedFlux, 1e-9)
	require.True(t, res.OK)

	f := opening()
	f["distance"] = "0.5"
	near, err := Run(f)
	require.NoError(t, err)
	require.False(t, near.OK)
}

func TestSeparation(t *testing.T) {
	f := opening()
	f["method"] = "separation"
	delete(f, "distance")
	res, err := Run(f)
	require.NoError(t, err)
	require.Greater(t, res.SeparationM, 0.0)
	require.InDelta(t, 12.6, res.ReceivedFlux, 0.01)

	nearer := opening()
	nearer["distance"] = strconv.FormatFloat(res.SeparationM*0.9, 'f', -1, 64)
	at, err := Run(nearer)
	require.NoError(t, err)
	require.False(t, at.OK)
}

func TestSeparationOfWeakEmitterIsZero(t *testing.T) {
	f := input.Fields{"method": "separation", "emitter_temperature": "100", "width": "4", "height": "3"}
	res, err := Run(f)
	require.NoError(t, err)
	require.Equal(t, 0.0, res.SeparationM)
}

func TestInvalid(t *testing.T) {
	for _, f := range []input.Fields{
		{"emitter_temperature": "10", "width": "4", "height": "3", "distance": "5"},
		{"emitter_temperature": "800", "width": "4", "height": "3"},
		{"emitter_temperature": "800", "width": "4", "height": "3", "distance": "5", "emissivity": "0"},
		{"emitter_temperature": "800", "width": "4", "height": "3", "distance": "5", "method": "cfd"},
	} {
		_, err := Run(f)
		require.ErrorIs(t, err, timestep.ErrInvalidInput, "%v", f)
	}
}

func TestHugeEmitterIsInvalidInput(t *testing.T) {
	f := opening()
	f["emitter_temperature"] = "1e100"
	_, err := Run(f)
	require.ErrorIs(t, err, timestep.ErrInvalidInput)

	f["method"] = "separation"
	delete(f, "distance")
	_, err = Run(f)
	require.ErrorIs(t, err, timestep.ErrInvalidInput)
}
