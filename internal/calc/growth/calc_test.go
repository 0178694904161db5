package growth

import (
	"bytes"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"Flashover/internal/calc/input"
	"Flashover/internal/calc/timestep"
)

func TestMediumClass(t *testing.T) {
	res, err := Run(input.Fields{"duration": "600", "time_step": "1", "class": "medium"})
	require.NoError(t, err)
	require.Equal(t, 0.0117, res.Alpha)
	require.InDelta(t, 4212, res.PeakHRRKW, 1e-6)
	require.Nil(t, res.TimeToPeak)

	// ∫ α t² dt = α T³ / 3
	require.InDelta(t, 0.0117*math.Pow(600, 3)/3/1000, res.EnergyMJ, 0.01)
	require.Equal(t, 601, res.Series.Len())
	require.Equal(t, -1, res.Series.Column(ColDiameter))
}

func TestSteadyStateCap(t *testing.T) {
	res, err := Run(input.Fields{"duration": "600", "time_step": "1", "class": "medium", "max_hrr": "1000", "hrr_density": "250"})
	require.NoError(t, err)
	require.Equal(t, 1000.0, res.PeakHRRKW)
	require.NotNil(t, res.TimeToPeak)
	require.InDelta(t, math.Sqrt(1000/0.0117), *res.TimeToPeak, 1e-9)

	last, _ := res.Series.Last()
	require.Equal(t, 1000.0, last.Values[res.Series.Column(ColHRR)])
	d, ok := res.Series.Value(res.Series.Len()-1, ColDiameter)
	require.True(t, ok)
	require.InDelta(t, math.Sqrt(4*1000/(math.Pi*250)), d, 1e-12)
}

func TestCapNotReached(t *testing.T) {
	res, err := Run(input.Fields{"duration": "60", "time_step": "1", "alpha": "0.0117", "max_hrr": "1000"})
	require.NoError(t, err)
	require.Nil(t, res.TimeToPeak)
	require.Less(t, res.PeakHRRKW, 1000.0)
}

func TestEnergyIsMonotonic(t *testing.T) {
	res, err := Run(input.Fields{"duration": "300", "time_step": "7", "class": "fast"})
	require.NoError(t, err)
	for i := 1; i < res.Series.Len(); i++ {
		a, _ := res.Series.Value(i-1, ColEnergy)
		b, _ := res.Series.Value(i, ColEnergy)
		require.Greater(t, b, a)
	}
}

func TestInvalidInput(t *testing.T) {
	for _, f := range []input.Fields{
		{"duration": "600", "time_step": "1"},
		{"duration": "600", "time_step": "1", "class": "glacial"},
		{"duration": "600", "time_step": "1", "class": "custom", "alpha": "-1"},
		{"duration": "600", "time_step": "1", "class": "slow", "max_hrr": "-5"},
		{"duration": "600", "class": "slow"},
	} {
		_, err := Run(f)
		require.ErrorIs(t, err, timestep.ErrInvalidInput, "%v", f)
	}
}

func TestHugeAlphaIsInvalidInput(t *testing.T) {
	f := input.Fields{"duration": "600", "time_step": "1", "class": "custom", "alpha": "1e305"}
	_, err := Run(f)
	require.ErrorIs(t, err, timestep.ErrInvalidInput)

	body := []byte(`{"fields":{"duration":"600","time_step":"1","class":"custom","alpha":"1e305"}}`)
	rec := httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/api/tools/growth", bytes.NewReader(body)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), `"outcome":"invalid_input"`)
}
