package travelling

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"Flashover/internal/calc/correlation"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/series"
	"Flashover/internal/calc/timestep"
)

func office() input.Fields {
	return input.Fields{
		"duration":          "7200",
		"time_step":         "10",
		"fire_load_density": "570",
		"hrr_density":       "250",
		"spread_rate":       "0.01",
		"length":            "40",
		"width":             "10",
		"height":            "3",
		"element_position":  "20",
	}
}

func TestPhases(t *testing.T) {
	res, err := Run(office())
	require.NoError(t, err)
	require.Equal(t, series.Completed, res.Outcome)
	require.Equal(t, 2280.0, res.BurnTime)
	require.Equal(t, 2280.0, res.SpreadLimitTime)
	require.Equal(t, 4000.0, res.DecayTime)
	require.InDelta(t, 57000, res.PeakHRRKW, 1e-6)
	require.Equal(t, []string{"nft_limit=1050", "ambient=20"}, res.DefaultsApplied)

	s := res.Series
	q, _ := s.Value(227, ColHRR)
	require.InDelta(t, 25*2270, q, 1e-6)
	q, _ = s.Value(300, ColHRR)
	require.InDelta(t, 57000, q, 1e-6)

	last, _ := s.Last()
	require.Equal(t, 7200.0, last.T)
	require.Equal(t, 0.0, last.Values[s.Column(ColHRR)])
}

func TestGasTemperatureBounds(t *testing.T) {
	res, err := Run(office())
	require.NoError(t, err)
	s := res.Series

	first, _ := s.Value(0, ColGasTemp)
	require.InDelta(t, 20, first, 1e-9)
	for i := 0; i < s.Len(); i++ {
		v, _ := s.Value(i, ColGasTemp)
		require.GreaterOrEqual(t, v, 20-1e-9)
		require.LessOrEqual(t, v, 1050+1e-9)
		d, _ := s.Value(i, ColDistance)
		require.GreaterOrEqual(t, d, MinDistance)
	}

	require.InDelta(t, 1050, res.PeakTemperatureC, 1e-9)
	// the front reaches the element at 20 m / 0.01 m/s
	require.Equal(t, 2000.0, res.PeakTemperatureAt)
	require.Less(t, res.PeakTemperatureAt, res.DecayTime)
	require.Nil(t, res.PeakHeatFlux)
	require.Equal(t, -1, s.Column(ColHeatFlux))
}

func TestFireFrontClampedToFloor(t *testing.T) {
	res, err := Run(office())
	require.NoError(t, err)
	s := res.Series
	prev := -1.0
	for i := 0; i < s.Len(); i++ {
		front, _ := s.Value(i, ColFront)
		tail, _ := s.Value(i, ColTail)
		require.GreaterOrEqual(t, front, prev)
		require.LessOrEqual(t, front, 40.0)
		require.LessOrEqual(t, tail, front)
		prev = front
	}
}

func TestEqualPhaseBoundsAreSeparated(t *testing.T) {
	f := office()
	f["length"] = "22.8"
	f["element_position"] = "10"
	res, err := Run(f)
	require.NoError(t, err)
	require.Equal(t, 2280.0, res.DecayTime)
	require.Equal(t, 2270.0, res.SpreadLimitTime)
}

func TestInstantSpreadIsWholeFloor(t *testing.T) {
	f := office()
	f["spread_rate"] = "1e6"
	res, err := Run(f)
	require.NoError(t, err)

	whole := 250.0 * 10 * 40
	require.InDelta(t, whole, res.PeakHRRKW, 1e-6)
	require.Equal(t, 0.0, res.SpreadLimitTime)

	q, _ := res.Series.Value(0, ColHRR)
	require.InDelta(t, whole, q, 1e-6)
	q, _ = res.Series.Value(1, ColHRR)
	require.InDelta(t, whole, q, 1e-6)

	// the whole plate burns until t_burn, then every area burns out together
	front, _ := res.Series.Value(100, ColFront)
	tail, _ := res.Series.Value(100, ColTail)
	require.Equal(t, 40.0, front)
	require.Equal(t, 0.0, tail)
	q, _ = res.Series.Value(229, ColHRR)
	require.Equal(t, 0.0, q)

	peaks := []float64{}
	for _, x := range []string{"0", "20", "40"} {
		f["element_position"] = x
		res, err := Run(f)
		require.NoError(t, err)
		peaks = append(peaks, res.PeakTemperatureC)
	}
	require.InDelta(t, peaks[1], peaks[0], 1e-9)
	require.InDelta(t, peaks[1], peaks[2], 1e-9)
	require.InDelta(t, 1050, peaks[1], 1e-9)
}

func TestBurnoutTailTrailsByBurnTime(t *testing.T) {
	f := office()
	f["spread_rate"] = "0.1"
	res, err := Run(f)
	require.NoError(t, err)
	require.Equal(t, 400.0, res.SpreadLimitTime)
	require.Equal(t, 2280.0, res.DecayTime)

	// at 800 s the whole plate is alight: no area has burnt for t_burn yet
	front, _ := res.Series.Value(80, ColFront)
	tail, _ := res.Series.Value(80, ColTail)
	q, _ := res.Series.Value(80, ColHRR)
	require.Equal(t, 40.0, front)
	require.Equal(t, 0.0, tail)
	require.InDelta(t, 250.0*10*(front-tail), q, 1e-6)

	tail, _ = res.Series.Value(250, ColTail)
	require.InDelta(t, 0.1*(2500-2280), tail, 1e-9)
	q, _ = res.Series.Value(250, ColHRR)
	require.InDelta(t, 250.0*10*(40-tail), q, 1e-6)
}

func TestHeatFluxMode(t *testing.T) {
	f := office()
	f["mode"] = "heat_flux"
	res, err := Run(f)
	require.NoError(t, err)
	require.Equal(t, "heat_flux", res.Mode)
	require.Contains(t, res.DefaultsApplied, "emissivity=1")

	require.NotNil(t, res.PeakHeatFlux)
	want := correlation.RadiativeFlux(1, correlation.CelsiusToKelvin(1050), correlation.CelsiusToKelvin(20))
	require.InDelta(t, want, *res.PeakHeatFlux, 1e-9)

	flux, ok := res.Series.Value(0, ColHeatFlux)
	require.True(t, ok)
	require.InDelta(t, 0, flux, 1e-9)

	f["emissivity"] = "0.5"
	half, err := Run(f)
	require.NoError(t, err)
	require.InDelta(t, want/2, *half.PeakHeatFlux, 1e-9)
}

func TestInvalidInput(t *testing.T) {
	for field, value := range map[string]string{
		"element_position": "41",
		"spread_rate":      "0",
		"mode":             "smoke",
		"width":            "",
		"nft_limit":        "10",
	} {
		f := office()
		f[field] = value
		_, err := Run(f)
		require.ErrorIs(t, err, timestep.ErrInvalidInput, field)
	}

	f := office()
	f["mode"] = "heat_flux"
	f["emissivity"] = "1.5"
	_, err := Run(f)
	require.ErrorIs(t, err, timestep.ErrInvalidInput)
}

func TestHandler(t *testing.T) {
	body, err := json.Marshal(map[string]any{"fields": office(), "rows": 100})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/api/tools/travelling/calc", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Result Result         `json:"result"`
		Series *series.Series `json:"series"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, series.Completed, resp.Result.Outcome)
	require.LessOrEqual(t, resp.Series.Len(), 100)
	last, _ := resp.Series.Last()
	require.Equal(t, 7200.0, last.T)
}
