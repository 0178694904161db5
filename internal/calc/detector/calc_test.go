package detector

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"Flashover/internal/calc/correlation"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/series"
	"Flashover/internal/calc/timestep"
)

func mediumGrowth() input.Fields {
	return input.Fields{
		"duration":    "600",
		"time_step":   "1",
		"alpha":       "0.0117",
		"height":      "3",
		"radius":      "2",
		"rti":         "50",
		"c":           "0.4",
		"hrr_density": "250",
		"t_act":       "68",
		"c_conv":      "70",
	}
}

func TestMediumGrowthActivates(t *testing.T) {
	res, err := Run(mediumGrowth())
	require.NoError(t, err)
	require.Equal(t, series.Activated, res.Outcome)
	require.NotNil(t, res.ActivationTime)
	require.Greater(t, *res.ActivationTime, 0.0)
	require.Less(t, *res.ActivationTime, 600.0)
	require.Contains(t, []correlation.Regime{correlation.Plume, correlation.Jet}, res.Regime)
	require.GreaterOrEqual(t, res.DetectorTemperatureC, 68.0)

	last, ok := res.Series.Last()
	require.True(t, ok)
	require.Equal(t, *res.ActivationTime, last.T)
	v, _ := res.Series.Value(res.Series.Len()-1, ColDetector)
	require.GreaterOrEqual(t, v, 68.0)

	require.Equal(t, []string{"ambient=20"}, res.DefaultsApplied)
}

func TestActivationIsFirstCrossing(t *testing.T) {
	res, err := Run(mediumGrowth())
	require.NoError(t, err)
	for i := 0; i < res.Series.Len()-1; i++ {
		v, _ := res.Series.Value(i, ColDetector)
		require.Less(t, v, 68.0, "record %d", i)
	}
}

func TestNotActivatedWithinDuration(t *testing.T) {
	f := mediumGrowth()
	f["duration"] = "120"
	res, err := Run(f)
	require.NoError(t, err)
	require.Equal(t, series.NotActivated, res.Outcome)
	require.Nil(t, res.ActivationTime)

	peak, _, ok := res.Series.Peak(ColDetector)
	require.True(t, ok)
	require.Less(t, peak, 68.0)

	last, _ := res.Series.Last()
	require.Equal(t, 120.0, last.T)
}

func TestDeterministic(t *testing.T) {
	a, err := Run(mediumGrowth())
	require.NoError(t, err)
	b, err := Run(mediumGrowth())
	require.NoError(t, err)
	require.Equal(t, *a.ActivationTime, *b.ActivationTime)
	require.Equal(t, a.Series.Records, b.Series.Records)
}

func TestMonotonicTime(t *testing.T) {
	f := mediumGrowth()
	f["time_step"] = "7"
	f["t_act"] = "500"
	res, err := Run(f)
	require.NoError(t, err)
	for i := 1; i < res.Series.Len(); i++ {
		require.Greater(t, res.Series.Records[i].T, res.Series.Records[i-1].T)
	}
	last, _ := res.Series.Last()
	require.Equal(t, 600.0, last.T)
}

func TestPlumeDirectlyAbove(t *testing.T) {
	f := mediumGrowth()
	f["radius"] = "0"
	res, err := Run(f)
	require.NoError(t, err)
	require.Equal(t, correlation.Plume, res.Regime)

	// closer to the axis means earlier activation
	jet, err := Run(mediumGrowth())
	require.NoError(t, err)
	require.Less(t, *res.ActivationTime, *jet.ActivationTime)
}

func TestDomainViolationAbortsRun(t *testing.T) {
	f := mediumGrowth()
	f["height"] = "0.5"
	f["hrr_density"] = "5000"
	f["alpha"] = "1"
	f["t_act"] = "10000000"
	_, err := Run(f)
	require.ErrorIs(t, err, timestep.ErrDomain)

	var de *timestep.DomainError
	require.True(t, errors.As(err, &de))
	require.Greater(t, de.Step, 0)
	require.Contains(t, de.Reason, "virtual origin")
}

func TestInvalidInputDeclines(t *testing.T) {
	for field, value := range map[string]string{
		"alpha":       "",
		"rti":         "0",
		"hrr_density": "-5",
		"height":      "three",
		"t_act":       "15",
		"c_conv":      "150",
		"time_step":   "0",
	} {
		f := mediumGrowth()
		f[field] = value
		_, err := Run(f)
		require.ErrorIs(t, err, timestep.ErrInvalidInput, field)
	}
}

func TestTooFine(t *testing.T) {
	in, _, err := Parse(mediumGrowth())
	require.NoError(t, err)
	in.Grid.Limit = 100
	_, err = Calculate(in)
	require.ErrorIs(t, err, timestep.ErrTooFine)
}

func TestHandler(t *testing.T) {
	body, err := json.Marshal(map[string]any{"fields": mediumGrowth(), "rows": 50})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/api/tools/detector/calc", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Result Result         `json:"result"`
		Series *series.Series `json:"series"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, series.Activated, resp.Result.Outcome)
	require.LessOrEqual(t, resp.Series.Len(), 50)

	bad := mediumGrowth()
	delete(bad, "rti")
	body, _ = json.Marshal(map[string]any{"fields": bad})
	rec = httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/api/tools/detector/calc", bytes.NewReader(body)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), string(series.InvalidInput))
}
