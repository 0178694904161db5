package run

import (
	"testing"

	"github.com/stretchr/testify/require"

	"Flashover/internal/calc/detector"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/series"
	"Flashover/internal/calc/steel"
)

func detectorFields() input.Fields {
	return input.Fields{
		"duration": "600", "time_step": "1", "alpha": "0.0117", "height": "3", "radius": "2",
		"rti": "50", "c": "0.4", "hrr_density": "250", "t_act": "68", "c_conv": "70",
	}
}

func TestParseSelectsVariant(t *testing.T) {
	p, defaults, err := Parse(Detector, detectorFields())
	require.NoError(t, err)
	require.IsType(t, DetectorParams{}, p)
	require.Equal(t, Detector, p.Calculator())
	require.Equal(t, []string{"ambient=20"}, defaults)

	p, _, err = Parse(Steel, input.Fields{"duration": "60", "time_step": "1", "section_factor": "100", "protection": "protected",
		"conductivity": "0.1", "thickness": "0.02", "protection_specific_heat": "1000", "protection_density": "300"})
	require.NoError(t, err)
	sp := p.(SteelParams)
	require.IsType(t, steel.Protected{}, sp.Protection)

	_, _, err = Parse("sprinkler", nil)
	require.Error(t, err)
}

func TestRunActivated(t *testing.T) {
	out := Run(Detector, detectorFields(), Options{})
	require.Equal(t, series.Activated, out.Outcome)
	require.True(t, out.Outcome.Computed())
	require.Empty(t, out.Message)
	require.NotNil(t, out.Series)
	require.Equal(t, []string{"ambient=20"}, out.DefaultsApplied)

	r, ok := out.Result.(detector.Result)
	require.True(t, ok)
	require.NotNil(t, r.ActivationTime)

	labels := map[string]bool{}
	for _, p := range out.Summary() {
		labels[p.Label] = true
	}
	require.True(t, labels["activation_time_s"])
	require.Contains(t, out.Notes(), "activates")
}

func TestRunConvertsFailures(t *testing.T) {
	f := detectorFields()
	delete(f, "rti")
	out := Run(Detector, f, Options{})
	require.Equal(t, series.InvalidInput, out.Outcome)
	require.Contains(t, out.Message, "rti")
	require.Nil(t, out.Result)
	require.Equal(t, out.Message, out.Notes())

	out = Run(Detector, detectorFields(), Options{MaxIterations: 10})
	require.Equal(t, series.TooFine, out.Outcome)
	require.False(t, out.Outcome.Computed())

	f = detectorFields()
	f["height"], f["hrr_density"], f["alpha"], f["t_act"] = "0.5", "5000", "1", "10000000"
	out = Run(Detector, f, Options{})
	require.Equal(t, series.DomainViolation, out.Outcome)
	require.Contains(t, out.Message, "step")
}

func TestExecuteNil(t *testing.T) {
	out := Execute(nil, Options{})
	require.Equal(t, series.InvalidInput, out.Outcome)
}

func TestStaticCalculators(t *testing.T) {
	out := Run(Flame, input.Fields{"hrr": "1000", "hrr_density": "250"}, Options{})
	require.Equal(t, series.Completed, out.Outcome)
	require.Nil(t, out.Series)
	require.Len(t, out.Summary(), 3)

	out = Run(Reduction, input.Fields{"temperature": "600"}, Options{})
	require.Equal(t, series.Completed, out.Outcome)
	sum := out.Summary()
	require.Len(t, sum, 2)
	require.Equal(t, "reduction", sum[0].Label)
	require.InDelta(t, 0.47, sum[0].Value, 1e-12)
	require.Equal(t, Pair{"temperature_c", 600}, sum[1])
}

func TestParseCalculator(t *testing.T) {
	for _, c := range Calculators() {
		got, err := ParseCalculator(string(c))
		require.NoError(t, err)
		require.Equal(t, c, got)
	}
	_, err := ParseCalculator("merge")
	require.Error(t, err)
}
