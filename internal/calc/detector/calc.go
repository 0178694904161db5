// Package detector estimates when a heat detector under a ceiling activates
// during a growing t² fire. Gas temperature and velocity come from the PD 7974-2
// plume and ceiling-jet correlations; the detector element follows the RTI
// thermal-lag equation integrated by forward Euler.
package detector

import (
	"fmt"
	"math"

	"Flashover/internal/calc/correlation"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/series"
	"Flashover/internal/calc/timestep"
)

// Defaults applied when the corresponding field is left blank.
const (
	DefaultConvectivePercent = 70.0
	DefaultAmbientC          = 20.0
)

// Series columns.
const (
	ColHRR         = "hrr_kw"
	ColOrigin      = "virtual_origin_m"
	ColGasTemp     = "gas_temperature_c"
	ColGasVelocity = "gas_velocity_ms"
	ColDetector    = "detector_temperature_c"
	ColRate        = "detector_rate_ks"
)

type Input struct {
	Grid                  timestep.Grid `json:"grid"`
	Alpha                 float64       `json:"alpha"`       // kW/s²
	Height                float64       `json:"height"`      // m, fire base to ceiling
	Radius                float64       `json:"radius"`      // m, horizontal offset
	RTI                   float64       `json:"rti"`         // (m·s)^0.5
	Conduction            float64       `json:"c"`           // (m/s)^0.5
	HRRDensity            float64       `json:"hrr_density"` // kW/m²
	ActivationTemperature float64       `json:"t_act"`       // °C
	ConvectivePercent     float64       `json:"c_conv"`      // %
	AmbientC              float64       `json:"ambient"`     // °C
}

type Result struct {
	Outcome              series.Outcome     `json:"outcome"`
	ActivationTime       *float64           `json:"activation_time"`
	Regime               correlation.Regime `json:"regime"`
	DetectorTemperatureC float64            `json:"detector_temperature_c"`
	GasTemperatureC      float64            `json:"gas_temperature_c"`
	HRRKW                float64            `json:"hrr_kw"`
	DefaultsApplied      []string           `json:"defaults_applied,omitempty"`
	Notes                string             `json:"notes"`
	Series               *series.Series     `json:"-"`
}

// Parse reads an Input from form fields.
func Parse(f input.Fields) (Input, []string, error) {
	r := input.NewReader(f)
	in := Input{
		Grid:                  r.Grid(),
		Alpha:                 r.Positive("alpha"),
		Height:                r.Positive("height"),
		Radius:                r.NonNegative("radius"),
		RTI:                   r.Positive("rti"),
		Conduction:            r.NonNegative("c"),
		HRRDensity:            r.Positive("hrr_density"),
		ActivationTemperature: r.Number("t_act"),
		ConvectivePercent:     r.PositiveOr("c_conv", DefaultConvectivePercent),
		AmbientC:              r.NumberOr("ambient", DefaultAmbientC),
	}
	if err := r.Err(); err != nil {
		return Input{}, nil, err
	}
	return in, r.Defaults(), nil
}

func (in Input) validate() error {
	if err := in.Grid.Validate(); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"alpha", in.Alpha}, {"height", in.Height}, {"rti", in.RTI}, {"hrr_density", in.HRRDensity},
	} {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return timestep.Invalid(f.name, "must be a positive number, got %v", f.v)
		}
	}
	if in.Radius < 0 {
		return timestep.Invalid("radius", "must not be negative")
	}
	if in.Conduction < 0 {
		return timestep.Invalid("c", "must not be negative")
	}
	if in.ConvectivePercent <= 0 || in.ConvectivePercent > 100 {
		return timestep.Invalid("c_conv", "must be in (0, 100], got %v", in.ConvectivePercent)
	}
	if in.ActivationTemperature <= in.AmbientC {
		return timestep.Invalid("t_act", "must exceed ambient %v °C", in.AmbientC)
	}
	return nil
}

// gas is the flow at the detector for one step.
type gas struct {
	hrr, origin, rise, velocity float64
	regime                      correlation.Regime
}

func (in Input) gasAt(t, ambient float64) (gas, error) {
	q := correlation.TSquaredHRR(in.Alpha, t)
	qc := q * in.ConvectivePercent / 100
	z0 := correlation.VirtualOrigin(correlation.FireDiameter(q, in.HRRDensity), q)
	g := gas{hrr: q, origin: z0, regime: correlation.SelectJetOrPlume(in.Radius, in.Height, z0)}

	var err error
	if g.regime == correlation.Jet {
		if g.rise, err = correlation.CeilingJetTemperatureRise(qc, in.Radius, in.Height, z0, ambient); err != nil {
			return g, err
		}
		g.velocity, err = correlation.CeilingJetVelocity(qc, in.Radius, in.Height, z0, ambient)
		return g, err
	}
	if g.rise, err = correlation.PlumeTemperatureRise(qc, in.Height, z0, ambient); err != nil {
		return g, err
	}
	g.velocity, err = correlation.PlumeVelocity(qc, in.Height, z0, ambient)
	return g, err
}

// rate is dT_d/dt = √u/RTI (T_g - T_d) - C/RTI (T_d - T_∞).
func (in Input) rate(detector, gasTemp, velocity, ambient float64) float64 {
	su := math.Sqrt(velocity)
	return su/in.RTI*(gasTemp-detector) - in.Conduction/in.RTI*(detector-ambient)
}

// Calculate integrates the detector temperature from t=0 and stops at the
// first step where it reaches the activation temperature.
func Calculate(in Input) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}

	ambient := correlation.CelsiusToKelvin(in.AmbientC)
	detector := ambient

	s := series.New(ColHRR, ColOrigin, ColGasTemp, ColGasVelocity, ColDetector, ColRate)
	res := Result{Outcome: series.NotActivated, Series: s}

	g := in.Grid
	n := g.Len()
LOOP:
	for i := 0; i < n; i++ {
		t := g.At(i)
		flow, err := in.gasAt(t, ambient)
		if err != nil {
			return Result{}, fmt.Errorf("detector: %w", &timestep.DomainError{Step: i, Time: t, Reason: err.Error()})
		}
		gasTemp := ambient + flow.rise

		var dTd float64
		if i > 0 {
			dTd = in.rate(detector, gasTemp, flow.velocity, ambient)
			detector += dTd * (t - g.At(i-1))
		}
		if err := s.Append(t,
			flow.hrr, flow.origin,
			correlation.KelvinToCelsius(gasTemp), flow.velocity,
			correlation.KelvinToCelsius(detector), dTd,
		); err != nil {
			return Result{}, err
		}

		res.Regime = flow.regime
		res.HRRKW = flow.hrr
		res.GasTemperatureC = correlation.KelvinToCelsius(gasTemp)
		res.DetectorTemperatureC = correlation.KelvinToCelsius(detector)

		// compared in °C so the reported temperature is the one tested
		if res.DetectorTemperatureC >= in.ActivationTemperature {
			at := t
			res.ActivationTime = &at
			res.Outcome = series.Activated
			break LOOP
		}
	}

	if res.ActivationTime != nil {
		res.Notes = fmt.Sprintf("Detector activates at %.0f s (%s regime, %.0f kW).", *res.ActivationTime, res.Regime, res.HRRKW)
	} else {
		res.Notes = fmt.Sprintf("Detector does not reach %.1f °C within %.0f s.", in.ActivationTemperature, g.Duration)
	}
	return res, nil
}

// Run parses fields and calculates, recording the defaults that were applied.
func Run(f input.Fields, opts ...timestep.Option) (Result, error) {
	in, defaults, err := Parse(f)
	if err != nil {
		return Result{}, err
	}
	in.Grid.Apply(opts...)
	res, err := Calculate(in)
	if err != nil {
		return Result{}, err
	}
	res.DefaultsApplied = defaults
	return res, nil
}
