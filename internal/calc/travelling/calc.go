// Package travelling models a fire spreading at constant speed along a floor
// plate and the ceiling gas temperature (or incident heat flux) it produces
// at one structural element. The fire phases follow Stern-Gottfried and
// Rackauskaite; an element under the burning region sees the near-field
// temperature, elsewhere Alpert's ceiling jet from the fire median capped at
// the near-field temperature.
package travelling

import (
	"fmt"
	"math"

	"Flashover/internal/calc/correlation"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/series"
	"Flashover/internal/calc/timestep"
)

const (
	DefaultNearFieldC = 1050.0
	DefaultAmbientC   = 20.0
	DefaultEmissivity = 1.0

	// MinBurnTime is the lower bound on the local burning time, s.
	MinBurnTime = 900.0

	// MinDistance keeps the element off the fire median.
	MinDistance = 0.001
)

const (
	ColHRR      = "hrr_kw"
	ColFront    = "fire_front_m"
	ColTail     = "fire_tail_m"
	ColDistance = "distance_m"
	ColGasTemp  = "gas_temperature_c"
	ColHeatFlux = "heat_flux_kwm2"
)

// Mode selects what the run reports at the element.
type Mode interface {
	Name() string
}

// TemperatureMode reports the ceiling gas temperature.
type TemperatureMode struct{}

func (TemperatureMode) Name() string { return "temperature" }

// HeatFluxMode also reports the radiant flux incident on the element.
type HeatFluxMode struct {
	Emissivity float64 `json:"emissivity"`
}

func (HeatFluxMode) Name() string { return "heat_flux" }

type Input struct {
	Grid            timestep.Grid `json:"grid"`
	FireLoadDensity float64       `json:"fire_load_density"` // MJ/m²
	HRRDensity      float64       `json:"hrr_density"`       // kW/m²
	SpreadRate      float64       `json:"spread_rate"`       // m/s
	Length          float64       `json:"length"`            // m, along the spread direction
	Width           float64       `json:"width"`             // m
	Height          float64       `json:"height"`            // m, floor to ceiling
	ElementPosition float64       `json:"element_position"`  // m from the ignition end
	NearFieldC      float64       `json:"nft_limit"`         // °C
	AmbientC        float64       `json:"ambient"`           // °C
	Mode            Mode          `json:"-"`
}

type Result struct {
	Outcome           series.Outcome `json:"outcome"`
	Mode              string         `json:"mode"`
	BurnTime          float64        `json:"t_burn"`
	SpreadLimitTime   float64        `json:"t_lim"`
	DecayTime         float64        `json:"t_decay"`
	PeakHRRKW         float64        `json:"peak_hrr_kw"`
	PeakTemperatureC  float64        `json:"peak_temperature_c"`
	PeakTemperatureAt float64        `json:"peak_temperature_at"`
	PeakHeatFlux      *float64       `json:"peak_heat_flux_kwm2,omitempty"`
	PeakHeatFluxAt    *float64       `json:"peak_heat_flux_at,omitempty"`
	DefaultsApplied   []string       `json:"defaults_applied,omitempty"`
	Notes             string         `json:"notes"`
	Series            *series.Series `json:"-"`
}

func Parse(f input.Fields) (Input, []string, error) {
	r := input.NewReader(f)
	in := Input{
		Grid:            r.Grid(),
		FireLoadDensity: r.Positive("fire_load_density"),
		HRRDensity:      r.Positive("hrr_density"),
		SpreadRate:      r.Positive("spread_rate"),
		Length:          r.Positive("length"),
		Width:           r.Positive("width"),
		Height:          r.Positive("height"),
		ElementPosition: r.NonNegative("element_position"),
		NearFieldC:      r.NumberOr("nft_limit", DefaultNearFieldC),
		AmbientC:        r.NumberOr("ambient", DefaultAmbientC),
	}
	switch mode := r.Text("mode", "temperature"); mode {
	case "temperature":
		in.Mode = TemperatureMode{}
	case "heat_flux":
		in.Mode = HeatFluxMode{Emissivity: r.Fraction("emissivity", DefaultEmissivity)}
	default:
		return Input{}, nil, timestep.Invalid("mode", "unknown mode %q", mode)
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
		{"fire_load_density", in.FireLoadDensity}, {"hrr_density", in.HRRDensity},
		{"spread_rate", in.SpreadRate}, {"length", in.Length},
		{"width", in.Width}, {"height", in.Height},
	} {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return timestep.Invalid(f.name, "must be a positive number, got %v", f.v)
		}
	}
	if in.ElementPosition < 0 || in.ElementPosition > in.Length {
		return timestep.Invalid("element_position", "must lie on the floor plate [0, %v]", in.Length)
	}
	if in.NearFieldC <= in.AmbientC {
		return timestep.Invalid("nft_limit", "must exceed ambient %v °C", in.AmbientC)
	}
	switch m := in.Mode.(type) {
	case TemperatureMode:
	case HeatFluxMode:
		if m.Emissivity <= 0 || m.Emissivity > 1 {
			return timestep.Invalid("emissivity", "must be in (0, 1], got %v", m.Emissivity)
		}
	default:
		return timestep.Invalid("mode", "is required")
	}
	return nil
}

// phases are the fire-phase boundaries, fixed for the whole run.
type phases struct {
	burn, lim, decay float64
	peak             float64 // kW

	// wholeFloor is set when the front reaches the far end before the
	// first area burns out.
	wholeFloor bool
}

func (in Input) phases() phases {
	burn := math.Max(in.FireLoadDensity*1000/in.HRRDensity, MinBurnTime)
	crossing := in.Length / in.SpreadRate

	p := phases{
		burn:  burn,
		decay: in.Grid.RoundToStep(math.Max(burn, crossing)),
		lim:   in.Grid.RoundToStep(math.Min(burn, crossing)),

		wholeFloor: crossing <= burn,
	}
	if p.decay == p.lim {
		p.lim -= in.Grid.Step
	}
	p.peak = math.Min(in.HRRDensity*in.Width*in.SpreadRate*burn, in.HRRDensity*in.Width*in.Length)
	return p
}

// hrr is the total heat release rate at t, kW.
func (in Input) hrr(p phases, t float64) float64 {
	switch {
	case t < p.lim:
		return in.HRRDensity * in.Width * in.SpreadRate * t
	case t <= p.decay:
		return p.peak
	}
	return math.Max(p.peak-(t-p.decay)*in.Width*in.SpreadRate*in.HRRDensity, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// region is the burning stretch of floor at t. Every area burns for t_burn
// after the front reaches it, so the tail trails the front by s·t_burn.
func (in Input) region(p phases, t float64) (front, tail float64) {
	front = clamp(in.SpreadRate*t, 0, in.Length)
	if p.wholeFloor && t >= p.lim {
		front = in.Length
	}
	tail = clamp(in.SpreadRate*(t-p.burn), 0, in.Length)
	return front, tail
}

// Calculate evaluates the fire at every grid time. Nothing is carried
// between steps except the running peaks.
func Calculate(in Input) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}

	p := in.phases()
	ambient := correlation.CelsiusToKelvin(in.AmbientC)
	limit := correlation.CelsiusToKelvin(in.NearFieldC)
	flux, withFlux := in.Mode.(HeatFluxMode)

	cols := []string{ColHRR, ColFront, ColTail, ColDistance, ColGasTemp}
	if withFlux {
		cols = append(cols, ColHeatFlux)
	}
	s := series.New(cols...)
	res := Result{
		Outcome:         series.Completed,
		Mode:            in.Mode.Name(),
		BurnTime:        p.burn,
		SpreadLimitTime: p.lim,
		DecayTime:       p.decay,
		Series:          s,
	}

	g := in.Grid
	n := g.Len()
	for i := 0; i < n; i++ {
		t := g.At(i)
		q := in.hrr(p, t)
		front, tail := in.region(p, t)
		r := math.Max(math.Abs(in.ElementPosition-(front+tail)/2), MinDistance)

		gas := math.Min(ambient+correlation.TravellingGasTemperatureRise(q, r, in.Height), limit)
		if q > 0 && front > tail && in.ElementPosition >= tail && in.ElementPosition <= front {
			gas = limit
		}
		gasC := correlation.KelvinToCelsius(gas)

		values := []float64{q, front, tail, r, gasC}
		if withFlux {
			f := correlation.RadiativeFlux(flux.Emissivity, gas, ambient)
			values = append(values, f)
			if res.PeakHeatFlux == nil || f > *res.PeakHeatFlux {
				at := t
				res.PeakHeatFlux, res.PeakHeatFluxAt = &f, &at
			}
		}
		if err := s.Append(t, values...); err != nil {
			return Result{}, err
		}

		if i == 0 || gasC > res.PeakTemperatureC {
			res.PeakTemperatureC, res.PeakTemperatureAt = gasC, t
		}
		res.PeakHRRKW = math.Max(res.PeakHRRKW, q)
	}

	res.Notes = fmt.Sprintf("Peak gas temperature %.0f °C at %.0f s; fire reaches full size at %.0f s and decays from %.0f s.",
		res.PeakTemperatureC, res.PeakTemperatureAt, p.lim, p.decay)
	if res.PeakHeatFlux != nil {
		res.Notes += fmt.Sprintf(" Peak incident heat flux %.1f kW/m².", *res.PeakHeatFlux)
	}
	return res, nil
}

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
