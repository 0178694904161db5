// Package growth produces the heat release curve of a t² design fire with
// an optional steady-state cap.
package growth

import (
	"fmt"
	"math"

	"Flashover/internal/calc/correlation"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/series"
	"Flashover/internal/calc/timestep"
)

const (
	ColHRR      = "hrr_kw"
	ColEnergy   = "energy_mj"
	ColDiameter = "fire_diameter_m"
)

type Input struct {
	Grid       timestep.Grid `json:"grid"`
	Class      string        `json:"class,omitempty"` // slow, medium, fast, ultra-fast; empty for a custom α
	Alpha      float64       `json:"alpha"`           // kW/s²
	MaxHRR     float64       `json:"max_hrr"`         // kW, 0 for unbounded growth
	HRRDensity float64       `json:"hrr_density"`     // kW/m², 0 skips the diameter column
}

type Result struct {
	Outcome         series.Outcome `json:"outcome"`
	Alpha           float64        `json:"alpha"`
	PeakHRRKW       float64        `json:"peak_hrr_kw"`
	TimeToPeak      *float64       `json:"time_to_peak,omitempty"`
	EnergyMJ        float64        `json:"energy_mj"`
	DefaultsApplied []string       `json:"defaults_applied,omitempty"`
	Notes           string         `json:"notes"`
	Series          *series.Series `json:"-"`
}

func Parse(f input.Fields) (Input, []string, error) {
	r := input.NewReader(f)
	in := Input{Grid: r.Grid()}
	if class := r.Text("class", ""); class != "" && class != "custom" {
		a, ok := correlation.GrowthRate(class)
		if !ok {
			return Input{}, nil, timestep.Invalid("class", "unknown growth class %q", class)
		}
		in.Class, in.Alpha = class, a
	} else {
		in.Alpha = r.Positive("alpha")
	}
	if q, ok := r.Optional("max_hrr"); ok {
		in.MaxHRR = q
	}
	if d, ok := r.Optional("hrr_density"); ok {
		in.HRRDensity = d
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
	if !(in.Alpha > 0) || math.IsInf(in.Alpha, 0) {
		return timestep.Invalid("alpha", "must be a positive number, got %v", in.Alpha)
	}
	if in.MaxHRR < 0 {
		return timestep.Invalid("max_hrr", "must not be negative")
	}
	if in.HRRDensity < 0 {
		return timestep.Invalid("hrr_density", "must not be negative")
	}
	return nil
}

func (in Input) hrr(t float64) float64 {
	q := correlation.TSquaredHRR(in.Alpha, t)
	if in.MaxHRR > 0 {
		return math.Min(q, in.MaxHRR)
	}
	return q
}

// Calculate tabulates Q(t) and integrates the released energy with the
// trapezoidal rule.
func Calculate(in Input) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}

	cols := []string{ColHRR, ColEnergy}
	if in.HRRDensity > 0 {
		cols = append(cols, ColDiameter)
	}
	s := series.New(cols...)
	res := Result{Outcome: series.Completed, Alpha: in.Alpha, Series: s}

	g := in.Grid
	var prev, energy float64
	for i := 0; i < g.Len(); i++ {
		t := g.At(i)
		q := in.hrr(t)
		if i > 0 {
			energy += (prev + q) / 2 * (t - g.At(i-1)) / 1000
		}
		values := []float64{q, energy}
		if in.HRRDensity > 0 {
			values = append(values, correlation.FireDiameter(q, in.HRRDensity))
		}
		if err := s.Append(t, values...); err != nil {
			return Result{}, err
		}
		prev = q
	}
	res.PeakHRRKW = prev
	res.EnergyMJ = energy

	if in.MaxHRR > 0 {
		if tp := math.Sqrt(in.MaxHRR / in.Alpha); tp <= g.Duration {
			res.TimeToPeak = &tp
			res.PeakHRRKW = in.MaxHRR
		}
	}

	res.Notes = fmt.Sprintf("α = %g kW/s²: %.0f kW after %.0f s, %.0f MJ released.", in.Alpha, prev, g.Duration, energy)
	if res.TimeToPeak != nil {
		res.Notes += fmt.Sprintf(" Steady state of %.0f kW from %.0f s.", in.MaxHRR, *res.TimeToPeak)
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
