// Package run dispatches a parsed input set to its calculator and converts
// every engine failure into a structured "could not compute" output.
package run

import (
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"Flashover/internal/calc/detector"
	"Flashover/internal/calc/flame"
	"Flashover/internal/calc/growth"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/radiation"
	"Flashover/internal/calc/reduction"
	"Flashover/internal/calc/series"
	"Flashover/internal/calc/steel"
	"Flashover/internal/calc/timestep"
	"Flashover/internal/calc/travelling"
)

// Calculator names a calculator module.
type Calculator string

const (
	Detector   Calculator = "detector"
	Travelling Calculator = "travelling"
	Steel      Calculator = "steel"
	Growth     Calculator = "growth"
	Flame      Calculator = "flame"
	Radiation  Calculator = "radiation"
	Reduction  Calculator = "reduction"
)

// Calculators lists every calculator in display order.
func Calculators() []Calculator {
	return []Calculator{Detector, Travelling, Steel, Growth, Flame, Radiation, Reduction}
}

// ParseCalculator accepts a calculator name.
func ParseCalculator(s string) (Calculator, error) {
	for _, c := range Calculators() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown calculator %q", s)
}

// Parameters is a validated input set. Each variant carries exactly the
// fields its calculator needs.
type Parameters interface {
	Calculator() Calculator
}

type (
	DetectorParams   struct{ detector.Input }
	TravellingParams struct{ travelling.Input }
	SteelParams      struct{ steel.Input }
	GrowthParams     struct{ growth.Input }
	FlameParams      struct{ flame.Input }
	RadiationParams  struct{ radiation.Input }
	ReductionParams  struct{ reduction.Input }
)

func (DetectorParams) Calculator() Calculator   { return Detector }
func (TravellingParams) Calculator() Calculator { return Travelling }
func (SteelParams) Calculator() Calculator      { return Steel }
func (GrowthParams) Calculator() Calculator     { return Growth }
func (FlameParams) Calculator() Calculator      { return Flame }
func (RadiationParams) Calculator() Calculator  { return Radiation }
func (ReductionParams) Calculator() Calculator  { return Reduction }

// Parse reads fields into the Parameters variant of c, returning the
// defaults that were applied.
func Parse(c Calculator, f input.Fields) (Parameters, []string, error) {
	switch c {
	case Detector:
		in, d, err := detector.Parse(f)
		return DetectorParams{in}, d, err
	case Travelling:
		in, d, err := travelling.Parse(f)
		return TravellingParams{in}, d, err
	case Steel:
		in, d, err := steel.Parse(f)
		return SteelParams{in}, d, err
	case Growth:
		in, d, err := growth.Parse(f)
		return GrowthParams{in}, d, err
	case Flame:
		in, err := flame.Parse(f)
		return FlameParams{in}, nil, err
	case Radiation:
		in, d, err := radiation.Parse(f)
		return RadiationParams{in}, d, err
	case Reduction:
		in, err := reduction.Parse(f)
		return ReductionParams{in}, nil, err
	}
	return nil, nil, fmt.Errorf("unknown calculator %q", c)
}

// Options apply to every run.
type Options struct {
	MaxIterations int
}

// Output is the terminal value of one run. Result is nil unless the outcome
// is a computed one.
type Output struct {
	Calculator      Calculator     `json:"calculator"`
	Outcome         series.Outcome `json:"outcome"`
	Message         string         `json:"message,omitempty"`
	Result          any            `json:"result,omitempty"`
	DefaultsApplied []string       `json:"defaults_applied,omitempty"`
	Series          *series.Series `json:"-"`
	Elapsed         time.Duration  `json:"elapsed"`
}

func failed(c Calculator, err error) Output {
	return Output{Calculator: c, Outcome: series.Classify(err), Message: series.Message(err)}
}

// Execute runs p to completion. It never returns an error: invalid
// parameters, domain violations and an exceeded iteration guard all come
// back as an Output with the matching outcome.
func Execute(p Parameters, opts Options) Output {
	if p == nil {
		log.Warn("run: nil parameters")
		return Output{Outcome: series.InvalidInput, Message: "Insufficient input: no parameters"}
	}

	start := time.Now()
	out := execute(p, timestep.WithLimit(opts.MaxIterations))
	out.Calculator = p.Calculator()
	out.Elapsed = time.Since(start)

	log.WithFields(log.Fields{
		"calculator": out.Calculator,
		"outcome":    out.Outcome,
		"steps":      out.Series.Len(),
		"elapsed":    out.Elapsed,
	}).Info("run finished")
	return out
}

func execute(p Parameters, limit timestep.Option) Output {
	var (
		result  any
		outcome series.Outcome
		s       *series.Series
		err     error
	)
	switch p := p.(type) {
	case DetectorParams:
		p.Grid.Apply(limit)
		var r detector.Result
		r, err = detector.Calculate(p.Input)
		result, outcome, s = r, r.Outcome, r.Series
	case TravellingParams:
		p.Grid.Apply(limit)
		var r travelling.Result
		r, err = travelling.Calculate(p.Input)
		result, outcome, s = r, r.Outcome, r.Series
	case SteelParams:
		p.Grid.Apply(limit)
		var r steel.Result
		r, err = steel.Calculate(p.Input)
		result, outcome, s = r, r.Outcome, r.Series
	case GrowthParams:
		p.Grid.Apply(limit)
		var r growth.Result
		r, err = growth.Calculate(p.Input)
		result, outcome, s = r, r.Outcome, r.Series
	case FlameParams:
		result, err = flame.Calculate(p.Input)
		outcome = series.Completed
	case RadiationParams:
		result, err = radiation.Calculate(p.Input)
		outcome = series.Completed
	case ReductionParams:
		result, err = reduction.Calculate(p.Input)
		outcome = series.Completed
	default:
		log.WithField("type", fmt.Sprintf("%T", p)).Warn("run: unknown parameters")
		return Output{Outcome: series.InvalidInput, Message: "Insufficient input: unknown calculator"}
	}
	if err != nil {
		return failed(p.Calculator(), err)
	}
	return Output{Outcome: outcome, Result: result, Series: s}
}

// Run parses fields for c and executes them.
func Run(c Calculator, f input.Fields, opts Options) Output {
	p, defaults, err := Parse(c, f)
	if err != nil {
		out := failed(c, err)
		log.WithFields(log.Fields{"calculator": c, "outcome": out.Outcome}).Info(err.Error())
		return out
	}
	out := Execute(p, opts)
	if out.Outcome.Computed() {
		out.DefaultsApplied = defaults
	}
	return out
}

// Summary flattens a computed result into sorted label/value pairs for
// reports and exports.
func (o Output) Summary() []Pair {
	var pairs []Pair
	add := func(k string, v float64) { pairs = append(pairs, Pair{k, v}) }
	switch r := o.Result.(type) {
	case detector.Result:
		if r.ActivationTime != nil {
			add("activation_time_s", *r.ActivationTime)
		}
		add("detector_temperature_c", r.DetectorTemperatureC)
		add("gas_temperature_c", r.GasTemperatureC)
		add("hrr_kw", r.HRRKW)
	case travelling.Result:
		add("peak_hrr_kw", r.PeakHRRKW)
		add("peak_temperature_c", r.PeakTemperatureC)
		add("peak_temperature_at_s", r.PeakTemperatureAt)
		add("t_burn_s", r.BurnTime)
		add("t_lim_s", r.SpreadLimitTime)
		add("t_decay_s", r.DecayTime)
		if r.PeakHeatFlux != nil {
			add("peak_heat_flux_kwm2", *r.PeakHeatFlux)
		}
	case steel.Result:
		add("peak_steel_temperature_c", r.PeakSteelC)
		add("peak_steel_temperature_at_s", r.PeakSteelAt)
		add("peak_gas_temperature_c", r.PeakGasC)
		add("strength_reduction_at_peak", r.StrengthAtPeak)
		if r.CriticalTime != nil {
			add("critical_time_s", *r.CriticalTime)
		}
		if r.StepLimited {
			add("limited_steps", float64(r.LimitedSteps))
		}
	case growth.Result:
		add("alpha", r.Alpha)
		add("peak_hrr_kw", r.PeakHRRKW)
		add("energy_mj", r.EnergyMJ)
		if r.TimeToPeak != nil {
			add("time_to_peak_s", *r.TimeToPeak)
		}
	case flame.Result:
		add("fire_diameter_m", r.DiameterM)
		add("flame_height_m", r.FlameHeightM)
		add("virtual_origin_m", r.VirtualOrigin)
	case radiation.Result:
		add("emitted_flux_kwm2", r.EmittedFlux)
		add("view_factor", r.ViewFactor)
		add("received_flux_kwm2", r.ReceivedFlux)
		if r.SeparationM > 0 {
			add("separation_m", r.SeparationM)
		}
	case reduction.Result:
		add("temperature_c", r.TemperatureC)
		add("reduction", r.Reduction)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Label < pairs[j].Label })
	return pairs
}

// Notes returns the engine's explanatory text, or the failure message.
func (o Output) Notes() string {
	switch r := o.Result.(type) {
	case detector.Result:
		return r.Notes
	case travelling.Result:
		return r.Notes
	case steel.Result:
		return r.Notes
	case growth.Result:
		return r.Notes
	case flame.Result:
		return r.Notes
	case radiation.Result:
		return r.Notes
	case reduction.Result:
		return r.Notes
	}
	return o.Message
}

// Pair is one labelled scalar.
type Pair struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
