package radiation

import (
	"fmt"

	"Flashover/internal/calc/correlation"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/timestep"
)

type Method string

const (
	MethodFlux       Method = "flux"
	MethodSeparation Method = "separation"
)

const (
	DefaultEmissivity   = 1.0
	DefaultAmbientC     = 20.0
	DefaultCriticalFlux = 12.6 // kW/m², piloted ignition of timber
)

type Input struct {
	Method       Method  `json:"method"`
	EmitterC     float64 `json:"emitter_temperature"` // °C
	Emissivity   float64 `json:"emissivity"`
	WidthM       float64 `json:"width"`
	HeightM      float64 `json:"height"`
	DistanceM    float64 `json:"distance"`
	AmbientC     float64 `json:"ambient"`
	CriticalFlux float64 `json:"critical_flux"` // kW/m²
}

type Result struct {
	Method          Method   `json:"method"`
	EmittedFlux     float64  `json:"emitted_flux_kwm2"`
	ViewFactor      float64  `json:"view_factor"`
	ReceivedFlux    float64  `json:"received_flux_kwm2"`
	SeparationM     float64  `json:"separation_m,omitempty"`
	OK              bool     `json:"ok"`
	DefaultsApplied []string `json:"defaults_applied,omitempty"`
	Notes           string   `json:"notes"`
}

func Parse(f input.Fields) (Input, []string, error) {
	r := input.NewReader(f)
	in := Input{
		Method:       Method(r.Text("method", string(MethodFlux))),
		EmitterC:     r.Number("emitter_temperature"),
		Emissivity:   r.Fraction("emissivity", DefaultEmissivity),
		WidthM:       r.Positive("width"),
		HeightM:      r.Positive("height"),
		AmbientC:     r.NumberOr("ambient", DefaultAmbientC),
		CriticalFlux: r.PositiveOr("critical_flux", DefaultCriticalFlux),
	}
	switch in.Method {
	case MethodFlux:
		in.DistanceM = r.Positive("distance")
	case MethodSeparation:
	default:
		return Input{}, nil, timestep.Invalid("method", "unknown method %q", in.Method)
	}
	if err := r.Err(); err != nil {
		return Input{}, nil, err
	}
	return in, r.Defaults(), nil
}

func (in Input) received(s float64) (float64, float64) {
	f := correlation.ViewFactorParallel(in.WidthM, in.HeightM, s)
	return f, in.emitted() * f
}

func (in Input) emitted() float64 {
	return correlation.RadiativeFlux(in.Emissivity, correlation.CelsiusToKelvin(in.EmitterC), correlation.CelsiusToKelvin(in.AmbientC))
}

// separation finds the distance at which the received flux falls to the
// critical flux. The view factor decreases monotonically with distance.
func (in Input) separation() float64 {
	if in.emitted() <= in.CriticalFlux {
		return 0
	}
	lo, hi := 0.0, 1.0
	for _, q := in.received(hi); q > in.CriticalFlux; _, q = in.received(hi) {
		lo, hi = hi, hi*2
	}
	for i := 0; i < 60 && hi-lo > 1e-6; i++ {
		mid := (lo + hi) / 2
		if _, q := in.received(mid); q > in.CriticalFlux {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi
}

func Calculate(in Input) (Result, error) {
	if in.WidthM <= 0 || in.HeightM <= 0 {
		return Result{}, timestep.Invalid("width", "emitter must have a positive area")
	}
	if in.EmitterC <= in.AmbientC {
		return Result{}, timestep.Invalid("emitter_temperature", "must exceed ambient %v °C", in.AmbientC)
	}

	res := Result{Method: in.Method, EmittedFlux: in.emitted()}
	if err := timestep.Finite(timestep.Quantity{Name: "emitted_flux_kwm2", Value: res.EmittedFlux}); err != nil {
		return Result{}, err
	}
	switch in.Method {
	case MethodSeparation:
		res.SeparationM = in.separation()
		res.ViewFactor, res.ReceivedFlux = in.received(res.SeparationM)
		res.OK = true
		res.Notes = fmt.Sprintf("Received flux falls to %.1f kW/m² at %.2f m.", in.CriticalFlux, res.SeparationM)
	default:
		if in.DistanceM <= 0 {
			return Result{}, timestep.Invalid("distance", "must be positive")
		}
		res.ViewFactor, res.ReceivedFlux = in.received(in.DistanceM)
		res.OK = res.ReceivedFlux < in.CriticalFlux
		res.Notes = fmt.Sprintf("Stefan-Boltzmann flux from a %.1f x %.1f m emitter at %.2f m.", in.WidthM, in.HeightM, in.DistanceM)
	}
	if err := timestep.Finite(
		timestep.Quantity{Name: "view_factor", Value: res.ViewFactor},
		timestep.Quantity{Name: "received_flux_kwm2", Value: res.ReceivedFlux},
		timestep.Quantity{Name: "separation_m", Value: res.SeparationM},
	); err != nil {
		return Result{}, err
	}
	return res, nil
}

func Run(f input.Fields) (Result, error) {
	in, defaults, err := Parse(f)
	if err != nil {
		return Result{}, err
	}
	res, err := Calculate(in)
	if err != nil {
		return Result{}, err
	}
	res.DefaultsApplied = defaults
	return res, nil
}
