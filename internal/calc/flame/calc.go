package flame

import (
	"fmt"

	"Flashover/internal/calc/correlation"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/timestep"
)

type Method string

const (
	MethodHeskestad Method = "heskestad"
	MethodThomas    Method = "thomas"
)

type Input struct {
	Method     Method  `json:"method"`
	HRRKW      float64 `json:"hrr"`         // kW
	HRRDensity float64 `json:"hrr_density"` // kW/m²
	BurnRate   float64 `json:"burn_rate"`   // kg/m²s, Thomas only
}

type Result struct {
	Method        Method  `json:"method"`
	DiameterM     float64 `json:"fire_diameter_m"`
	FlameHeightM  float64 `json:"flame_height_m"`
	VirtualOrigin float64 `json:"virtual_origin_m"`
	Notes         string  `json:"notes"`
}

func Parse(f input.Fields) (Input, error) {
	r := input.NewReader(f)
	in := Input{
		Method:     Method(r.Text("method", string(MethodHeskestad))),
		HRRKW:      r.Positive("hrr"),
		HRRDensity: r.Positive("hrr_density"),
	}
	switch in.Method {
	case MethodHeskestad:
	case MethodThomas:
		in.BurnRate = r.Positive("burn_rate")
	default:
		return Input{}, timestep.Invalid("method", "unknown method %q", in.Method)
	}
	return in, r.Err()
}

func Calculate(in Input) (Result, error) {
	if in.HRRKW <= 0 || in.HRRDensity <= 0 {
		return Result{}, timestep.Invalid("hrr", "heat release rate and its density must be positive")
	}

	// Circular fire of area Q/q''
	d := correlation.FireDiameter(in.HRRKW, in.HRRDensity)
	res := Result{
		Method:        in.Method,
		DiameterM:     d,
		VirtualOrigin: correlation.VirtualOrigin(d, in.HRRKW),
	}

	switch in.Method {
	case MethodThomas:
		if in.BurnRate <= 0 {
			return Result{}, timestep.Invalid("burn_rate", "must be positive")
		}
		res.FlameHeightM = correlation.ThomasFlameHeight(in.BurnRate, d)
		res.Notes = "Thomas mean flame height for a large-area fire."
	default:
		res.FlameHeightM = correlation.FlameHeight(in.HRRKW, d)
		res.Notes = "Heskestad mean flame height."
	}
	if res.FlameHeightM <= 0 {
		res.FlameHeightM = 0
		res.Notes += fmt.Sprintf(" Fire of %.0f kW over %.2f m does not form a coherent flame.", in.HRRKW, d)
	}
	if err := timestep.Finite(
		timestep.Quantity{Name: "fire_diameter_m", Value: res.DiameterM},
		timestep.Quantity{Name: "flame_height_m", Value: res.FlameHeightM},
		timestep.Quantity{Name: "virtual_origin_m", Value: res.VirtualOrigin},
	); err != nil {
		return Result{}, err
	}
	return res, nil
}

func Run(f input.Fields) (Result, error) {
	in, err := Parse(f)
	if err != nil {
		return Result{}, err
	}
	return Calculate(in)
}
