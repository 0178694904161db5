package reduction

import (
	"fmt"

	"Flashover/internal/calc/correlation"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/timestep"
)

type Method string

const (
	MethodStrength    Method = "strength"    // temperature -> k_y,θ
	MethodTemperature Method = "temperature" // k_y,θ -> temperature
	MethodCritical    Method = "critical"    // utilisation -> θ_a,cr
)

type Input struct {
	Method      Method  `json:"method"`
	Temperature float64 `json:"temperature"` // °C
	Reduction   float64 `json:"reduction"`
	Utilisation float64 `json:"utilisation"`
}

type Result struct {
	Method       Method  `json:"method"`
	TemperatureC float64 `json:"temperature_c"`
	Reduction    float64 `json:"reduction"`
	Notes        string  `json:"notes"`
}

func Parse(f input.Fields) (Input, error) {
	r := input.NewReader(f)
	in := Input{Method: Method(r.Text("method", string(MethodStrength)))}
	switch in.Method {
	case MethodStrength:
		in.Temperature = r.Number("temperature")
	case MethodTemperature:
		in.Reduction = r.Fraction("reduction", 1)
	case MethodCritical:
		in.Utilisation = r.Fraction("utilisation", 1)
	default:
		return Input{}, timestep.Invalid("method", "unknown method %q", in.Method)
	}
	return in, r.Err()
}

func Calculate(in Input) (Result, error) {
	res := Result{Method: in.Method}
	switch in.Method {
	case MethodTemperature:
		if in.Reduction <= 0 || in.Reduction > 1 {
			return Result{}, timestep.Invalid("reduction", "must be in (0, 1]")
		}
		res.Reduction = in.Reduction
		res.TemperatureC = correlation.SteelTemperatureForReduction(in.Reduction)
		res.Notes = "Lowest temperature at which k_y,θ falls to the given factor (Table 3.1)."
	case MethodCritical:
		// below 0.013 the expression leaves its range
		if in.Utilisation < 0.013 || in.Utilisation > 1 {
			return Result{}, timestep.Invalid("utilisation", "must be in [0.013, 1]")
		}
		res.TemperatureC = correlation.CriticalSteelTemperature(in.Utilisation)
		res.Reduction = correlation.SteelStrengthReduction(res.TemperatureC)
		res.Notes = fmt.Sprintf("Critical temperature for μ0 = %.2f (4.2.4).", in.Utilisation)
	default:
		res.TemperatureC = in.Temperature
		res.Reduction = correlation.SteelStrengthReduction(in.Temperature)
		res.Notes = "Effective yield strength reduction, linear between Table 3.1 rows."
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
