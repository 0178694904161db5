// Package steel integrates the temperature of a steel member exposed to a
// nominal fire curve, bare or behind insulation (BS EN 1993-1-2 4.2.5).
package steel

import (
	"fmt"
	"math"

	"Flashover/internal/calc/correlation"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/series"
	"Flashover/internal/calc/timestep"
)

// Defaults for unprotected members.
const (
	DefaultShadowFactor   = 1.0
	DefaultEmissivity     = 0.7  // ε_m, carbon steel
	DefaultFireEmissivity = 1.0  // ε_f
	DefaultConvection     = 25.0 // α_c, W/m²K, standard curve
)

const (
	ColGasTemp   = "gas_temperature_c"
	ColSteelTemp = "steel_temperature_c"
	ColHeat      = "specific_heat_jkgk"
	ColRate      = "steel_rate_ks"
	ColStrength  = "strength_reduction"
)

// Protection is the member's exposure variant. It is sealed: only
// Unprotected and Protected implement it.
type Protection interface {
	Name() string
	// rise is the steel temperature change over one step of length dt.
	rise(sectionFactor, steel, gas, gasRise, ca, dt float64) float64
}

// Unprotected is a bare member heated by convection and radiation.
type Unprotected struct {
	ShadowFactor   float64 `json:"k_sh"`
	Emissivity     float64 `json:"emissivity"`
	FireEmissivity float64 `json:"fire_emissivity"`
	Convection     float64 `json:"alpha_c"` // W/m²K
}

func (Unprotected) Name() string { return "unprotected" }

// netFlux is h_net, W/m².
func (u Unprotected) netFlux(steel, gas float64) float64 {
	radiative := u.Emissivity * u.FireEmissivity * correlation.StefanBoltzmann * (math.Pow(gas, 4) - math.Pow(steel, 4))
	return u.Convection*(gas-steel) + radiative
}

func (u Unprotected) rise(am, steel, gas, _, ca, dt float64) float64 {
	return u.ShadowFactor * am / (ca * correlation.SteelDensity) * u.netFlux(steel, gas) * dt
}

// Protected is a member behind a fire protection board or spray.
type Protected struct {
	Conductivity float64 `json:"conductivity"`  // λ_p, W/mK
	Thickness    float64 `json:"thickness"`     // d_p, m
	SpecificHeat float64 `json:"specific_heat"` // c_p, J/kgK
	Density      float64 `json:"density"`       // ρ_p, kg/m³
}

func (Protected) Name() string { return "protected" }

// phi is the ratio of heat stored in the protection to heat stored in the
// steel.
func (p Protected) phi(ap, ca float64) float64 {
	return p.SpecificHeat * p.Density * p.Thickness * ap / (ca * correlation.SteelDensity)
}

func (p Protected) rise(ap, steel, gas, gasRise, ca, dt float64) float64 {
	phi := p.phi(ap, ca)
	d := p.Conductivity*ap/(p.Thickness*ca*correlation.SteelDensity)*(gas-steel)/(1+phi/3)*dt -
		(math.Exp(phi/10)-1)*gasRise
	// the recurrence can go negative early in the exposure while the gas is
	// still heating
	if d < 0 && gasRise > 0 {
		return 0
	}
	return d
}

type Input struct {
	Grid          timestep.Grid     `json:"grid"`
	Curve         correlation.Curve `json:"fire_curve"`
	SectionFactor float64           `json:"section_factor"` // A_m/V or A_p/V, 1/m
	Protection    Protection        `json:"-"`

	// CriticalC is the limiting steel temperature; 0 when not requested.
	CriticalC float64 `json:"critical_temperature,omitempty"`
}

type Result struct {
	Outcome         series.Outcome `json:"outcome"`
	Protection      string         `json:"protection"`
	Curve           string         `json:"fire_curve"`
	PeakSteelC      float64        `json:"peak_steel_temperature_c"`
	PeakSteelAt     float64        `json:"peak_steel_temperature_at"`
	PeakGasC        float64        `json:"peak_gas_temperature_c"`
	StrengthAtPeak  float64        `json:"strength_reduction_at_peak"`
	CriticalTime    *float64       `json:"critical_time,omitempty"`
	StepLimited     bool           `json:"step_limited"`
	LimitedSteps    int            `json:"limited_steps,omitempty"`
	DefaultsApplied []string       `json:"defaults_applied,omitempty"`
	Notes           string         `json:"notes"`
	Series          *series.Series `json:"-"`
}

func Parse(f input.Fields) (Input, []string, error) {
	r := input.NewReader(f)
	curve, err := correlation.ParseCurve(r.Text("fire_curve", ""))
	if err != nil {
		return Input{}, nil, timestep.Invalid("fire_curve", "%v", err)
	}
	in := Input{
		Grid:          r.Grid(),
		Curve:         curve,
		SectionFactor: r.Positive("section_factor"),
	}
	if c, ok := r.Optional("critical_temperature"); ok {
		in.CriticalC = c
	}

	switch method := r.Text("protection", "unprotected"); method {
	case "unprotected":
		in.Protection = Unprotected{
			ShadowFactor:   r.Fraction("k_sh", DefaultShadowFactor),
			Emissivity:     r.Fraction("emissivity", DefaultEmissivity),
			FireEmissivity: r.Fraction("fire_emissivity", DefaultFireEmissivity),
			Convection:     r.PositiveOr("alpha_c", DefaultConvection),
		}
	case "protected":
		in.Protection = Protected{
			Conductivity: r.Positive("conductivity"),
			Thickness:    r.Positive("thickness"),
			SpecificHeat: r.Positive("protection_specific_heat"),
			Density:      r.Positive("protection_density"),
		}
	default:
		return Input{}, nil, timestep.Invalid("protection", "unknown method %q", method)
	}
	if err := r.Err(); err != nil {
		return Input{}, nil, err
	}
	return in, r.Defaults(), nil
}

func positive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return timestep.Invalid(name, "must be a positive number, got %v", v)
	}
	return nil
}

func (in Input) validate() error {
	if err := in.Grid.Validate(); err != nil {
		return err
	}
	if err := positive("section_factor", in.SectionFactor); err != nil {
		return err
	}
	if in.CriticalC < 0 {
		return timestep.Invalid("critical_temperature", "must not be negative")
	}
	switch p := in.Protection.(type) {
	case Unprotected:
		for _, f := range []struct {
			name string
			v    float64
		}{
			{"k_sh", p.ShadowFactor}, {"emissivity", p.Emissivity}, {"fire_emissivity", p.FireEmissivity},
		} {
			if !(f.v > 0) || f.v > 1 {
				return timestep.Invalid(f.name, "must be in (0, 1], got %v", f.v)
			}
		}
		return positive("alpha_c", p.Convection)
	case Protected:
		for _, f := range []struct {
			name string
			v    float64
		}{
			{"conductivity", p.Conductivity}, {"thickness", p.Thickness},
			{"protection_specific_heat", p.SpecificHeat}, {"protection_density", p.Density},
		} {
			if err := positive(f.name, f.v); err != nil {
				return err
			}
		}
		return nil
	}
	return timestep.Invalid("protection", "is required")
}

// Calculate starts the steel at the gas temperature of t=0 and steps it
// forward with the specific heat of the previous step's temperature.
func Calculate(in Input) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}

	s := series.New(ColGasTemp, ColSteelTemp, ColHeat, ColRate, ColStrength)
	res := Result{
		Outcome:    series.Completed,
		Protection: in.Protection.Name(),
		Curve:      string(in.Curve),
		Series:     s,
	}

	g := in.Grid
	n := g.Len()
	gas := correlation.CelsiusToKelvin(in.Curve.Temperature(0))
	steel := gas
	for i := 0; i < n; i++ {
		t := g.At(i)
		steelC := correlation.KelvinToCelsius(steel)
		ca := correlation.SteelSpecificHeat(steelC)

		var rate float64
		if i > 0 {
			dt := t - g.At(i-1)
			next := correlation.CelsiusToKelvin(in.Curve.Temperature(t))
			d := in.Protection.rise(in.SectionFactor, steel, next, next-gas, ca, dt)
			if math.IsNaN(d) || math.IsInf(d, 0) {
				return Result{}, fmt.Errorf("steel: %w", &timestep.DomainError{
					Step:   i,
					Time:   t,
					Reason: "steel temperature rise is not a number",
				})
			}
			// forward Euler overshoots the gas when the step is long for the
			// section factor; the steel cannot get hotter than the gas
			if d > 0 && steel+d > next {
				d = next - steel
				res.LimitedSteps++
			}
			gas = next
			steel += d
			rate = d / dt
			steelC = correlation.KelvinToCelsius(steel)
		}
		gasC := correlation.KelvinToCelsius(gas)
		k := correlation.SteelStrengthReduction(steelC)

		if err := s.Append(t, gasC, steelC, ca, rate, k); err != nil {
			return Result{}, err
		}

		if i == 0 || steelC > res.PeakSteelC {
			res.PeakSteelC, res.PeakSteelAt, res.StrengthAtPeak = steelC, t, k
		}
		res.PeakGasC = math.Max(res.PeakGasC, gasC)
		if in.CriticalC > 0 && res.CriticalTime == nil && steelC >= in.CriticalC {
			at := t
			res.CriticalTime = &at
		}
	}

	res.Notes = fmt.Sprintf("Peak steel temperature %.0f °C at %.0f s (k_y = %.2f).", res.PeakSteelC, res.PeakSteelAt, res.StrengthAtPeak)
	if res.LimitedSteps > 0 {
		res.StepLimited = true
		res.Notes += fmt.Sprintf(" The time step is long for this section factor: %d steps were held at the gas temperature; a shorter step is more accurate.", res.LimitedSteps)
	}
	switch {
	case in.CriticalC <= 0:
	case res.CriticalTime != nil:
		res.Notes += fmt.Sprintf(" Reaches %.0f °C at %.0f s.", in.CriticalC, *res.CriticalTime)
	default:
		res.Notes += fmt.Sprintf(" Stays below %.0f °C for %.0f s.", in.CriticalC, g.Duration)
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
