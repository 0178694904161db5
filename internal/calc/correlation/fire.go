package correlation

import (
	"fmt"
	"math"
)

// Curve selects a nominal fire curve from BS EN 1991-1-2 3.2.
type Curve string

const (
	Standard    Curve = "standard"
	Hydrocarbon Curve = "hydrocarbon"
	External    Curve = "external"
)

// ParseCurve accepts the curve tags used by the input forms. Empty means
// the standard curve.
func ParseCurve(s string) (Curve, error) {
	switch Curve(s) {
	case "", Standard:
		return Standard, nil
	case Hydrocarbon, External:
		return Curve(s), nil
	}
	return "", fmt.Errorf("unknown fire curve %q", s)
}

// Temperature returns the curve's gas temperature (°C) at t seconds.
func (c Curve) Temperature(t float64) float64 {
	switch c {
	case Hydrocarbon:
		return HydrocarbonFireTemperature(t)
	case External:
		return ExternalFireTemperature(t)
	}
	return StandardFireTemperature(t)
}

// StandardFireTemperature is the ISO 834 curve 20 + 345 log10(8 t + 1) with
// t in minutes; the argument is in seconds. It returns exactly 20 at t = 0.
func StandardFireTemperature(t float64) float64 {
	return 20 + 345*math.Log10(8*t/60+1)
}

// HydrocarbonFireTemperature, °C at t seconds.
func HydrocarbonFireTemperature(t float64) float64 {
	m := t / 60
	return 20 + 1080*(1-0.325*math.Exp(-0.167*m)-0.675*math.Exp(-2.5*m))
}

// ExternalFireTemperature, °C at t seconds.
func ExternalFireTemperature(t float64) float64 {
	m := t / 60
	return 20 + 660*(1-0.687*math.Exp(-0.32*m)-0.313*math.Exp(-3.8*m))
}

// RadiativeFlux is ε σ (hot⁴ - cold⁴) in kW/m², temperatures in K.
func RadiativeFlux(emissivity, hot, cold float64) float64 {
	return emissivity * StefanBoltzmann * (math.Pow(hot, 4) - math.Pow(cold, 4)) / 1000
}

// TravellingGasTemperatureRise is Alpert's ceiling gas excess temperature
// (K) at distance r from a fire of q kW under a ceiling at height h. Near
// field (r/h <= 0.18) is independent of r.
func TravellingGasTemperatureRise(q, r, h float64) float64 {
	if q <= 0 {
		return 0
	}
	if r/h <= 0.18 {
		return 16.9 * math.Pow(q, 2.0/3.0) / math.Pow(h, 5.0/3.0)
	}
	return 5.38 * math.Pow(q/r, 2.0/3.0) / h
}
