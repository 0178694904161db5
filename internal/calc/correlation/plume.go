// Package correlation holds the stateless physical correlations the
// simulation engines evaluate once per time step: fire plume and ceiling jet
// (PD 7974-2), fire curves (BS EN 1991-1-2) and steel properties
// (BS EN 1993-1-2).
package correlation

import (
	"fmt"
	"math"
)

const (
	Gravity         = 9.81    // m/s²
	AirSpecificHeat = 1.0     // kJ/kg·K
	AirDensity      = 1.2     // kg/m³
	StefanBoltzmann = 5.67e-8 // W/m²·K⁴
	KelvinOffset    = 273.15

	// AmbientKelvin is the 20 °C reference ambient.
	AmbientKelvin = 20 + KelvinOffset
)

// Bounds of the plume/jet regime test on r/(H - z0). Both are compared
// against the same ratio; see SelectJetOrPlume.
const (
	JetTemperatureBound = 0.134
	JetVelocityBound    = 0.246
)

// Regime of the flow at the detector.
type Regime string

const (
	Plume Regime = "plume"
	Jet   Regime = "jet"
)

// DomainError is returned when a correlation is evaluated outside the range
// it was fitted on.
type DomainError struct {
	Correlation string
	Reason      string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Correlation, e.Reason)
}

// CelsiusToKelvin converts a temperature.
func CelsiusToKelvin(c float64) float64 { return c + KelvinOffset }

// KelvinToCelsius converts a temperature.
func KelvinToCelsius(k float64) float64 { return k - KelvinOffset }

// TSquaredHRR is the heat release rate of a t² fire, kW.
func TSquaredHRR(alpha, t float64) float64 {
	return alpha * t * t
}

// FireDiameter is the diameter of a circular fire of heat release rate q (kW)
// burning at hrrDensity (kW/m²).
func FireDiameter(q, hrrDensity float64) float64 {
	if q <= 0 {
		return 0
	}
	return math.Sqrt(4 * q / (math.Pi * hrrDensity))
}

// VirtualOrigin is z0 = -1.02 D + 0.083 Q^(2/5), in metres above the fire
// base. It may be negative.
func VirtualOrigin(diameter, q float64) float64 {
	return -1.02*diameter + 0.083*math.Pow(q, 2.0/5.0)
}

// FlameHeight is the Heskestad mean flame height, m.
func FlameHeight(q, diameter float64) float64 {
	return 0.235*math.Pow(q, 2.0/5.0) - 1.02*diameter
}

// plumeHeight returns z - z0 or a DomainError when the point is not above
// the virtual origin.
func plumeHeight(name string, z, z0 float64) (float64, error) {
	h := z - z0
	if !(h > 0) {
		return 0, &DomainError{Correlation: name, Reason: fmt.Sprintf("height %.3f m is not above virtual origin %.3f m", z, z0)}
	}
	return h, nil
}

func temperatureGroup(qc, h, ambient float64) float64 {
	return math.Cbrt(ambient/(Gravity*AirSpecificHeat*AirSpecificHeat*AirDensity*AirDensity)) *
		math.Pow(qc, 2.0/3.0) * math.Pow(h, -5.0/3.0)
}

func velocityGroup(qc, h, ambient float64) float64 {
	return math.Cbrt(Gravity/(AirSpecificHeat*AirDensity*ambient)) * math.Cbrt(qc) * math.Pow(h, -1.0/3.0)
}

// PlumeTemperatureRise is the centre-line excess temperature (K) of a plume
// with convective heat release qc (kW) at height z above the fire base.
func PlumeTemperatureRise(qc, z, z0, ambient float64) (float64, error) {
	h, err := plumeHeight("plume temperature", z, z0)
	if err != nil {
		return 0, err
	}
	return 9.1 * temperatureGroup(qc, h, ambient), nil
}

// PlumeVelocity is the centre-line gas velocity (m/s).
func PlumeVelocity(qc, z, z0, ambient float64) (float64, error) {
	h, err := plumeHeight("plume velocity", z, z0)
	if err != nil {
		return 0, err
	}
	return 3.4 * velocityGroup(qc, h, ambient), nil
}

// CeilingJetTemperatureRise is the excess temperature (K) at radial distance
// r from the plume axis under a ceiling at height z.
func CeilingJetTemperatureRise(qc, r, z, z0, ambient float64) (float64, error) {
	if r < 0 {
		return 0, &DomainError{Correlation: "ceiling jet temperature", Reason: "radial distance is negative"}
	}
	h, err := plumeHeight("ceiling jet temperature", z, z0)
	if err != nil {
		return 0, err
	}
	return math.Pow(0.188+0.313*r/h, -4.0/3.0) * temperatureGroup(qc, h, ambient), nil
}

// CeilingJetVelocity is the gas velocity (m/s) at radial distance r > 0.
func CeilingJetVelocity(qc, r, z, z0, ambient float64) (float64, error) {
	if !(r > 0) {
		return 0, &DomainError{Correlation: "ceiling jet velocity", Reason: "radial distance must be positive"}
	}
	h, err := plumeHeight("ceiling jet velocity", z, z0)
	if err != nil {
		return 0, err
	}
	return 1.06 * math.Pow(r/h, -0.69) * velocityGroup(qc, h, ambient), nil
}

// SelectJetOrPlume classifies the flow at radial distance r under a ceiling
// at height h. The ratio r/(h - z0) has to exceed both bounds for Jet.
func SelectJetOrPlume(r, h, z0 float64) Regime {
	ratio := r / (h - z0)
	if ratio > JetTemperatureBound && ratio > JetVelocityBound {
		return Jet
	}
	return Plume
}
