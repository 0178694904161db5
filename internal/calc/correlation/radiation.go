package correlation

import "math"

// GrowthRate is α (kW/s²) of a standard t² fire class, PD 7974-1.
func GrowthRate(class string) (float64, bool) {
	switch class {
	case "slow":
		return 0.00293, true
	case "medium":
		return 0.0117, true
	case "fast":
		return 0.0469, true
	case "ultra-fast":
		return 0.1876, true
	}
	return 0, false
}

// cornerViewFactor is the configuration factor from a receiver facing one
// corner of a parallel w x h rectangle at distance s.
func cornerViewFactor(w, h, s float64) float64 {
	x, y := w/s, h/s
	a, b := math.Sqrt(1+x*x), math.Sqrt(1+y*y)
	return (x/a*math.Atan(y/a) + y/b*math.Atan(x/b)) / (2 * math.Pi)
}

// ViewFactorParallel is the configuration factor from a receiver on the
// centre line of a parallel emitting rectangle w x h (m) at distance s (m).
// It tends to 1 as s tends to 0.
func ViewFactorParallel(w, h, s float64) float64 {
	if w <= 0 || h <= 0 {
		return 0
	}
	if s <= 0 {
		return 1
	}
	return math.Min(4*cornerViewFactor(w/2, h/2, s), 1)
}

// ThomasFlameHeight is the mean flame height (m) of a large-area fire of
// diameter d burning mass at burnRate (kg/m²s).
func ThomasFlameHeight(burnRate, d float64) float64 {
	if d <= 0 {
		return 0
	}
	return 42 * d * math.Pow(burnRate/(AirDensity*math.Sqrt(Gravity*d)), 0.61)
}

// CriticalSteelTemperature is θ_a,cr (°C) of BS EN 1993-1-2 4.2.4 for a
// degree of utilisation mu (0.013 <= mu <= 1).
func CriticalSteelTemperature(mu float64) float64 {
	return 39.19*math.Log(1/(0.9674*math.Pow(mu, 3.833))-1) + 482
}
