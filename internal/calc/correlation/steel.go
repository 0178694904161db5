package correlation

import "math"

// SteelDensity of carbon steel, kg/m³.
const SteelDensity = 7850.0

// SteelSpecificHeat is c_a (J/kg·K) of carbon steel at temperature tc (°C),
// BS EN 1993-1-2 3.4.1.2. Below 20 °C the 20 °C value is used; above
// 1200 °C the 650 plateau continues.
func SteelSpecificHeat(tc float64) float64 {
	switch {
	case tc < 20:
		return SteelSpecificHeat(20)
	case tc < 600:
		return 425 + 7.73e-1*tc - 1.69e-3*tc*tc + 2.22e-6*tc*tc*tc
	case tc < 735:
		return 666 + 13002/(738-tc)
	case tc < 900:
		return 545 + 17820/(tc-731)
	default:
		return 650
	}
}

// strengthTable is k_y,θ of BS EN 1993-1-2 Table 3.1.
var strengthTable = []struct{ t, k float64 }{
	{20, 1}, {100, 1}, {200, 1}, {300, 1}, {400, 1},
	{500, 0.78}, {600, 0.47}, {700, 0.23}, {800, 0.11},
	{900, 0.06}, {1000, 0.04}, {1100, 0.02}, {1200, 0},
}

// SteelStrengthReduction interpolates the effective yield strength
// reduction factor k_y,θ at tc (°C).
func SteelStrengthReduction(tc float64) float64 {
	first, last := strengthTable[0], strengthTable[len(strengthTable)-1]
	if tc <= first.t {
		return first.k
	}
	if tc >= last.t {
		return last.k
	}
	for i := 1; i < len(strengthTable); i++ {
		hi := strengthTable[i]
		if tc <= hi.t {
			lo := strengthTable[i-1]
			return lo.k + (hi.k-lo.k)*(tc-lo.t)/(hi.t-lo.t)
		}
	}
	return last.k
}

// SteelTemperatureForReduction inverts SteelStrengthReduction on the
// falling part of the table: the temperature at which k_y,θ drops to k.
func SteelTemperatureForReduction(k float64) float64 {
	if k >= 1 {
		return 400
	}
	if k <= 0 {
		return 1200
	}
	for i := 1; i < len(strengthTable); i++ {
		lo, hi := strengthTable[i-1], strengthTable[i]
		if k <= lo.k && k >= hi.k && lo.k != hi.k {
			return lo.t + (lo.k-k)*(hi.t-lo.t)/(lo.k-hi.k)
		}
	}
	return math.NaN()
}
