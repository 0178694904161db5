// Package timestep holds the fixed-step time grid shared by the simulation
// engines and the error kinds they report.
//
// Integration is explicit (forward Euler) with a user-chosen step. There is no
// adaptive step control, so truncation error and run time both scale with
// Step; callers choose the trade-off.
package timestep

import (
	"math"
)

// DefaultMaxIterations bounds duration/step when no limit is configured.
const DefaultMaxIterations = 1000000

// Grid is the time discretisation of a run, in seconds.
type Grid struct {
	Duration float64 `json:"duration"`
	Step     float64 `json:"time_step"`

	// Limit caps the number of grid points; 0 means DefaultMaxIterations.
	Limit int `json:"-"`
}

// Validate checks both values are finite and positive and that the number of
// grid points stays under the limit.
func (g Grid) Validate() error {
	if !finite(g.Duration) || g.Duration <= 0 {
		return Invalid("duration", "must be a positive number, got %v", g.Duration)
	}
	if !finite(g.Step) || g.Step <= 0 {
		return Invalid("time_step", "must be a positive number, got %v", g.Step)
	}
	limit := g.Limit
	if limit <= 0 {
		limit = DefaultMaxIterations
	}
	if n := math.Ceil(g.Duration/g.Step) + 1; n > float64(limit) {
		return ErrTooFine
	}
	return nil
}

// Len is the number of grid points, t=0 and t=Duration included.
func (g Grid) Len() int {
	whole := g.whole()
	if g.snapsToEnd(whole) {
		return whole + 1
	}
	return whole + 2
}

// At returns the i-th grid time. The last point is exactly Duration, which
// makes the final step a partial one when Duration is not a multiple of Step.
func (g Grid) At(i int) float64 {
	if i >= g.Len()-1 {
		return g.Duration
	}
	return float64(i) * g.Step
}

// Times materialises the whole grid.
func (g Grid) Times() []float64 {
	n := g.Len()
	ts := make([]float64, n)
	for i := range ts {
		ts[i] = g.At(i)
	}
	return ts
}

// RoundToStep rounds v to the nearest multiple of Step.
func (g Grid) RoundToStep(v float64) float64 {
	return math.Round(v/g.Step) * g.Step
}

func (g Grid) whole() int {
	return int(math.Floor(g.Duration/g.Step + 1e-9))
}

// snapsToEnd reports whether whole*Step already lands on Duration within
// floating point noise.
func (g Grid) snapsToEnd(whole int) bool {
	return math.Abs(float64(whole)*g.Step-g.Duration) <= 1e-9*g.Duration
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Option adjusts a parsed grid before a run.
type Option func(*Grid)

// WithLimit sets the iteration guard; n <= 0 keeps the default.
func WithLimit(n int) Option {
	return func(g *Grid) {
		if n > 0 {
			g.Limit = n
		}
	}
}

// Apply runs opts against g.
func (g *Grid) Apply(opts ...Option) {
	for _, o := range opts {
		o(g)
	}
}
