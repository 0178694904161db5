// Package input turns the field mapping sent by a calculator form into
// validated numbers. Required fields are hard preconditions; a default is
// only applied where the caller names one, and every applied default is
// reported back.
package input

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"Flashover/internal/calc/timestep"
)

// Fields maps form field names to their raw values.
type Fields map[string]string

// UnmarshalJSON accepts both strings and bare numbers as values.
func (f *Fields) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Fields, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		switch {
		case len(v) == 0 || bytes.Equal(v, []byte("null")):
			continue
		case v[0] == '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("field %s: %w", k, err)
			}
			out[k] = s
		default:
			out[k] = string(v)
		}
	}
	*f = out
	return nil
}

// Keys returns the field names in sorted order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reader reads typed values out of Fields. The first failure is kept and
// later reads become no-ops returning zero, so a parser can read every field
// and check Err once.
type Reader struct {
	fields   Fields
	defaults []string
	err      error
}

func NewReader(f Fields) *Reader {
	return &Reader{fields: f}
}

func (r *Reader) Err() error { return r.err }

// Defaults lists "name=value" for every default applied, in read order.
func (r *Reader) Defaults() []string { return r.defaults }

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) raw(name string) (string, bool) {
	v, ok := r.fields[name]
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (r *Reader) parse(name, v string) (float64, bool) {
	x, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		r.fail(timestep.Invalid(name, "%q is not a number", v))
		return 0, false
	}
	return x, true
}

// Number reads a required finite number.
func (r *Reader) Number(name string) float64 {
	if r.err != nil {
		return 0
	}
	v, ok := r.raw(name)
	if !ok {
		r.fail(timestep.Invalid(name, "is required"))
		return 0
	}
	x, _ := r.parse(name, v)
	return x
}

// Positive reads a required number > 0.
func (r *Reader) Positive(name string) float64 {
	x := r.Number(name)
	if r.err == nil && x <= 0 {
		r.fail(timestep.Invalid(name, "must be positive, got %v", x))
		return 0
	}
	return x
}

// NonNegative reads a required number >= 0.
func (r *Reader) NonNegative(name string) float64 {
	x := r.Number(name)
	if r.err == nil && x < 0 {
		r.fail(timestep.Invalid(name, "must not be negative, got %v", x))
		return 0
	}
	return x
}

// NumberOr reads an optional number, applying def when the field is absent
// or blank. A present but malformed value is still an error.
func (r *Reader) NumberOr(name string, def float64) float64 {
	if r.err != nil {
		return 0
	}
	v, ok := r.raw(name)
	if !ok {
		r.defaults = append(r.defaults, name+"="+strconv.FormatFloat(def, 'g', -1, 64))
		return def
	}
	x, _ := r.parse(name, v)
	return x
}

// PositiveOr is NumberOr with the value required to be > 0.
func (r *Reader) PositiveOr(name string, def float64) float64 {
	x := r.NumberOr(name, def)
	if r.err == nil && x <= 0 {
		r.fail(timestep.Invalid(name, "must be positive, got %v", x))
		return 0
	}
	return x
}

// Optional reads a number that has no default; ok is false when the field
// is absent or blank.
func (r *Reader) Optional(name string) (x float64, ok bool) {
	if r.err != nil {
		return 0, false
	}
	v, present := r.raw(name)
	if !present {
		return 0, false
	}
	return r.parse(name, v)
}

// Fraction reads an optional value in (0, 1].
func (r *Reader) Fraction(name string, def float64) float64 {
	x := r.NumberOr(name, def)
	if r.err == nil && (x <= 0 || x > 1) {
		r.fail(timestep.Invalid(name, "must be in (0, 1], got %v", x))
		return 0
	}
	return x
}

// Text reads an optional tag, def when absent.
func (r *Reader) Text(name, def string) string {
	if v, ok := r.raw(name); ok {
		return v
	}
	return def
}

// Grid reads the shared duration and time_step fields.
func (r *Reader) Grid() timestep.Grid {
	return timestep.Grid{
		Duration: r.Positive("duration"),
		Step:     r.Positive("time_step"),
	}
}
