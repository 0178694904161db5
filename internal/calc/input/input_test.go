package input

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"Flashover/internal/calc/timestep"
)

func TestFieldsAcceptStringsAndNumbers(t *testing.T) {
	var f Fields
	require.NoError(t, json.Unmarshal([]byte(`{"a": "1.5", "b": 2, "c": null, "d": " 3 "}`), &f))
	require.Equal(t, Fields{"a": "1.5", "b": "2", "d": " 3 "}, f)
	require.Equal(t, []string{"a", "b", "d"}, f.Keys())
}

func TestReaderRequiredAndPositive(t *testing.T) {
	r := NewReader(Fields{"h": "3", "r": " 2 ", "zero": "0"})
	require.Equal(t, 3.0, r.Positive("h"))
	require.Equal(t, 2.0, r.Number("r"))
	require.NoError(t, r.Err())

	_ = r.Positive("zero")
	var ie *timestep.InputError
	require.True(t, errors.As(r.Err(), &ie))
	require.Equal(t, "zero", ie.Field)

	// first error sticks
	_ = r.Positive("missing")
	require.True(t, errors.As(r.Err(), &ie))
	require.Equal(t, "zero", ie.Field)
}

func TestReaderRejectsNonNumeric(t *testing.T) {
	for _, v := range []string{"abc", "12abc", "NaN", "Inf", "1e999"} {
		r := NewReader(Fields{"x": v})
		_ = r.Number("x")
		require.ErrorIs(t, r.Err(), timestep.ErrInvalidInput, v)
	}
}

func TestReaderMissingRequired(t *testing.T) {
	r := NewReader(Fields{"x": "  "})
	_ = r.Positive("x")
	require.ErrorIs(t, r.Err(), timestep.ErrInvalidInput)
}

func TestReaderDefaultsAreReported(t *testing.T) {
	r := NewReader(Fields{"alpha_c": "35"})
	require.Equal(t, 0.7, r.Fraction("emissivity", 0.7))
	require.Equal(t, 35.0, r.PositiveOr("alpha_c", 25))
	require.Equal(t, 20.0, r.NumberOr("ambient", 20))
	require.NoError(t, r.Err())
	require.Equal(t, []string{"emissivity=0.7", "ambient=20"}, r.Defaults())
}

func TestReaderDefaultDoesNotHideBadValue(t *testing.T) {
	r := NewReader(Fields{"emissivity": "high"})
	_ = r.Fraction("emissivity", 0.7)
	require.ErrorIs(t, r.Err(), timestep.ErrInvalidInput)
	require.Empty(t, r.Defaults())

	r = NewReader(Fields{"emissivity": "1.5"})
	_ = r.Fraction("emissivity", 0.7)
	require.ErrorIs(t, r.Err(), timestep.ErrInvalidInput)
}

func TestReaderGrid(t *testing.T) {
	r := NewReader(Fields{"duration": "600", "time_step": "1"})
	g := r.Grid()
	require.NoError(t, r.Err())
	require.Equal(t, timestep.Grid{Duration: 600, Step: 1}, g)

	r = NewReader(Fields{"duration": "600"})
	_ = r.Grid()
	require.Error(t, r.Err())
}

func TestReaderText(t *testing.T) {
	r := NewReader(Fields{"method": "protected"})
	require.Equal(t, "protected", r.Text("method", "unprotected"))
	require.Equal(t, "temperature", r.Text("mode", "temperature"))
}

func TestReaderOptional(t *testing.T) {
	r := NewReader(Fields{"critical_temperature": "550", "blank": " "})
	x, ok := r.Optional("critical_temperature")
	require.True(t, ok)
	require.Equal(t, 550.0, x)

	_, ok = r.Optional("blank")
	require.False(t, ok)
	require.Empty(t, r.Defaults())
	require.NoError(t, r.Err())

	r = NewReader(Fields{"critical_temperature": "hot"})
	_, ok = r.Optional("critical_temperature")
	require.False(t, ok)
	require.ErrorIs(t, r.Err(), timestep.ErrInvalidInput)
}
