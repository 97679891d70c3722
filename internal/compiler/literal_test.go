package compiler

import (
	"math"
	"testing"

	"apivengers/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLiteral(t *testing.T) {
	cases := []struct {
		typ  model.FieldType
		in   string
		want string
	}{
		{model.TypeBoolean, "true", "true"},
		{model.TypeBoolean, "TRUE", "false"},
		{model.TypeBoolean, "1", "false"},
		{model.TypeNumber, "42", "42"},
		{model.TypeNumber, "  3.25kg", "3.25"},
		{model.TypeNumber, ".5", "0.5"},
		{model.TypeNumber, "-7e2", "-700"},
		{model.TypeNumber, "abc", "0"},
		{model.TypeNumber, "-0", "0"},
		{model.TypeNumber, "Infinity", "Infinity"},
		{model.TypeString, "'hello'", "'hello'"},
		{model.TypeDate, "Date.now", "Date.now"},
		{model.TypeMixed, "{}", "{}"},
	}
	for _, c := range cases {
		got := DefaultLiteral(model.Field{Type: c.typ, Default: c.in})
		assert.Equal(t, c.want, got, "%s %q", c.typ, c.in)
	}
}

func TestParseNumberPrefix(t *testing.T) {
	v, ok := ParseNumberPrefix("1e400")
	assert.True(t, ok)
	assert.True(t, math.IsInf(v, 1))

	_, ok = ParseNumberPrefix("")
	assert.False(t, ok)
	_, ok = ParseNumberPrefix("e5")
	assert.False(t, ok)

	v, ok = ParseNumberPrefix("-Infinityx")
	assert.True(t, ok)
	assert.True(t, math.IsInf(v, -1))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "10", FormatNumber(10))
	assert.Equal(t, "0.1", FormatNumber(0.1))
	assert.Equal(t, "-2.5", FormatNumber(-2.5))
	assert.Equal(t, "1e+21", FormatNumber(1e21))
	assert.Equal(t, "1e-7", FormatNumber(1e-7))
	assert.Equal(t, "0.000001", FormatNumber(1e-6))
	assert.Equal(t, "0", FormatNumber(0))
}
