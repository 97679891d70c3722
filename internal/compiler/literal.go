package compiler

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"apivengers/internal/model"
)

// numericPrefix matches what JavaScript's parseFloat accepts.
var numericPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// DefaultLiteral renders a field's default value for the schema:
// Boolean defaults become true/false, Number defaults are parsed with a 0
// fallback, anything else is emitted verbatim so expressions such as
// Date.now pass through.
func DefaultLiteral(f model.Field) string {
	switch f.Type {
	case model.TypeBoolean:
		return strconv.FormatBool(f.Default == "true")
	case model.TypeNumber:
		v, ok := ParseNumberPrefix(f.Default)
		if !ok || v == 0 || math.IsNaN(v) {
			return "0"
		}
		return FormatNumber(v)
	default:
		return f.Default
	}
}

// ParseNumberPrefix parses the longest numeric prefix of s after leading
// whitespace.
func ParseNumberPrefix(s string) (float64, bool) {
	m := numericPrefix.FindString(strings.TrimLeft(s, " \t\n\r\v\f"))
	if m == "" {
		return 0, false
	}
	switch strings.TrimLeft(m, "+-") {
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// Out-of-range exponents still yield ±Inf from ParseFloat.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return v, true
		}
		return 0, false
	}
	return v, true
}

// FormatNumber prints v the way JavaScript's Number#toString does for the
// ranges a schema is likely to hold.
func FormatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	}
	abs := math.Abs(v)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		exp = strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + exp
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
