package utils

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds v to two decimal places, half away from zero, using the
// shortest decimal representation of v so that values like 0.125 round up.
// NaN and infinities are returned unchanged.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, _ := decimal.NewFromFloat(v).Round(2).Float64()
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

// Mean returns the arithmetic mean of vs, or 0 for an empty slice.
func Mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, v := range vs {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	m, _ := sum.Div(decimal.NewFromInt(int64(len(vs)))).Float64()
	return m
}

// FormatPct formats a fraction as a signed percentage, e.g. 0.0213 as "+2.13%".
func FormatPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v*100)
}

// FormatUSD formats a price with a dollar sign and thousands separators.
func FormatUSD(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var out []byte
	for i, c := range []byte(intPart) {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-$" + string(out) + frac
	}
	return "$" + string(out) + frac
}
