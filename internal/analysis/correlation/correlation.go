// Package correlation measures how same-day sentiment lines up with the
// following day's price move.
package correlation

import (
	"math"

	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// MinRows is the fewest complete rows a coefficient is reported for.
const MinRows = 2

// PctChange returns (v[t]-v[t-1])/v[t-1] for every t. Index 0, and any t
// whose predecessor is zero or NaN, is NaN.
func PctChange(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i == 0 || values[i-1] == 0 || math.IsNaN(values[i-1]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = (values[i] - values[i-1]) / values[i-1]
	}
	return out
}

// ShiftNext moves every value one slot earlier, so out[t] = values[t+1].
// The last slot is NaN.
func ShiftNext(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i+1 < len(values) {
			out[i] = values[i+1]
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// NextDay correlates each day's sentiment with the price change of the
// following row.
//
// Only rows that carry both price and sentiment take part: the outer frame
// is reduced to its Complete subset first, then percentage change and the
// one-row shift run over that subset. Rows left without a next-day change
// are dropped. With fewer than MinRows remaining the result is marked
// insufficient.
func NextDay(frame models.CombinedFrame) models.Correlation {
	inner := frame.Complete()

	closes := make([]float64, len(inner))
	sentiments := make([]float64, len(inner))
	for i, r := range inner {
		closes[i] = *r.Close
		sentiments[i] = *r.Sentiment
	}
	next := ShiftNext(PctChange(closes))

	var xs, ys []float64
	for i := range inner {
		if math.IsNaN(next[i]) || math.IsInf(next[i], 0) || math.IsNaN(sentiments[i]) {
			continue
		}
		xs = append(xs, sentiments[i])
		ys = append(ys, next[i])
	}

	if len(xs) < MinRows {
		return models.Correlation{Rows: len(xs)}
	}

	r := Pearson(xs, ys)
	return models.Correlation{
		Value:      utils.Round2(math.Max(-1, math.Min(1, r))),
		Rows:       len(xs),
		Sufficient: true,
	}
}

// Pearson returns the sample correlation coefficient of a and b over their
// common length. It returns 0 when fewer than two pairs exist or either side
// has zero variance.
func Pearson(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return 0
	}

	var meanA, meanB float64
	for i := 0; i < n; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(n)
	meanB /= float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	den := math.Sqrt(varA * varB)
	if den == 0 {
		return 0
	}
	return cov / den
}
