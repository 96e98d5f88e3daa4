package batch

import (
	"time"

	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// DefaultGroups is the number of rotation groups; each ticker is refreshed
// every DefaultGroups days.
const DefaultGroups = 5

// Rotation splits tickers into groups contiguous slices of len/groups
// tickers each, the last group taking the remainder. A 503-symbol list
// splits 100/100/100/100/103.
func Rotation(tickers []string, groups int) [][]string {
	if groups < 1 {
		groups = 1
	}
	n := len(tickers)
	size := n / groups
	if size == 0 {
		size = 1
	}

	out := make([][]string, groups)
	for i := range out {
		lo := min(i*size, n)
		hi := min((i+1)*size, n)
		if i == groups-1 {
			hi = n
		}
		out[i] = tickers[lo:hi]
	}
	return out
}

// GroupIndex picks the rotation group for a calendar day: its proleptic
// Gregorian ordinal modulo groups.
func GroupIndex(day time.Time, groups int) int {
	if groups < 1 {
		return 0
	}
	return int(utils.Ordinal(day) % int64(groups))
}
