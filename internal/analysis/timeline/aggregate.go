package timeline

import (
	"sort"
	"time"

	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// RecencyCap is the most days the daily series ever keeps.
const RecencyCap = 14

// AggregateDaily averages event sentiment per calendar day and keeps the
// most recent min(days, RecencyCap) days, oldest first. Days without events
// are absent, not zero-filled.
func AggregateDaily(events []models.TextEvent, days int) []models.DailySentiment {
	byDay := make(map[time.Time][]float64)
	for _, e := range events {
		d := utils.DateOf(e.Date)
		byDay[d] = append(byDay[d], e.Sentiment)
	}

	out := make([]models.DailySentiment, 0, len(byDay))
	for d, scores := range byDay {
		out = append(out, models.DailySentiment{
			Date:    d,
			Average: utils.Round2(utils.Mean(scores)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	keep := min(days, RecencyCap)
	if keep < 0 {
		keep = 0
	}
	if len(out) > keep {
		out = out[len(out)-keep:]
	}
	return out
}
