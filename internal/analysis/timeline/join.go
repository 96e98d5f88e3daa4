package timeline

import (
	"sort"
	"time"

	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// Join outer-joins prices and daily sentiment on calendar day. Every date
// from either side appears once, ascending; a side with no value for that
// date is left nil.
//
// Callers that correlate must use the frame's Complete subset. The outer
// frame exists for charting and would otherwise feed missing values into
// the percentage-change step.
func Join(prices models.PriceSeries, daily []models.DailySentiment) models.CombinedFrame {
	rows := make(map[time.Time]*models.CombinedRow, len(prices)+len(daily))
	row := func(d time.Time) *models.CombinedRow {
		d = utils.DateOf(d)
		r, ok := rows[d]
		if !ok {
			r = &models.CombinedRow{Date: d}
			rows[d] = r
		}
		return r
	}

	for _, p := range prices {
		c := p.Close
		row(p.Date).Close = &c
	}
	for _, s := range daily {
		v := s.Average
		row(s.Date).Sentiment = &v
	}

	frame := make(models.CombinedFrame, 0, len(rows))
	for _, r := range rows {
		frame = append(frame, *r)
	}
	sort.Slice(frame, func(i, j int) bool { return frame[i].Date.Before(frame[j].Date) })
	return frame
}
