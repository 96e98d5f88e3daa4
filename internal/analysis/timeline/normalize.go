// Package timeline places scored text events and prices on a shared daily
// axis: normalization, per-day aggregation, the price join and top-N
// preview selection.
package timeline

import (
	"sort"
	"time"

	"github.com/seenimoa/tickerpulse/internal/analysis/sentiment"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// MaxHeadlineDays is the furthest back the headline provider can search.
const MaxHeadlineDays = 30

// HeadlineWindow caps a requested window to the headline provider's limit.
func HeadlineWindow(days int) int {
	if days > MaxHeadlineDays {
		return MaxHeadlineDays
	}
	return days
}

// PostCutoff is the earliest creation time a post may have to count toward
// a days-long window ending at now.
func PostCutoff(now time.Time, days int) time.Time {
	return now.UTC().Add(-time.Duration(days) * 24 * time.Hour)
}

// NormalizeHeadlines scores each headline title. Provider order is kept.
func NormalizeHeadlines(scorer *sentiment.Scorer, raw []models.RawHeadline) []models.TextEvent {
	events := make([]models.TextEvent, 0, len(raw))
	for _, h := range raw {
		events = append(events, models.TextEvent{
			Date:      utils.DateOf(h.PublishedAt),
			Sentiment: scorer.Score(h.Title),
			Origin:    models.OriginNews,
			Title:     h.Title,
			Source:    h.Source,
			Link:      h.URL,
		})
	}
	return events
}

// NormalizePosts drops posts created before now-days, scores the rest on
// title and body, and returns them ordered newest day first.
//
// The order compares YYYY-MM-DD keys as strings. With a fixed-width layout
// that is the same as chronological order; posts within one day keep their
// fetch order.
func NormalizePosts(scorer *sentiment.Scorer, raw []models.RawPost, days int, now time.Time) []models.TextEvent {
	cutoff := PostCutoff(now, days)

	events := make([]models.TextEvent, 0, len(raw))
	keys := make([]string, 0, len(raw))
	for _, p := range raw {
		created := p.Created()
		if created.Before(cutoff) {
			continue
		}
		score := p.Score
		events = append(events, models.TextEvent{
			Date:       utils.DateOf(created),
			Sentiment:  scorer.Score(p.Title + " " + p.SelfText),
			Origin:     models.OriginForum,
			Title:      p.Title,
			Body:       p.SelfText,
			Source:     p.Subreddit,
			Link:       p.URL,
			Popularity: &score,
		})
		keys = append(keys, utils.DateKey(created))
	}

	sort.Stable(byDateKeyDesc{events: events, keys: keys})
	return events
}

type byDateKeyDesc struct {
	events []models.TextEvent
	keys   []string
}

func (b byDateKeyDesc) Len() int           { return len(b.events) }
func (b byDateKeyDesc) Less(i, j int) bool { return b.keys[i] > b.keys[j] }
func (b byDateKeyDesc) Swap(i, j int) {
	b.events[i], b.events[j] = b.events[j], b.events[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}
