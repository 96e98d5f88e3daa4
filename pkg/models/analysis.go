package models

import "time"

// CombinedRow is one date of the price/sentiment outer join. A nil field
// means the series had no value for that date; it is never zero-filled.
type CombinedRow struct {
	Date      time.Time `json:"date"`
	Close     *float64  `json:"close"`
	Sentiment *float64  `json:"sentiment"`
}

// CombinedFrame is the date-ascending outer join of a PriceSeries and a
// DailySentiment series.
type CombinedFrame []CombinedRow

// Complete returns the rows where both price and sentiment are present.
//
// The outer frame and this subset serve different consumers and must not be
// swapped. Charts draw the outer frame so partial data stays visible. The
// correlation engine works on Complete, so percentage changes are taken
// between consecutive dates that both carry sentiment, and missing values
// are dropped rather than read as zero.
func (f CombinedFrame) Complete() CombinedFrame {
	out := make(CombinedFrame, 0, len(f))
	for _, r := range f {
		if r.Close != nil && r.Sentiment != nil {
			out = append(out, r)
		}
	}
	return out
}

// Correlation is the next-day price/sentiment Pearson coefficient. When
// Sufficient is false there were fewer than two complete rows and Value is
// meaningless.
type Correlation struct {
	Value      float64 `json:"value"`
	Rows       int     `json:"rows"`
	Sufficient bool    `json:"sufficient"`
}

// SentimentReport is the full result of one (ticker, days) analysis. It is
// the unit stored in the result cache.
type SentimentReport struct {
	Ticker         string           `json:"ticker"`
	Company        Company          `json:"company"`
	Days           int              `json:"days"`
	Prices         PriceSeries      `json:"prices"`
	Headlines      []TextEvent      `json:"headlines"` // all scored headlines, provider order
	Posts          []TextEvent      `json:"posts"`     // all scored posts, newest date first
	Daily          []DailySentiment `json:"daily_sentiment"`
	Combined       CombinedFrame    `json:"combined"`
	Correlation    Correlation      `json:"correlation"`
	TopHeadlines   []TextEvent      `json:"top_headlines"`
	TopPosts       []TextEvent      `json:"top_posts"`
	GeneratedAt    time.Time        `json:"generated_at"`
	HeadlineSource string           `json:"headline_source,omitempty"`
}
