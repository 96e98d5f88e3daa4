package models

import "time"

// Origin identifies where a text event came from.
type Origin string

const (
	OriginNews  Origin = "news"
	OriginForum Origin = "forum"
)

// SentimentLabel is the display bucket for a compound score.
type SentimentLabel string

const (
	Positive SentimentLabel = "Positive"
	Neutral  SentimentLabel = "Neutral"
	Negative SentimentLabel = "Negative"
)

// RawHeadline is an article as returned by a headline provider.
type RawHeadline struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// RawPost is a forum submission as returned by the post provider.
type RawPost struct {
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"` // unix seconds
	URL        string  `json:"url"`
	Subreddit  string  `json:"subreddit"`
}

// Created returns the post creation time in UTC.
func (p RawPost) Created() time.Time {
	sec := int64(p.CreatedUTC)
	nsec := int64((p.CreatedUTC - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

// TextEvent is a scored headline or post placed on the daily timeline.
type TextEvent struct {
	Date       time.Time `json:"date"` // calendar day, midnight UTC
	Sentiment  float64   `json:"sentiment"`
	Origin     Origin    `json:"origin"`
	Title      string    `json:"title"`
	Body       string    `json:"body,omitempty"`
	Source     string    `json:"source"` // publication or subreddit
	Link       string    `json:"link"`
	Popularity *int      `json:"popularity,omitempty"` // upvotes; nil for news
}

// DailySentiment is the mean sentiment of all events on one calendar day.
type DailySentiment struct {
	Date    time.Time `json:"date"`
	Average float64   `json:"average"`
}
