package datasource

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/tickerpulse/internal/metrics"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// DefaultFeedURLTemplate is Yahoo Finance's per-ticker headline feed. The
// single %s receives the query-escaped symbol.
const DefaultFeedURLTemplate = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// FeedHeadlines reads headlines from a per-ticker RSS feed. It needs no API
// key and is used when NewsAPI is not configured.
type FeedHeadlines struct {
	urlTemplate string
	parser      *gofeed.Parser
}

// NewFeedHeadlines creates an RSS headline source. An empty template selects
// DefaultFeedURLTemplate.
func NewFeedHeadlines(urlTemplate string) *FeedHeadlines {
	if urlTemplate == "" {
		urlTemplate = DefaultFeedURLTemplate
	}
	p := gofeed.NewParser()
	p.UserAgent = DefaultUserAgent
	return &FeedHeadlines{urlTemplate: urlTemplate, parser: p}
}

// Name returns the data source name.
func (f *FeedHeadlines) Name() string { return "RSS" }

// SearchHeadlines returns feed items published on or after q.From, newest first.
func (f *FeedHeadlines) SearchHeadlines(ctx context.Context, q HeadlineQuery) (headlines []models.RawHeadline, err error) {
	began := time.Now()
	defer func() { metrics.ObserveProvider("rss", StatusOf(err), began) }()

	feedURL := fmt.Sprintf(f.urlTemplate, url.QueryEscape(utils.YahooSymbol(q.Ticker)))
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", q.Ticker, err)
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = "RSS"
	}

	from := utils.DateOf(q.From)
	headlines = make([]models.RawHeadline, 0, len(feed.Items))
	for _, item := range feed.Items {
		h := models.RawHeadline{
			Title:  cleanHTML(item.Title),
			URL:    item.Link,
			Source: source,
		}
		if item.PublishedParsed != nil {
			h.PublishedAt = item.PublishedParsed.UTC()
		} else if item.UpdatedParsed != nil {
			h.PublishedAt = item.UpdatedParsed.UTC()
		} else {
			continue
		}
		if h.PublishedAt.Before(from) {
			continue
		}
		headlines = append(headlines, h)
	}

	sortHeadlinesByDate(headlines)
	return headlines, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// sortHeadlinesByDate sorts headlines by publish time, newest first.
func sortHeadlinesByDate(headlines []models.RawHeadline) {
	sort.SliceStable(headlines, func(i, j int) bool {
		return headlines[i].PublishedAt.After(headlines[j].PublishedAt)
	})
}
