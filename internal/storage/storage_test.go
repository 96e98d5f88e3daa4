package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/tickerpulse/internal/config"
	"github.com/seenimoa/tickerpulse/pkg/logger"
	"github.com/seenimoa/tickerpulse/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(config.StorageConfig{Driver: "sqlite", DSN: ":memory:"}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func date(day int) time.Time { return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC) }

func sampleReport() *models.SentimentReport {
	upvotes := 42
	return &models.SentimentReport{
		Ticker: "ACME",
		Prices: models.PriceSeries{
			{Date: date(2), Close: 100.5},
			{Date: date(3), Close: 101.25},
		},
		Headlines: []models.TextEvent{
			{Date: date(2), Sentiment: 0.4, Origin: models.OriginNews, Title: "Acme beats estimates", Source: "Wire", Link: "https://example.com/a"},
			{Date: date(3), Sentiment: -0.1, Origin: models.OriginNews, Title: "Acme guidance cut", Source: "Wire", Link: "https://example.com/b"},
		},
		Posts: []models.TextEvent{
			{Date: date(3), Sentiment: 0.2, Origin: models.OriginForum, Title: "ACME calls", Body: "to the moon", Source: "stocks", Link: "https://reddit.com/x", Popularity: &upvotes},
		},
		Daily: []models.DailySentiment{
			{Date: date(2), Average: 0.4},
			{Date: date(3), Average: 0.05},
		},
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.StorageConfig{Driver: "postgres"}, logger.Nop())
	assert.Error(t, err)
}

func TestMigrateCreatesTables(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"stock_prices", "headlines", "reddit_posts", "sentiment"} {
		assert.True(t, s.db.Migrator().HasTable(name), name)
	}
	assert.NoError(t, s.Ping(context.Background()))
	assert.Equal(t, "sqlite", s.Driver())
}

func TestSaveReportIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.SaveReport(ctx, sampleReport())
	require.NoError(t, err)
	assert.Equal(t, WriteSummary{Prices: 2, Headlines: 2, Posts: 1, Sentiment: 2}, first)
	assert.Equal(t, 7, first.Total())

	second, err := s.SaveReport(ctx, sampleReport())
	require.NoError(t, err)
	assert.Zero(t, second.Total(), "re-saving the same report inserts nothing")

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"stock_prices": 2, "headlines": 2, "reddit_posts": 1, "sentiment": 2}, counts)
}

func TestExistingRowIsNotOverwritten(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveSentiment(ctx, "ACME", []models.DailySentiment{{Date: date(2), Average: 0.4}})
	require.NoError(t, err)

	n, err := s.SaveSentiment(ctx, "ACME", []models.DailySentiment{
		{Date: date(2), Average: -0.9},
		{Date: date(4), Average: 0.1},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hist, err := s.SentimentHistory(ctx, "ACME", date(1), date(31))
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, 0.4, hist[0].Average, "first write wins")
}

func TestHeadlinesKeyIncludesTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.SaveHeadlines(ctx, "ACME", []models.TextEvent{
		{Date: date(2), Title: "one"},
		{Date: date(2), Title: "two"},
		{Date: date(2), Title: "one"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.SaveHeadlines(ctx, "OTHER", []models.TextEvent{{Date: date(2), Title: "one"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "same title under a different ticker is a new row")
}

func TestPostRowFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SavePosts(ctx, "ACME", sampleReport().Posts)
	require.NoError(t, err)

	var row PostRow
	require.NoError(t, s.db.First(&row).Error)
	assert.Equal(t, "2026-03-03", row.Date)
	assert.Equal(t, "to the moon", row.Text)
	assert.Equal(t, 42, row.Score)
	assert.Equal(t, "stocks", row.Subreddit)
	assert.Equal(t, 0.2, row.Sentiment)
}

func TestPriceHistoryRangeAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SavePrices(ctx, "ACME", models.PriceSeries{
		{Date: date(5), Close: 105},
		{Date: date(1), Close: 101},
		{Date: date(3), Close: 103},
	})
	require.NoError(t, err)

	got, err := s.PriceHistory(ctx, "ACME", date(2), date(5))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.PricePoint{Date: date(3), Close: 103}, got[0])
	assert.Equal(t, models.PricePoint{Date: date(5), Close: 105}, got[1])

	none, err := s.PriceHistory(ctx, "NOPE", date(1), date(31))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveEmptyInputs(t *testing.T) {
	s := newTestStore(t)
	sum, err := s.SaveReport(context.Background(), &models.SentimentReport{Ticker: "ACME"})
	require.NoError(t, err)
	assert.Zero(t, sum.Total())
}
