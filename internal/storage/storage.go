// Package storage persists analysis results in four tables: daily closes,
// headlines, forum posts and daily sentiment averages.
package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/seenimoa/tickerpulse/internal/config"
	"github.com/seenimoa/tickerpulse/internal/infra"
	"github.com/seenimoa/tickerpulse/internal/metrics"
	"github.com/seenimoa/tickerpulse/pkg/logger"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// Store wraps the database handle.
type Store struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger

	// Writes for one ticker are serialized so two existence checks cannot
	// both miss and insert the same row.
	writes infra.KeyedMutex
}

// WriteSummary counts rows inserted by SaveReport, per table.
type WriteSummary struct {
	Prices    int `json:"prices"`
	Headlines int `json:"headlines"`
	Posts     int `json:"posts"`
	Sentiment int `json:"sentiment"`
}

// Total returns the number of rows inserted across all tables.
func (w WriteSummary) Total() int {
	return w.Prices + w.Headlines + w.Posts + w.Sentiment
}

// Open connects to the configured database. It does not create tables;
// call Migrate for that.
func Open(cfg config.StorageConfig, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Get()
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "stock_sentiment.db"
		}
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	if cfg.Driver == "mysql" {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// SQLite allows one writer, and ":memory:" is private to its connection.
		sqlDB.SetMaxOpenConns(1)
	}

	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite"
	}
	return &Store{db: db, driver: driver, log: log.Named("storage")}, nil
}

// Migrate creates any missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allTables()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	s.log.Infow("database initialized", "driver", s.driver)
	return nil
}

// Driver returns the database driver name.
func (s *Store) Driver() string { return s.driver }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveReport writes every table of a finished analysis.
func (s *Store) SaveReport(ctx context.Context, r *models.SentimentReport) (WriteSummary, error) {
	var sum WriteSummary
	var err error

	if sum.Prices, err = s.SavePrices(ctx, r.Ticker, r.Prices); err != nil {
		return sum, err
	}
	if sum.Headlines, err = s.SaveHeadlines(ctx, r.Ticker, r.Headlines); err != nil {
		return sum, err
	}
	if sum.Posts, err = s.SavePosts(ctx, r.Ticker, r.Posts); err != nil {
		return sum, err
	}
	if sum.Sentiment, err = s.SaveSentiment(ctx, r.Ticker, r.Daily); err != nil {
		return sum, err
	}
	return sum, nil
}

// SavePrices inserts closes whose (ticker, date) is not stored yet.
func (s *Store) SavePrices(ctx context.Context, ticker string, prices models.PriceSeries) (int, error) {
	rows := make([]PriceRow, 0, len(prices))
	for _, p := range prices {
		rows = append(rows, PriceRow{Ticker: ticker, Date: utils.DateKey(p.Date), ClosePrice: p.Close})
	}
	return insertMissing(ctx, s, ticker, rows, func(tx *gorm.DB, r PriceRow) *gorm.DB {
		return tx.Where("ticker = ? AND date = ?", r.Ticker, r.Date)
	})
}

// SaveHeadlines inserts headlines whose (ticker, date, title) is not stored yet.
func (s *Store) SaveHeadlines(ctx context.Context, ticker string, events []models.TextEvent) (int, error) {
	rows := make([]HeadlineRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, HeadlineRow{
			Ticker:    ticker,
			Date:      utils.DateKey(e.Date),
			Title:     e.Title,
			Source:    e.Source,
			URL:       e.Link,
			Sentiment: e.Sentiment,
		})
	}
	return insertMissing(ctx, s, ticker, rows, func(tx *gorm.DB, r HeadlineRow) *gorm.DB {
		return tx.Where("ticker = ? AND date = ? AND title = ?", r.Ticker, r.Date, r.Title)
	})
}

// SavePosts inserts posts whose (ticker, date, title) is not stored yet.
func (s *Store) SavePosts(ctx context.Context, ticker string, events []models.TextEvent) (int, error) {
	rows := make([]PostRow, 0, len(events))
	for _, e := range events {
		score := 0
		if e.Popularity != nil {
			score = *e.Popularity
		}
		rows = append(rows, PostRow{
			Ticker:    ticker,
			Date:      utils.DateKey(e.Date),
			Title:     e.Title,
			Text:      e.Body,
			Score:     score,
			URL:       e.Link,
			Subreddit: e.Source,
			Sentiment: e.Sentiment,
		})
	}
	return insertMissing(ctx, s, ticker, rows, func(tx *gorm.DB, r PostRow) *gorm.DB {
		return tx.Where("ticker = ? AND date = ? AND title = ?", r.Ticker, r.Date, r.Title)
	})
}

// SaveSentiment inserts daily averages whose (ticker, date) is not stored yet.
func (s *Store) SaveSentiment(ctx context.Context, ticker string, daily []models.DailySentiment) (int, error) {
	rows := make([]SentimentRow, 0, len(daily))
	for _, d := range daily {
		rows = append(rows, SentimentRow{Ticker: ticker, Date: utils.DateKey(d.Date), AverageSentiment: d.Average})
	}
	return insertMissing(ctx, s, ticker, rows, func(tx *gorm.DB, r SentimentRow) *gorm.DB {
		return tx.Where("ticker = ? AND date = ?", r.Ticker, r.Date)
	})
}

type tabler interface {
	TableName() string
}

// insertMissing inserts each row unless match finds an existing one, all in
// one transaction, and returns how many rows were inserted.
func insertMissing[T tabler](ctx context.Context, s *Store, ticker string, rows []T, match func(*gorm.DB, T) *gorm.DB) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	unlock := s.writes.Lock(ticker)
	defer unlock()

	table := rows[0].TableName()
	inserted := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			var n int64
			if err := match(tx.Model(new(T)), rows[i]).Count(&n).Error; err != nil {
				return fmt.Errorf("check %s row: %w", table, err)
			}
			if n > 0 {
				continue
			}
			if err := tx.Create(&rows[i]).Error; err != nil {
				return fmt.Errorf("insert %s row: %w", table, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.RowsWritten.WithLabelValues(table).Add(float64(inserted))
	s.log.Debugw("rows saved", "table", table, "ticker", ticker, "inserted", inserted, "skipped", len(rows)-inserted)
	return inserted, nil
}

// PriceHistory returns stored closes for ticker within [from, to], oldest first.
func (s *Store) PriceHistory(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error) {
	var rows []PriceRow
	err := s.db.WithContext(ctx).
		Where("ticker = ? AND date >= ? AND date <= ?", ticker, utils.DateKey(from), utils.DateKey(to)).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}

	out := make(models.PriceSeries, 0, len(rows))
	for _, r := range rows {
		d, err := utils.ParseDateKey(r.Date)
		if err != nil {
			return nil, fmt.Errorf("stored price date %q: %w", r.Date, err)
		}
		out = append(out, models.PricePoint{Date: d, Close: r.ClosePrice})
	}
	return out, nil
}

// SentimentHistory returns stored daily averages for ticker within [from, to],
// oldest first.
func (s *Store) SentimentHistory(ctx context.Context, ticker string, from, to time.Time) ([]models.DailySentiment, error) {
	var rows []SentimentRow
	err := s.db.WithContext(ctx).
		Where("ticker = ? AND date >= ? AND date <= ?", ticker, utils.DateKey(from), utils.DateKey(to)).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query sentiment history: %w", err)
	}

	out := make([]models.DailySentiment, 0, len(rows))
	for _, r := range rows {
		d, err := utils.ParseDateKey(r.Date)
		if err != nil {
			return nil, fmt.Errorf("stored sentiment date %q: %w", r.Date, err)
		}
		out = append(out, models.DailySentiment{Date: d, Average: r.AverageSentiment})
	}
	return out, nil
}

// Counts returns the number of stored rows per table.
func (s *Store) Counts(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, 4)
	for _, t := range allTables() {
		var n int64
		if err := s.db.WithContext(ctx).Model(t).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", t.(tabler).TableName(), err)
		}
		out[t.(tabler).TableName()] = n
	}
	return out, nil
}
