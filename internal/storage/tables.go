package storage

// Row types for the four persisted tables. Dates are stored as YYYY-MM-DD
// text so that lexical and chronological order agree on every driver.

// PriceRow is one daily close.
type PriceRow struct {
	ID         uint    `gorm:"primaryKey;autoIncrement"`
	Ticker     string  `gorm:"size:16;index:idx_stock_prices_ticker_date"`
	Date       string  `gorm:"size:10;index:idx_stock_prices_ticker_date"`
	ClosePrice float64 `gorm:"column:close_price"`
}

func (PriceRow) TableName() string { return "stock_prices" }

// HeadlineRow is one scored news headline.
type HeadlineRow struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Ticker    string `gorm:"size:16;index:idx_headlines_ticker_date"`
	Date      string `gorm:"size:10;index:idx_headlines_ticker_date"`
	Title     string `gorm:"size:512"`
	Source    string `gorm:"size:255"`
	URL       string `gorm:"column:url;size:1024"`
	Sentiment float64
}

func (HeadlineRow) TableName() string { return "headlines" }

// PostRow is one scored forum post.
type PostRow struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Ticker    string `gorm:"size:16;index:idx_reddit_posts_ticker_date"`
	Date      string `gorm:"size:10;index:idx_reddit_posts_ticker_date"`
	Title     string `gorm:"size:512"`
	Text      string `gorm:"type:text"`
	Score     int
	URL       string `gorm:"column:url;size:1024"`
	Subreddit string `gorm:"size:64"`
	Sentiment float64
}

func (PostRow) TableName() string { return "reddit_posts" }

// SentimentRow is one daily sentiment average.
type SentimentRow struct {
	ID               uint    `gorm:"primaryKey;autoIncrement"`
	Ticker           string  `gorm:"size:16;index:idx_sentiment_ticker_date"`
	Date             string  `gorm:"size:10;index:idx_sentiment_ticker_date"`
	AverageSentiment float64 `gorm:"column:average_sentiment"`
}

func (SentimentRow) TableName() string { return "sentiment" }

// allTables lists every model in migration order.
func allTables() []any {
	return []any{&PriceRow{}, &HeadlineRow{}, &PostRow{}, &SentimentRow{}}
}
