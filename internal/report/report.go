package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/seenimoa/tickerpulse/internal/analysis/sentiment"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Generator — Orchestrates chart + template rendering
// ════════════════════════════════════════════════════════════════════

// ReportFormat specifies the output format.
type ReportFormat string

const (
	FormatHTML ReportFormat = "html"
	FormatText ReportFormat = "text"
	FormatXLSX ReportFormat = "xlsx"
	FormatJSON ReportFormat = "json"
)

// PreviewLength is how much of a post body the cards show.
const PreviewLength = 200

// ReportConfig controls report generation behaviour.
type ReportConfig struct {
	Title    string      // custom page title (optional)
	ChartCfg ChartConfig // chart rendering config
}

// DefaultReportConfig returns sensible defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{ChartCfg: DefaultChartConfig()}
}

// ════════════════════════════════════════════════════════════════════
// Report Data — Flattened for template rendering
// ════════════════════════════════════════════════════════════════════

// DashboardData is the template model passed to the HTML template.
type DashboardData struct {
	Title       string
	Ticker      string
	CompanyName string
	Days        int
	GeneratedAt string

	LastClose   string
	PeriodMove  string
	MoveClass   string
	Correlation string

	PriceChart     template.HTML
	SentimentChart template.HTML
	OverlayChart   template.HTML

	Headlines []HeadlineCard
	Posts     []PostCard
	Source    string
}

// HeadlineCard is one headline in the preview list.
type HeadlineCard struct {
	Title      string
	URL        string
	Label      string
	LabelClass string
	Score      string
	Source     string
	Date       string
}

// PostCard is one forum post in the preview list.
type PostCard struct {
	Title      string
	URL        string
	Preview    string
	Label      string
	LabelClass string
	Score      string
	Subreddit  string
	Upvotes    int
	Date       string
}

// ════════════════════════════════════════════════════════════════════
// Generate Report
// ════════════════════════════════════════════════════════════════════

var dashboardTmpl = template.Must(template.New("dashboard").Parse(DashboardTemplate))

// GenerateHTML renders the dashboard page for a report.
func GenerateHTML(r *models.SentimentReport, cfg ReportConfig) (string, error) {
	if r == nil {
		return "", fmt.Errorf("report is nil")
	}

	data := BuildDashboardData(r, cfg)

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// GenerateText renders a plain-text summary (terminal / CLI friendly).
func GenerateText(r *models.SentimentReport, cfg ReportConfig) (string, error) {
	if r == nil {
		return "", fmt.Errorf("report is nil")
	}
	return renderTextReport(BuildDashboardData(r, cfg)), nil
}

// CorrelationLine is the sentence shown under the overlay chart.
func CorrelationLine(c models.Correlation) string {
	if !c.Sufficient {
		return "Not enough data to compute sentiment-price correlation."
	}
	return fmt.Sprintf("Correlation between sentiment and next-day price change: %.2f", c.Value)
}

// Preview shortens text to n runes, appending "..." when anything was cut.
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

// ════════════════════════════════════════════════════════════════════
// Internal — Build template data
// ════════════════════════════════════════════════════════════════════

// BuildDashboardData flattens a report for the templates.
func BuildDashboardData(r *models.SentimentReport, cfg ReportConfig) DashboardData {
	chartCfg := cfg.ChartCfg
	if chartCfg.Width == 0 {
		chartCfg = DefaultChartConfig()
	}

	data := DashboardData{
		Title:       cfg.Title,
		Ticker:      r.Ticker,
		CompanyName: r.Company.DisplayName(),
		Days:        r.Days,
		GeneratedAt: r.GeneratedAt.UTC().Format("02 Jan 2006, 15:04 MST"),
		Correlation: CorrelationLine(r.Correlation),
		Source:      r.HeadlineSource,

		PriceChart:     template.HTML(PriceChart(r.Prices, titled(chartCfg, r.Ticker+" Closing Price"))),
		SentimentChart: template.HTML(SentimentChart(r.Daily, titled(chartCfg, r.Ticker+" Daily Sentiment"))),
		OverlayChart:   template.HTML(OverlayChart(r.Combined, titled(chartCfg, r.Ticker+" Price vs Sentiment"))),
	}
	if data.Title == "" {
		data.Title = fmt.Sprintf("%s Stock Price + Sentiment", r.Ticker)
	}

	if n := len(r.Prices); n > 0 {
		last := r.Prices[n-1].Close
		data.LastClose = utils.FormatUSD(last)
		if first := r.Prices[0].Close; first != 0 && n > 1 {
			move := (last - first) / first
			data.PeriodMove = utils.FormatPct(move)
			data.MoveClass = signClass(move)
		}
	}

	for _, h := range r.TopHeadlines {
		label := sentiment.Classify(h.Sentiment)
		data.Headlines = append(data.Headlines, HeadlineCard{
			Title:      h.Title,
			URL:        h.Link,
			Label:      string(label),
			LabelClass: labelClass(label),
			Score:      fmt.Sprintf("%.2f", h.Sentiment),
			Source:     h.Source,
			Date:       utils.DateKey(h.Date),
		})
	}
	for _, p := range r.TopPosts {
		label := sentiment.Classify(p.Sentiment)
		card := PostCard{
			Title:      p.Title,
			URL:        p.Link,
			Preview:    Preview(p.Body, PreviewLength),
			Label:      string(label),
			LabelClass: labelClass(label),
			Score:      fmt.Sprintf("%.2f", p.Sentiment),
			Subreddit:  p.Source,
			Date:       utils.DateKey(p.Date),
		}
		if p.Popularity != nil {
			card.Upvotes = *p.Popularity
		}
		data.Posts = append(data.Posts, card)
	}
	return data
}

func titled(cfg ChartConfig, title string) ChartConfig {
	cfg.Title = title
	return cfg
}

func labelClass(l models.SentimentLabel) string {
	switch l {
	case models.Positive:
		return "positive"
	case models.Negative:
		return "negative"
	default:
		return "neutral"
	}
}

func signClass(v float64) string {
	switch {
	case v > 0:
		return "positive"
	case v < 0:
		return "negative"
	default:
		return ""
	}
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderTextReport(d DashboardData) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", d.Title))
	sb.WriteString(fmt.Sprintf("  %s · last %d days · generated %s\n", d.CompanyName, d.Days, d.GeneratedAt))
	sb.WriteString(line + "\n")

	if d.LastClose != "" {
		sb.WriteString(fmt.Sprintf("  Last close: %s", d.LastClose))
		if d.PeriodMove != "" {
			sb.WriteString(fmt.Sprintf(" (%s over the window)", d.PeriodMove))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("  %s\n", d.Correlation))
	sb.WriteString(thinLine + "\n")

	sb.WriteString("\n  ■ RECENT HEADLINES")
	if d.Source != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", d.Source))
	}
	sb.WriteString("\n")
	if len(d.Headlines) == 0 {
		sb.WriteString("    No recent headlines found.\n")
	}
	for _, h := range d.Headlines {
		sb.WriteString(fmt.Sprintf("    [%-8s %5s] %s\n", h.Label, h.Score, h.Title))
		sb.WriteString(fmt.Sprintf("      %s · %s\n", h.Source, h.Date))
	}
	sb.WriteString(thinLine + "\n")

	sb.WriteString("\n  ■ RECENT REDDIT POSTS\n")
	if len(d.Posts) == 0 {
		sb.WriteString("    No recent Reddit posts found.\n")
	}
	for _, p := range d.Posts {
		sb.WriteString(fmt.Sprintf("    [%-8s %5s] %s\n", p.Label, p.Score, p.Title))
		sb.WriteString(fmt.Sprintf("      r/%s · %d upvotes · %s\n", p.Subreddit, p.Upvotes, p.Date))
	}

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  Sentiment scores are lexicon-based and for information only.\n")
	sb.WriteString("  Not financial advice.\n")
	sb.WriteString(line + "\n")

	return sb.String()
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
