// Package report renders analysis results: SVG charts, the HTML dashboard,
// a plain-text summary and an XLSX workbook.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/seenimoa/tickerpulse/internal/analysis/sentiment"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator
// ════════════════════════════════════════════════════════════════════

// ChartKind names one of the dashboard charts.
type ChartKind string

const (
	ChartPrice     ChartKind = "price"
	ChartSentiment ChartKind = "sentiment"
	ChartOverlay   ChartKind = "overlay"
)

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 360)
	MarginTop    int    // top margin
	MarginRight  int    // right margin, wide enough for a second axis
	MarginBottom int    // bottom margin
	MarginLeft   int    // left margin
	BgColor      string // background color
	GridColor    string // grid line color
	TextColor    string // axis label color
	FontSize     int    // axis label font size
	Title        string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       360,
		MarginTop:    40,
		MarginRight:  60,
		MarginBottom: 50,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

const (
	priceColor     = "#2563eb"
	sentimentColor = "#ea580c"
	positiveFill   = "#dcfce7"
	negativeFill   = "#fee2e2"
)

// Chart renders the named chart for a report.
func Chart(kind ChartKind, r *models.SentimentReport, cfg ChartConfig) (string, error) {
	switch kind {
	case ChartPrice:
		return PriceChart(r.Prices, cfg), nil
	case ChartSentiment:
		return SentimentChart(r.Daily, cfg), nil
	case ChartOverlay:
		return OverlayChart(r.Combined, cfg), nil
	default:
		return "", fmt.Errorf("unknown chart kind %q", kind)
	}
}

// ════════════════════════════════════════════════════════════════════
// Price, Sentiment, Overlay
// ════════════════════════════════════════════════════════════════════

// PriceChart draws daily closes over time.
func PriceChart(prices models.PriceSeries, cfg ChartConfig) string {
	cfg = withDefaults(cfg, "Stock Price")
	if len(prices) == 0 {
		return emptySVG(cfg, "No price data")
	}

	dates := make([]time.Time, len(prices))
	closes := make([]float64, len(prices))
	for i, p := range prices {
		dates[i], closes[i] = p.Date, p.Close
	}

	c := newCanvas(cfg, dates)
	ax := c.axis(closes)
	c.grid(ax, "left", "%.2f")
	c.line(closes, ax, priceColor, false)
	c.legend(0, "Close", priceColor)
	c.dateLabels()
	return c.done()
}

// SentimentChart draws the daily average with the positive and negative
// label bands shaded.
func SentimentChart(daily []models.DailySentiment, cfg ChartConfig) string {
	cfg = withDefaults(cfg, "Daily Sentiment")
	if len(daily) == 0 {
		return emptySVG(cfg, "No sentiment data")
	}

	dates := make([]time.Time, len(daily))
	avgs := make([]float64, len(daily))
	for i, d := range daily {
		dates[i], avgs[i] = d.Date, d.Average
	}

	c := newCanvas(cfg, dates)
	ax := fixedAxis(-1, 1)
	c.band(ax, sentiment.PositiveThreshold, 1, positiveFill)
	c.band(ax, -1, sentiment.NegativeThreshold, negativeFill)
	c.grid(ax, "left", "%.1f")
	c.hline(ax, 0, "#9ca3af")
	c.line(avgs, ax, sentimentColor, true)
	c.legend(0, "Average sentiment", sentimentColor)
	c.dateLabels()
	return c.done()
}

// OverlayChart draws price and sentiment on independent scales over the
// outer-joined frame. Missing values leave gaps in their line.
func OverlayChart(frame models.CombinedFrame, cfg ChartConfig) string {
	cfg = withDefaults(cfg, "Price vs Sentiment")
	if len(frame) == 0 {
		return emptySVG(cfg, "No data")
	}

	dates := make([]time.Time, len(frame))
	closes := make([]float64, len(frame))
	scores := make([]float64, len(frame))
	for i, row := range frame {
		dates[i] = row.Date
		closes[i], scores[i] = math.NaN(), math.NaN()
		if row.Close != nil {
			closes[i] = *row.Close
		}
		if row.Sentiment != nil {
			scores[i] = *row.Sentiment
		}
	}

	c := newCanvas(cfg, dates)
	priceAx := c.axis(closes)
	sentAx := fixedAxis(-1, 1)
	c.grid(priceAx, "left", "%.2f")
	c.grid(sentAx, "right", "%.1f")
	c.line(closes, priceAx, priceColor, true)
	c.line(scores, sentAx, sentimentColor, true)
	c.legend(0, "Close (left)", priceColor)
	c.legend(1, "Sentiment (right)", sentimentColor)
	c.dateLabels()
	return c.done()
}

// ════════════════════════════════════════════════════════════════════
// Canvas
// ════════════════════════════════════════════════════════════════════

type axis struct{ min, max float64 }

func fixedAxis(lo, hi float64) axis { return axis{min: lo, max: hi} }

func (a axis) ratio(v float64) float64 { return (v - a.min) / (a.max - a.min) }

type canvas struct {
	cfg            ChartConfig
	sb             strings.Builder
	dates          []time.Time
	px, py, pw, ph int
}

func newCanvas(cfg ChartConfig, dates []time.Time) *canvas {
	c := &canvas{cfg: cfg, dates: dates}
	c.px, c.py, c.pw, c.ph = cfg.plotArea()
	c.sb.WriteString(svgHeader(cfg))
	c.sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	c.sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))
	return c
}

// axis fits a padded scale around the non-NaN values.
func (c *canvas) axis(values []float64) axis {
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return fixedAxis(0, 1)
	}
	span := hi - lo
	if span < 0.001 {
		span = math.Max(math.Abs(hi)*0.1, 1)
	}
	return axis{min: lo - span*0.05, max: hi + span*0.05}
}

func (c *canvas) x(i int) float64 {
	if len(c.dates) < 2 {
		return float64(c.px) + float64(c.pw)/2
	}
	return float64(c.px) + float64(i)*float64(c.pw)/float64(len(c.dates)-1)
}

func (c *canvas) y(ax axis, v float64) float64 {
	return float64(c.py+c.ph) - ax.ratio(v)*float64(c.ph)
}

func (c *canvas) grid(ax axis, side, format string) {
	const lines = 4
	for i := 0; i <= lines; i++ {
		val := ax.min + (ax.max-ax.min)*float64(i)/lines
		y := c.y(ax, val)
		label := fmt.Sprintf(format, val)
		if side == "right" {
			c.sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="start">%s</text>`,
				c.px+c.pw+5, y+4, c.cfg.FontSize, sentimentColor, label))
			continue
		}
		c.sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="3,3"/>`,
			c.px, y, c.px+c.pw, y, c.cfg.GridColor))
		c.sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			c.px-5, y+4, c.cfg.FontSize, c.cfg.TextColor, label))
	}
}

func (c *canvas) band(ax axis, lo, hi float64, fill string) {
	top, bottom := c.y(ax, hi), c.y(ax, lo)
	c.sb.WriteString(fmt.Sprintf(`<rect class="band" x="%d" y="%.1f" width="%d" height="%.1f" fill="%s" opacity="0.6"/>`,
		c.px, top, c.pw, bottom-top, fill))
}

func (c *canvas) hline(ax axis, v float64, color string) {
	y := c.y(ax, v)
	c.sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s"/>`,
		c.px, y, c.px+c.pw, y, color))
}

// line draws values as a polyline. NaN breaks the path into segments, and
// points are marked so that single-point segments stay visible.
func (c *canvas) line(values []float64, ax axis, color string, markers bool) {
	var parts []string
	pen := false
	for i, v := range values {
		if math.IsNaN(v) {
			pen = false
			continue
		}
		cmd := "L"
		if !pen {
			cmd = "M"
			pen = true
		}
		parts = append(parts, fmt.Sprintf("%s%.1f,%.1f", cmd, c.x(i), c.y(ax, v)))
	}
	if len(parts) > 0 {
		c.sb.WriteString(fmt.Sprintf(`<path class="series" d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
			strings.Join(parts, " "), color))
	}
	if !markers && len(values) > 1 {
		return
	}
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		c.sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>`, c.x(i), c.y(ax, v), color))
	}
}

func (c *canvas) legend(slot int, name, color string) {
	ly := c.py + 10 + slot*16
	c.sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`,
		c.px+10, ly, c.px+30, ly, color))
	c.sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
		c.px+35, ly+4, c.cfg.TextColor, escapeXML(name)))
}

func (c *canvas) dateLabels() {
	n := len(c.dates)
	interval := n / 6
	if interval < 1 {
		interval = 1
	}
	for i := 0; i < n; i += interval {
		c.sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			c.x(i), c.py+c.ph+18, c.cfg.FontSize-1, c.cfg.TextColor, utils.DateKey(c.dates[i])))
	}
}

func (c *canvas) done() string {
	c.sb.WriteString("</svg>")
	return c.sb.String()
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func withDefaults(cfg ChartConfig, title string) ChartConfig {
	if cfg.Width == 0 {
		t := cfg.Title
		cfg = DefaultChartConfig()
		cfg.Title = t
	}
	if cfg.Title == "" {
		cfg.Title = title
	}
	return cfg
}

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
