package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/seenimoa/tickerpulse/internal/analysis/sentiment"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// Workbook sheet names, in tab order.
const (
	SheetPrices    = "Prices"
	SheetSentiment = "Sentiment"
	SheetCombined  = "Combined"
	SheetHeadlines = "Headlines"
	SheetPosts     = "Posts"
)

// WriteXLSX saves the report as a workbook at path.
func WriteXLSX(r *models.SentimentReport, path string) error {
	f, err := buildWorkbook(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// EncodeXLSX streams the workbook to w.
func EncodeXLSX(r *models.SentimentReport, w io.Writer) error {
	f, err := buildWorkbook(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(r *models.SentimentReport) (*excelize.File, error) {
	if r == nil {
		return nil, fmt.Errorf("report is nil")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetPrices); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetSentiment, SheetCombined, SheetHeadlines, SheetPosts} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	w := sheetWriter{f: f, header: bold}

	w.rows(SheetPrices, []any{"Date", "Close"}, len(r.Prices), func(i int) []any {
		p := r.Prices[i]
		return []any{utils.DateKey(p.Date), p.Close}
	})
	w.rows(SheetSentiment, []any{"Date", "Average Sentiment", "Label"}, len(r.Daily), func(i int) []any {
		d := r.Daily[i]
		return []any{utils.DateKey(d.Date), d.Average, string(sentiment.Classify(d.Average))}
	})
	w.rows(SheetCombined, []any{"Date", "Close", "Sentiment"}, len(r.Combined), func(i int) []any {
		row := r.Combined[i]
		return []any{utils.DateKey(row.Date), optional(row.Close), optional(row.Sentiment)}
	})
	w.rows(SheetHeadlines, []any{"Date", "Title", "Source", "URL", "Sentiment"}, len(r.Headlines), func(i int) []any {
		h := r.Headlines[i]
		return []any{utils.DateKey(h.Date), h.Title, h.Source, h.Link, h.Sentiment}
	})
	w.rows(SheetPosts, []any{"Date", "Title", "Text", "Score", "Subreddit", "URL", "Sentiment"}, len(r.Posts), func(i int) []any {
		p := r.Posts[i]
		score := 0
		if p.Popularity != nil {
			score = *p.Popularity
		}
		return []any{utils.DateKey(p.Date), p.Title, p.Body, score, p.Source, p.Link, p.Sentiment}
	})

	// Correlation goes under the combined table.
	w.note(SheetCombined, len(r.Combined)+3, CorrelationLine(r.Correlation))

	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	f.SetActiveSheet(0)
	return f, nil
}

// sheetWriter keeps the first error so the table calls above stay flat.
type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (w *sheetWriter) rows(sheet string, header []any, n int, row func(int) []any) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetSheetRow(sheet, "A1", &header)
	if w.err != nil {
		return
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if w.err = w.f.SetCellStyle(sheet, "A1", last, w.header); w.err != nil {
		return
	}
	for i := 0; i < n; i++ {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := row(i)
		if w.err = w.f.SetSheetRow(sheet, cell, &values); w.err != nil {
			return
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	w.err = w.f.SetColWidth(sheet, "A", lastCol, 14)
}

func (w *sheetWriter) note(sheet string, row int, text string) {
	if w.err != nil {
		return
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	w.err = w.f.SetCellValue(sheet, cell, text)
}

// optional leaves the cell empty for a missing value.
func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
