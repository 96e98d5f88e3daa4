// Package batch runs the daily ingestion: a rotating slice of the ticker
// universe is analyzed and written to storage.
package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// SymbolColumn is the CSV header holding ticker symbols.
const SymbolColumn = "Symbol"

// LoadUniverse reads ticker symbols from the Symbol column of a CSV file,
// in file order.
func LoadUniverse(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open universe: %w", err)
	}
	defer f.Close()
	return ReadUniverse(f)
}

// ReadUniverse is LoadUniverse over an arbitrary reader. Blank symbols are
// skipped.
func ReadUniverse(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("universe is empty")
		}
		return nil, fmt.Errorf("read universe header: %w", err)
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), SymbolColumn) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("universe has no %q column", SymbolColumn)
	}

	var tickers []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read universe: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		if t := utils.NormalizeTicker(rec[col]); t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers, nil
}
