// Package models defines the core data structures used throughout tickerpulse.
package models

import "time"

// PricePoint is one trading day's close, rounded to 2 decimal places.
// Date is always midnight UTC.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is an ascending, duplicate-free sequence of daily closes.
type PriceSeries []PricePoint

// Closes returns the close column.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Close
	}
	return out
}

// Company carries the descriptive fields reported alongside a price series.
type Company struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`               // longName, falling back to shortName
	Exchange string `json:"exchange,omitempty"` // e.g., "NMS"
	Currency string `json:"currency,omitempty"`
}

// DisplayName returns the company name, or the ticker when no name is known.
func (c Company) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Ticker
}
