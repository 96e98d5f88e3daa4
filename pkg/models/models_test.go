package models

import (
	"testing"
	"time"
)

func f(v float64) *float64 { return &v }

func TestCombinedFrameComplete(t *testing.T) {
	mon := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	frame := CombinedFrame{
		{Date: mon, Close: f(100), Sentiment: f(0.5)},
		{Date: mon.AddDate(0, 0, 1), Close: f(102)},
		{Date: mon.AddDate(0, 0, 2), Sentiment: f(-0.1)},
		{Date: mon.AddDate(0, 0, 3), Close: f(99), Sentiment: f(0)},
	}

	got := frame.Complete()
	if len(got) != 2 {
		t.Fatalf("Complete() len = %d, want 2", len(got))
	}
	if !got[0].Date.Equal(mon) || !got[1].Date.Equal(mon.AddDate(0, 0, 3)) {
		t.Errorf("Complete() kept wrong dates: %v, %v", got[0].Date, got[1].Date)
	}
	if *got[1].Sentiment != 0 {
		t.Errorf("zero sentiment must survive as a present value")
	}
}

func TestRawPostCreated(t *testing.T) {
	p := RawPost{CreatedUTC: 1767225600.5}
	got := p.Created()
	want := time.Date(2026, 1, 1, 0, 0, 0, 500_000_000, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Created() = %v, want %v", got, want)
	}
}

func TestCompanyDisplayName(t *testing.T) {
	if got := (Company{Ticker: "AAPL"}).DisplayName(); got != "AAPL" {
		t.Errorf("DisplayName() = %q, want AAPL", got)
	}
	if got := (Company{Ticker: "AAPL", Name: "Apple Inc."}).DisplayName(); got != "Apple Inc." {
		t.Errorf("DisplayName() = %q, want Apple Inc.", got)
	}
}

func TestPriceSeriesCloses(t *testing.T) {
	s := PriceSeries{{Close: 1.5}, {Close: 2.25}}
	got := s.Closes()
	if len(got) != 2 || got[0] != 1.5 || got[1] != 2.25 {
		t.Errorf("Closes() = %v", got)
	}
}
