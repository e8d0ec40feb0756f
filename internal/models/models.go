// Package models provides domain models for the stock advisor.
package models

import (
	"time"
)

// Bar represents one trading day of OHLCV data for a stock.
type Bar struct {
	Date      time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
	ChangePct *float64 // daily change percent, absent in some data sets
	Turnover  *float64 // traded value, absent in some data sets
}

// Series is an ordered-by-date sequence of bars for one stock.
// Bars are strictly increasing by date and read-only once loaded.
type Series struct {
	Name string
	Code string
	Bars []Bar
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	return len(s.Bars)
}

// Latest returns the most recent bar, or nil for an empty series.
func (s *Series) Latest() *Bar {
	if len(s.Bars) == 0 {
		return nil
	}
	return &s.Bars[len(s.Bars)-1]
}

// Tail returns the trailing n bars (all bars when n exceeds the length).
func (s *Series) Tail(n int) []Bar {
	if n >= len(s.Bars) {
		return s.Bars
	}
	return s.Bars[len(s.Bars)-n:]
}

// StockInfo identifies one stock in the universe.
type StockInfo struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// KnowledgeDocument is one entry of the knowledge index.
type KnowledgeDocument struct {
	Content  string   `json:"content"`
	Title    string   `json:"title,omitempty"`
	Source   string   `json:"source,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}
