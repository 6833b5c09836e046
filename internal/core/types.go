package core

import "time"

// Bar is one OHLCV observation at a timestamp for one ticker.
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// IsValid checks that the bar carries a usable price.
func (b Bar) IsValid() bool {
	return b.Symbol != "" && b.Close > 0 && !b.Date.IsZero()
}

// TypicalPrice returns (high + low + close) / 3.
func (b Bar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// Interval identifies a bar interval.
type Interval string

const (
	IntervalDaily  Interval = "1d"
	IntervalWeekly Interval = "1wk"
)

// Date formats a time as YYYY-MM-DD, the canonical date form used
// across config files, CLI flags and cached documents.
func Date(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
