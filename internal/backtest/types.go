package backtest

import (
	"time"
)

// Result is the aggregate output of one backtest run. It is produced once
// and never mutated afterward.
type Result struct {
	RunID        string        `json:"run_id"`
	StrategyName string        `json:"strategy_name"`
	Symbols      []string      `json:"symbols"`
	StartDate    time.Time     `json:"start_date"`
	EndDate      time.Time     `json:"end_date"`
	Metrics      Metrics       `json:"metrics"`
	Trades       []Trade       `json:"trades"`
	EquityCurve  []EquityPoint `json:"equity_curve"`
	Stats        Stats         `json:"portfolio_stats"`

	// Error is set when the run could not simulate (e.g. no data for the
	// requested symbols); the rest of the result is then empty.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the run carries an error indicator.
func (r *Result) Failed() bool { return r.Error != "" }
