// Package backtest simulates strategy trading over historical bars and
// derives performance statistics from the result.
package backtest

import (
	"time"
)

// Position is one open holding. At most one Position exists per ticker;
// re-entry is only possible after the previous position closed.
type Position struct {
	Ticker          string
	EntryDate       time.Time
	EntryPrice      float64
	Quantity        int
	StopLoss        *float64
	TakeProfit      *float64
	TrailingStopPct *float64

	entryCommission float64
}

// CostBasis is the total entry cost excluding commission.
func (p *Position) CostBasis() float64 {
	return p.EntryPrice * float64(p.Quantity)
}

// CurrentValue marks the position at the given price.
func (p *Position) CurrentValue(price float64) float64 {
	return price * float64(p.Quantity)
}

// UnrealizedPnL is the open profit or loss at the given price.
func (p *Position) UnrealizedPnL(price float64) float64 {
	return (price - p.EntryPrice) * float64(p.Quantity)
}

// Trade is one completed round trip. Commission is the trade's own entry
// plus exit commission. Immutable once appended to the trade history.
type Trade struct {
	Ticker     string    `json:"ticker"`
	EntryDate  time.Time `json:"entry_date"`
	ExitDate   time.Time `json:"exit_date"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Quantity   int       `json:"quantity"`
	Commission float64   `json:"commission"`
}

// PnL is the trade profit or loss net of commission.
func (t Trade) PnL() float64 {
	return (t.ExitPrice-t.EntryPrice)*float64(t.Quantity) - t.Commission
}

// PnLPct is the gross percentage return on the entry price.
func (t Trade) PnLPct() float64 {
	return (t.ExitPrice - t.EntryPrice) / t.EntryPrice * 100
}

// HoldingDays is the calendar-day span from entry to exit.
func (t Trade) HoldingDays() int {
	return int(t.ExitDate.Sub(t.EntryDate).Hours() / 24)
}

// EquityPoint is one mark-to-market snapshot, one per simulated bar.
type EquityPoint struct {
	Date           time.Time `json:"date"`
	Equity         float64   `json:"equity"`
	Cash           float64   `json:"cash"`
	PositionsValue float64   `json:"positions_value"`
}

// ExitReason tags why a protective exit fired.
type ExitReason string

const (
	ExitNone       ExitReason = ""
	ExitStopLoss   ExitReason = "stop_loss"
	ExitTakeProfit ExitReason = "take_profit"
)

// Portfolio owns cash, open positions, trade history and the equity curve
// for one backtest run. It is exclusively owned by that run and performs no
// internal locking.
type Portfolio struct {
	InitialCapital float64
	Cash           float64

	commissionRate  float64
	positions       map[string]*Position
	trades          []Trade
	equityCurve     []EquityPoint
	totalCommission float64
}

// NewPortfolio creates a portfolio with the given starting cash and
// commission rate (e.g. 0.001 for 10 bps per side).
func NewPortfolio(initialCapital, commissionRate float64) *Portfolio {
	return &Portfolio{
		InitialCapital: initialCapital,
		Cash:           initialCapital,
		commissionRate: commissionRate,
		positions:      make(map[string]*Position),
	}
}

// Position returns the open position for a ticker, if any.
func (p *Portfolio) Position(ticker string) (*Position, bool) {
	pos, ok := p.positions[ticker]
	return pos, ok
}

// OpenTickers returns the tickers with open positions.
func (p *Portfolio) OpenTickers() []string {
	out := make([]string, 0, len(p.positions))
	for t := range p.positions {
		out = append(out, t)
	}
	return out
}

// Trades returns the completed trade history.
func (p *Portfolio) Trades() []Trade { return p.trades }

// EquityCurve returns the recorded equity points.
func (p *Portfolio) EquityCurve() []EquityPoint { return p.equityCurve }

// TotalCommission returns commission accumulated across all fills.
func (p *Portfolio) TotalCommission() float64 { return p.totalCommission }

// Open opens a position. It is a no-op returning false when quantity is not
// positive, a position is already open for the ticker, or cost plus
// commission exceeds available cash.
func (p *Portfolio) Open(ticker string, date time.Time, price float64, quantity int,
	stopLoss, takeProfit, trailingStopPct *float64) bool {

	if quantity <= 0 {
		return false
	}
	if _, exists := p.positions[ticker]; exists {
		return false
	}

	cost := price * float64(quantity)
	commission := cost * p.commissionRate
	if cost+commission > p.Cash {
		return false
	}

	p.positions[ticker] = &Position{
		Ticker:          ticker,
		EntryDate:       date,
		EntryPrice:      price,
		Quantity:        quantity,
		StopLoss:        stopLoss,
		TakeProfit:      takeProfit,
		TrailingStopPct: trailingStopPct,
		entryCommission: commission,
	}
	p.Cash -= cost + commission
	p.totalCommission += commission
	return true
}

// Close closes the position for a ticker and appends the Trade. Returns nil
// when no position is open for the ticker.
func (p *Portfolio) Close(ticker string, date time.Time, price float64) *Trade {
	pos, ok := p.positions[ticker]
	if !ok {
		return nil
	}

	proceeds := price * float64(pos.Quantity)
	commission := proceeds * p.commissionRate

	trade := Trade{
		Ticker:     ticker,
		EntryDate:  pos.EntryDate,
		ExitDate:   date,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  price,
		Quantity:   pos.Quantity,
		Commission: pos.entryCommission + commission,
	}

	p.Cash += proceeds - commission
	p.totalCommission += commission
	p.trades = append(p.trades, trade)
	delete(p.positions, ticker)

	return &trade
}

// UpdateTrailingStop ratchets the stop-loss upward for a position with a
// trailing-stop percentage. The stop only ever rises.
func (p *Portfolio) UpdateTrailingStop(ticker string, currentPrice float64) {
	pos, ok := p.positions[ticker]
	if !ok || pos.TrailingStopPct == nil {
		return
	}

	candidate := currentPrice * (1 - *pos.TrailingStopPct/100)
	if pos.StopLoss == nil || candidate > *pos.StopLoss {
		pos.StopLoss = &candidate
	}
}

// CheckExitConditions reports whether a protective exit fired. Stop-loss is
// checked against the bar low (pessimistic fill assumption), take-profit
// against the close.
func (p *Portfolio) CheckExitConditions(ticker string, closePrice, lowPrice float64) ExitReason {
	pos, ok := p.positions[ticker]
	if !ok {
		return ExitNone
	}

	if pos.StopLoss != nil && lowPrice <= *pos.StopLoss {
		return ExitStopLoss
	}
	if pos.TakeProfit != nil && closePrice >= *pos.TakeProfit {
		return ExitTakeProfit
	}
	return ExitNone
}

// TotalValue is cash plus the mark-to-market value of open positions. A
// position whose ticker has no price for the date values at its entry
// price, a deliberate simplification for sparse multi-asset data.
func (p *Portfolio) TotalValue(currentPrices map[string]float64) float64 {
	value := p.Cash
	for ticker, pos := range p.positions {
		price, ok := currentPrices[ticker]
		if !ok {
			price = pos.EntryPrice
		}
		value += pos.CurrentValue(price)
	}
	return value
}

// RecordEquity appends one equity point for the date.
func (p *Portfolio) RecordEquity(date time.Time, currentPrices map[string]float64) {
	total := p.TotalValue(currentPrices)
	p.equityCurve = append(p.equityCurve, EquityPoint{
		Date:           date,
		Equity:         total,
		Cash:           p.Cash,
		PositionsValue: total - p.Cash,
	})
}

// Stats summarizes the trade history.
type Stats struct {
	TotalTrades     int     `json:"total_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	WinRatePct      float64 `json:"win_rate_pct"`
	TotalPnL        float64 `json:"total_pnl"`
	AvgWin          float64 `json:"avg_win"`
	AvgLoss         float64 `json:"avg_loss"`
	TotalCommission float64 `json:"total_commission"`
	AvgHoldingDays  float64 `json:"avg_holding_days"`
}

// Statistics computes summary statistics over the completed trades.
func (p *Portfolio) Statistics() Stats {
	stats := Stats{
		TotalTrades:     len(p.trades),
		TotalCommission: p.totalCommission,
	}
	if len(p.trades) == 0 {
		return stats
	}

	var winSum, lossSum, pnlSum float64
	var holdingSum int
	for _, t := range p.trades {
		pnl := t.PnL()
		pnlSum += pnl
		holdingSum += t.HoldingDays()
		if pnl > 0 {
			stats.WinningTrades++
			winSum += pnl
		} else {
			stats.LosingTrades++
			lossSum += pnl
		}
	}

	stats.WinRatePct = float64(stats.WinningTrades) / float64(stats.TotalTrades) * 100
	stats.TotalPnL = pnlSum
	if stats.WinningTrades > 0 {
		stats.AvgWin = winSum / float64(stats.WinningTrades)
	}
	if stats.LosingTrades > 0 {
		stats.AvgLoss = lossSum / float64(stats.LosingTrades)
	}
	stats.AvgHoldingDays = float64(holdingSum) / float64(stats.TotalTrades)
	return stats
}
