package backtest

import (
	"math"
	"time"
)

const tradingDaysPerYear = 252

// Metrics holds the performance statistics derived from a finished equity
// curve and trade list.
type Metrics struct {
	InitialCapital float64 `json:"initial_capital"`
	FinalEquity    float64 `json:"final_equity"`
	TotalReturnPct float64 `json:"total_return_pct"`
	CAGRPct        float64 `json:"cagr_pct"`

	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio float64 `json:"sortino_ratio"`

	MaxDrawdownPct float64   `json:"max_drawdown_pct"`
	PeakDate       time.Time `json:"peak_date"`
	TroughDate     time.Time `json:"trough_date"`
	PeakValue      float64   `json:"peak_value"`
	TroughValue    float64   `json:"trough_value"`

	TotalTrades    int     `json:"total_trades"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	WinRatePct     float64 `json:"win_rate_pct"`
	ProfitFactor   float64 `json:"profit_factor"`
	Expectancy     float64 `json:"expectancy"`
	AvgWin         float64 `json:"avg_win"`
	AvgLoss        float64 `json:"avg_loss"`
	LargestWin     float64 `json:"largest_win"`
	LargestLoss    float64 `json:"largest_loss"`
	AvgHoldingDays float64 `json:"avg_holding_days"`
}

// CalculateMetrics derives all performance metrics. riskFreeRate is the
// annual risk-free rate used by Sharpe and Sortino.
func CalculateMetrics(equityCurve []EquityPoint, trades []Trade,
	initialCapital, riskFreeRate float64) Metrics {

	var m Metrics
	if len(equityCurve) == 0 {
		return m
	}

	finalEquity := equityCurve[len(equityCurve)-1].Equity
	m.InitialCapital = initialCapital
	m.FinalEquity = finalEquity
	m.TotalReturnPct = (finalEquity - initialCapital) / initialCapital * 100

	days := equityCurve[len(equityCurve)-1].Date.Sub(equityCurve[0].Date).Hours() / 24
	years := days / 365.25
	m.CAGRPct = cagr(initialCapital, finalEquity, years)

	returns := periodReturns(equityCurve)
	if len(returns) > 1 {
		m.SharpeRatio = sharpeRatio(returns, riskFreeRate)
		m.SortinoRatio = sortinoRatio(returns, riskFreeRate)
	}

	dd := maxDrawdown(equityCurve)
	m.MaxDrawdownPct = dd.MaxDrawdownPct
	m.PeakDate = dd.PeakDate
	m.TroughDate = dd.TroughDate
	m.PeakValue = dd.PeakValue
	m.TroughValue = dd.TroughValue

	if len(trades) > 0 {
		m.TotalTrades = len(trades)
		var pnlSum, winSum, lossSum float64
		var holdingSum int
		m.LargestWin = math.Inf(-1)
		m.LargestLoss = math.Inf(1)

		for _, t := range trades {
			pnl := t.PnL()
			pnlSum += pnl
			holdingSum += t.HoldingDays()
			if pnl > 0 {
				m.WinningTrades++
				winSum += pnl
			} else if pnl < 0 {
				m.LosingTrades++
				lossSum += pnl
			}
			if pnl > m.LargestWin {
				m.LargestWin = pnl
			}
			if pnl < m.LargestLoss {
				m.LargestLoss = pnl
			}
		}

		m.WinRatePct = float64(m.WinningTrades) / float64(len(trades)) * 100
		m.ProfitFactor = profitFactor(winSum, -lossSum)
		m.Expectancy = pnlSum / float64(len(trades))
		if m.WinningTrades > 0 {
			m.AvgWin = winSum / float64(m.WinningTrades)
		}
		if m.LosingTrades > 0 {
			m.AvgLoss = lossSum / float64(m.LosingTrades)
		}
		m.AvgHoldingDays = float64(holdingSum) / float64(len(trades))
	}

	return m
}

// periodReturns is the simple percentage change between consecutive equity
// points; the first return is defined as zero.
func periodReturns(equityCurve []EquityPoint) []float64 {
	returns := make([]float64, len(equityCurve))
	for i := 1; i < len(equityCurve); i++ {
		prev := equityCurve[i-1].Equity
		if prev != 0 {
			returns[i] = (equityCurve[i].Equity - prev) / prev
		}
	}
	return returns
}

// cagr is the compound annual growth rate percentage; zero when the span
// or capital is not positive.
func cagr(initialCapital, finalEquity, years float64) float64 {
	if years <= 0 || initialCapital <= 0 {
		return 0
	}
	return (math.Pow(finalEquity/initialCapital, 1/years) - 1) * 100
}

// sharpeRatio annualizes mean excess return over the full return deviation.
func sharpeRatio(returns []float64, riskFreeRate float64) float64 {
	std := stdDev(returns)
	if std == 0 {
		return 0
	}
	dailyRF := riskFreeRate / tradingDaysPerYear
	var excessSum float64
	for _, r := range returns {
		excessSum += r - dailyRF
	}
	excessMean := excessSum / float64(len(returns))
	return math.Sqrt(tradingDaysPerYear) * excessMean / std
}

// sortinoRatio uses the deviation of negative returns only; zero when
// there are no negative returns.
func sortinoRatio(returns []float64, riskFreeRate float64) float64 {
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	downsideStd := stdDev(downside)
	if len(downside) == 0 || downsideStd == 0 {
		return 0
	}

	dailyRF := riskFreeRate / tradingDaysPerYear
	var excessSum float64
	for _, r := range returns {
		excessSum += r - dailyRF
	}
	excessMean := excessSum / float64(len(returns))
	return math.Sqrt(tradingDaysPerYear) * excessMean / downsideStd
}

// profitFactor is grossProfit/grossLoss; +Inf when there are no losses and
// positive profit, zero otherwise.
func profitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}

// drawdown describes the deepest peak-to-trough decline.
type drawdown struct {
	MaxDrawdownPct float64
	PeakDate       time.Time
	TroughDate     time.Time
	PeakValue      float64
	TroughValue    float64
}

// maxDrawdown finds min((equity - runningMax)/runningMax) with the
// corresponding peak and trough.
func maxDrawdown(equityCurve []EquityPoint) drawdown {
	var dd drawdown
	if len(equityCurve) == 0 {
		return dd
	}

	peak := equityCurve[0]
	worst := 0.0
	ddPeak, ddTrough := equityCurve[0], equityCurve[0]

	for _, point := range equityCurve {
		if point.Equity > peak.Equity {
			peak = point
		}
		if peak.Equity > 0 {
			d := (point.Equity - peak.Equity) / peak.Equity
			if d < worst {
				worst = d
				ddPeak = peak
				ddTrough = point
			}
		}
	}

	dd.MaxDrawdownPct = worst * 100
	dd.PeakDate = ddPeak.Date
	dd.TroughDate = ddTrough.Date
	dd.PeakValue = ddPeak.Equity
	dd.TroughValue = ddTrough.Equity
	return dd
}

// stdDev is the sample standard deviation (n-1 denominator).
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)-1))
}
